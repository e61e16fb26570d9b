// Command rklb-price fetches one stock quote and pushes it as a
// notification. Scheduled for weekday market close; the topic comes from
// NTFY_EOD_TOPIC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"taskbox/internal/config"
	"taskbox/internal/notify"
	"taskbox/internal/quote"
	"taskbox/pkg/logx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("rklb-price", flag.ContinueOnError)
	var (
		symbol  string
		cfgPath string
		timeout time.Duration
	)
	fs.StringVar(&symbol, "symbol", "RKLB", "ticker symbol to quote")
	fs.StringVar(&cfgPath, "config", "config.yaml", "path to config yaml")
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}
	log, closeLog, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		Journal: logx.JournalConfig{Enabled: cfg.Logging.Journal.Enabled, MinLevel: cfg.Logging.Journal.MinLevel},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}
	defer closeLog()
	log = log.With(logx.String("task", "rklb-price"))

	ncfg, err := notify.FromConfig(cfg.Notify, "NTFY_EOD_TOPIC")
	if err != nil {
		log.Error("bad notify config", logx.Err(err))
		return 1
	}
	notifier, err := notify.New(ncfg)
	if err != nil {
		log.Error("notifier setup failed", logx.Err(err))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	q, err := quote.NewClient(10 * time.Second).Fetch(ctx, symbol)
	if err != nil {
		log.Error("quote fetch failed", logx.String("symbol", symbol), logx.Err(err))
		// The error notification is the whole point of running under a dumb
		// scheduler: the operator hears about the failure on their phone.
		if nerr := notifier.Send(ctx, notify.Message{
			Title:    symbol + " quote error",
			Body:     "Yahoo down?",
			Priority: 4,
			Tags:     []string{"skull"},
		}); nerr != nil {
			log.Error("error notification failed", logx.Err(nerr))
		}
		return 1
	}

	body := fmt.Sprintf("$%.2f / %.2f%%", q.Price, q.ChangePct)
	log.Info("quote fetched",
		logx.String("symbol", q.Symbol),
		logx.Float64("price", q.Price),
		logx.Float64("change_pct", q.ChangePct),
	)

	if err := notifier.Send(ctx, notify.Message{
		Title: q.Symbol + " quote",
		Body:  body,
		Tags:  []string{q.Direction()},
		Click: q.PageURL(),
	}); err != nil {
		log.Error("notification failed", logx.Err(err))
		return 1
	}
	return 0
}
