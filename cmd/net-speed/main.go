// Command net-speed measures the home connection and alerts when download
// drops below the configured floor. The topic comes from NTFY_SPEED_TOPIC.
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
	"taskbox/internal/speed"
	"taskbox/pkg/logx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("net-speed", flag.ContinueOnError)
	var (
		cfgPath string
		floor   float64
		always  bool
		saving  bool
		timeout time.Duration
	)
	fs.StringVar(&cfgPath, "config", "config.yaml", "path to config yaml")
	fs.Float64Var(&floor, "floor", 0, "alert when download Mbps is below this (0 disables)")
	fs.BoolVar(&always, "always", false, "notify the result even when above the floor")
	fs.BoolVar(&saving, "saving", false, "speedtest saving mode (low-memory boxes)")
	fs.DurationVar(&timeout, "timeout", 3*time.Minute, "overall deadline")
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
	log = log.With(logx.String("task", "net-speed"))

	ncfg, err := notify.FromConfig(cfg.Notify, "NTFY_SPEED_TOPIC")
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

	res, err := speed.Run(ctx, speed.Config{OperationTimeout: timeout, SavingMode: saving})
	if err != nil {
		// If the line is down the notification won't deliver either; the log
		// (journal) is the reliable trail here.
		log.Error("speedtest failed", logx.Err(err))
		return 1
	}

	log.Info("speedtest finished",
		logx.Float64("download_mbps", res.DownloadMbps),
		logx.Float64("upload_mbps", res.UploadMbps),
		logx.Float64("ping_ms", res.PingMs),
		logx.String("server", res.ServerName),
		logx.Duration("took", res.Duration),
	)

	switch {
	case res.BelowFloor(floor):
		err = notifier.Send(ctx, notify.Message{
			Title:    "Slow connection",
			Body:     fmt.Sprintf("Download %.1f Mbps is below the %.0f Mbps floor.\n\n%s", res.DownloadMbps, floor, res.Summary()),
			Priority: 4,
			Tags:     []string{"warning", "snail"},
		})
	case always:
		err = notifier.Send(ctx, notify.Message{
			Title: "Speedtest result",
			Body:  res.Summary(),
			Tags:  []string{"zap"},
		})
	default:
		return 0
	}
	if err != nil {
		log.Error("notification failed", logx.Err(err))
		return 1
	}
	return 0
}
