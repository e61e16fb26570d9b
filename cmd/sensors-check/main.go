// Command sensors-check alerts when temperature/humidity sensors stop
// checking in to the hub database.
//
// Settings come from the environment (one .env next to the dispatcher):
//
//	SENSORS_SOURCE  "ssh" (default) or "local"
//	DATABASE_PATH   path to the sqlite file (on the hub for ssh)
//	SSH_HOST, SSH_USERNAME, SSH_PORT, SSH_KEY_FILE, SSH_KNOWN_HOSTS
//	MINUTES_AGO     freshness window, default 45
//	MIN_CHECKINS    expected check-ins per window, default 2
//	NTFY_SENSOR_TOPIC
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"taskbox/internal/config"
	"taskbox/internal/notify"
	"taskbox/internal/sensors"
	"taskbox/pkg/logx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("sensors-check", flag.ContinueOnError)
	var (
		cfgPath string
		timeout time.Duration
	)
	fs.StringVar(&cfgPath, "config", "config.yaml", "path to config yaml")
	fs.DurationVar(&timeout, "timeout", time.Minute, "overall deadline")
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
	log = log.With(logx.String("task", "sensors-check"))

	ncfg, err := notify.FromConfig(cfg.Notify, "NTFY_SENSOR_TOPIC")
	if err != nil {
		log.Error("bad notify config", logx.Err(err))
		return 1
	}
	notifier, err := notify.New(ncfg)
	if err != nil {
		log.Error("notifier setup failed", logx.Err(err))
		return 1
	}

	checkCfg := sensors.Config{
		Window:      time.Duration(envInt("MINUTES_AGO", 45)) * time.Minute,
		MinCheckins: envInt("MIN_CHECKINS", 2),
	}

	src, err := openSource(log)
	if err != nil {
		log.Error("source setup failed", logx.Err(err))
		return 1
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn("source close failed", logx.Err(cerr))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rep, err := sensors.Check(ctx, src, checkCfg)
	if err != nil {
		log.Error("freshness check failed", logx.Err(err))
		return 1
	}

	for _, m := range rep.Missing {
		log.Warn("sensor missing check-ins", logx.String("mac", m.MAC), logx.String("location", m.Location))
	}
	if rep.Healthy() {
		log.Info("all sensors healthy",
			logx.Int("check_ins", len(rep.CheckIns)),
			logx.Duration("window", rep.Window),
		)
		return 0
	}

	msg, _ := rep.Notification()
	if err := notifier.Send(ctx, msg); err != nil {
		log.Error("notification failed", logx.Err(err))
		return 1
	}
	log.Info("alert sent",
		logx.Bool("empty_window", rep.Empty),
		logx.Int("missing", len(rep.Missing)),
	)
	return 0
}

func openSource(log logx.Logger) (sensors.Source, error) {
	dbPath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))

	switch src := strings.ToLower(strings.TrimSpace(os.Getenv("SENSORS_SOURCE"))); src {
	case "local":
		log.Debug("using local database", logx.String("path", dbPath))
		return sensors.NewLocalSource(dbPath)
	case "", "ssh":
		scfg := sensors.SSHConfig{
			Host:           os.Getenv("SSH_HOST"),
			Port:           envInt("SSH_PORT", 22),
			User:           os.Getenv("SSH_USERNAME"),
			KeyFile:        os.Getenv("SSH_KEY_FILE"),
			KnownHostsFile: os.Getenv("SSH_KNOWN_HOSTS"),
			DatabasePath:   dbPath,
		}
		log.Debug("using remote database",
			logx.String("host", scfg.Host),
			logx.String("path", dbPath),
		)
		return sensors.NewSSHSource(scfg)
	default:
		return nil, fmt.Errorf("unknown SENSORS_SOURCE %q", src)
	}
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
