package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if cfg.Tasks.EntryPoint != "run" {
		t.Fatalf("EntryPoint = %q, want %q", cfg.Tasks.EntryPoint, "run")
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.Logging.ConsoleEnabled() {
		t.Fatal("console should default to enabled")
	}
	if cfg.Notify.Channel != "ntfy" {
		t.Fatalf("Channel = %q, want ntfy", cfg.Notify.Channel)
	}
	if cfg.Notify.RatePerSec != 3 {
		t.Fatalf("RatePerSec = %d, want 3", cfg.Notify.RatePerSec)
	}
	if cfg.Notify.Ntfy.Timeout != "10s" {
		t.Fatalf("Ntfy.Timeout = %q, want 10s", cfg.Notify.Ntfy.Timeout)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
tasks:
  root: /opt/taskbox
  entry_point: main
logging:
  level: debug
  console: false
  journal:
    enabled: true
    min_level: warn
notify:
  channel: telegram
  telegram:
    chat_id: -100123
schedules:
  rklb-price: "30 16 * * 1-5"
  sensors-check: "15m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tasks.Root != "/opt/taskbox" {
		t.Fatalf("Root = %q", cfg.Tasks.Root)
	}
	if cfg.Tasks.EntryPoint != "main" {
		t.Fatalf("EntryPoint = %q", cfg.Tasks.EntryPoint)
	}
	if cfg.Logging.ConsoleEnabled() {
		t.Fatal("console should be disabled")
	}
	if !cfg.Logging.Journal.Enabled || cfg.Logging.Journal.MinLevel != "warn" {
		t.Fatalf("journal config not applied: %+v", cfg.Logging.Journal)
	}
	if cfg.Notify.Channel != "telegram" || cfg.Notify.Telegram.ChatID != -100123 {
		t.Fatalf("notify config not applied: %+v", cfg.Notify)
	}
	if len(cfg.Schedules) != 2 || cfg.Schedules["sensors-check"] != "15m" {
		t.Fatalf("schedules not applied: %+v", cfg.Schedules)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "tasks:\n  entrypoint: main\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NTFY_HOST", "https://ntfy.example.net")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	path := writeConfig(t, "notify:\n  ntfy:\n    host: https://file.example.net\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notify.Ntfy.Host != "https://ntfy.example.net" {
		t.Fatalf("env should win over file, got %q", cfg.Notify.Ntfy.Host)
	}
	if cfg.Notify.Telegram.ChatID != 42 {
		t.Fatalf("ChatID = %d, want 42", cfg.Notify.Telegram.ChatID)
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	d, err := ParseDurationOrDefault("notify.ntfy.timeout", "", 10e9)
	if err != nil || d != 10e9 {
		t.Fatalf("default not applied: %v %v", d, err)
	}
	if _, err := ParseDurationField("x", "banana"); err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
