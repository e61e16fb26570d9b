package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Load reads the YAML config at path and applies defaults + env overrides.
//
// A missing file is not an error: the toolbox must run with zero config
// (everything has a default or comes from the environment). Unknown keys are
// rejected so typos surface on the next scheduled run instead of silently
// reverting a setting to its default.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fall through with zero config
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv layers environment variables over the file. The variable names
// match what the task units read themselves, so one .env serves both.
func (c *Config) applyEnv() {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setStr(&c.Tasks.Root, "TASKBOX_ROOT")
	setStr(&c.Notify.Ntfy.Host, "NTFY_HOST")
	setStr(&c.Notify.Ntfy.Username, "NTFY_USERNAME")
	setStr(&c.Notify.Ntfy.Password, "NTFY_PASSWORD")
	setStr(&c.Notify.Telegram.Token, "TELEGRAM_TOKEN")
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notify.Telegram.ChatID = id
		}
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Tasks.EntryPoint) == "" {
		c.Tasks.EntryPoint = "run"
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Notify.Channel) == "" {
		c.Notify.Channel = "ntfy"
	}
	if c.Notify.RatePerSec <= 0 {
		c.Notify.RatePerSec = 3
	}
	if strings.TrimSpace(c.Notify.Ntfy.Timeout) == "" {
		c.Notify.Ntfy.Timeout = "10s"
	}
}
