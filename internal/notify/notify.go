// Package notify delivers human-readable alerts from task units to the
// operator's device.
//
// The wire format follows ntfy.sh: a message is a short body plus Title /
// Priority / Tags / Click metadata. The telegram channel folds the same
// message into one chat text.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Message is one outbound notification.
//
// Priority uses the ntfy 1..5 scale (5 = max). Zero means default (3).
// Tags are ntfy emoji shortcodes ("arrow_up", "skull", "warning", ...).
type Message struct {
	Title    string
	Body     string
	Priority int
	Tags     []string
	// Click is an optional URL opened when the notification is tapped.
	Click string
}

func (m Message) priority() int {
	if m.Priority <= 0 {
		return 3
	}
	if m.Priority > 5 {
		return 5
	}
	return m.Priority
}

func (m Message) tagHeader() string { return strings.Join(m.Tags, ",") }

// Notifier sends one message. Implementations are safe for sequential
// one-shot use; task units create one, send at most a couple of messages,
// and exit.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the delivery channel.
type Config struct {
	// Channel is "ntfy" (default) or "telegram".
	Channel    string
	RatePerSec int

	Ntfy     NtfyConfig
	Telegram TelegramConfig
}

// New builds the configured channel.
func New(cfg Config) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Channel)) {
	case "", "ntfy":
		n, err := NewNtfy(cfg.Ntfy, cfg.RatePerSec)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "telegram":
		t, err := NewTelegram(cfg.Telegram)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown notify channel %q", cfg.Channel)
	}
}

type NtfyConfig struct {
	Host     string
	Topic    string
	Username string
	Password string
	Timeout  time.Duration
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}
