package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Telegram delivers messages as chat texts via the Bot API.
//
// This is the fallback channel for phones without the ntfy app; the ntfy
// metadata is folded into the text (title bolded, priority as an emoji
// prefix, click URL appended).
type Telegram struct {
	bot    *tele.Bot
	chatID int64
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is required")
	}
	b, err := tele.NewBot(tele.Settings{
		Token: cfg.Token,
		// No poller: this bot only sends.
		Client: &http.Client{Timeout: sendTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: cfg.ChatID}, nil
}

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	// telebot has no context plumbing on Send; honor cancellation up front.
	if err := ctx.Err(); err != nil {
		return err
	}

	text := formatTelegramText(msg)
	_, err := t.bot.Send(&tele.Chat{ID: t.chatID}, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatTelegramText(msg Message) string {
	prefix := ""
	switch {
	case msg.priority() >= 5:
		prefix = "🚨 "
	case msg.priority() == 4:
		prefix = "⚠️ "
	default:
		prefix = "ℹ️ "
	}

	var b strings.Builder
	b.WriteString(prefix)
	if msg.Title != "" {
		b.WriteString("<b>")
		b.WriteString(htmlEscape(msg.Title))
		b.WriteString("</b>\n")
	}
	b.WriteString(htmlEscape(msg.Body))
	if msg.Click != "" {
		b.WriteString("\n")
		b.WriteString(msg.Click)
	}
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// sendTimeout bounds a single Bot API call; telebot's default HTTP client
// has none.
const sendTimeout = 15 * time.Second
