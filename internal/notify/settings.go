package notify

import (
	"os"
	"strings"

	"taskbox/internal/config"
)

// FromConfig maps the dispatcher config block into this package's Config.
//
// topicEnv names the per-task topic variable (NTFY_EOD_TOPIC,
// NTFY_SENSOR_TOPIC, ...): every task unit alerts on its own topic so the
// phone can give them different sounds, while host and credentials are
// shared.
func FromConfig(cc config.NotifyConfig, topicEnv string) (Config, error) {
	timeout, err := config.ParseDurationField("notify.ntfy.timeout", cc.Ntfy.Timeout)
	if err != nil {
		return Config{}, err
	}

	topic := cc.Ntfy.Topic
	if topicEnv != "" {
		if v := strings.TrimSpace(os.Getenv(topicEnv)); v != "" {
			topic = v
		}
	}

	return Config{
		Channel:    cc.Channel,
		RatePerSec: cc.RatePerSec,
		Ntfy: NtfyConfig{
			Host:     cc.Ntfy.Host,
			Topic:    topic,
			Username: cc.Ntfy.Username,
			Password: cc.Ntfy.Password,
			Timeout:  timeout,
		},
		Telegram: TelegramConfig{
			Token:  cc.Telegram.Token,
			ChatID: cc.Telegram.ChatID,
		},
	}, nil
}
