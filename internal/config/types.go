package config

// Config is the dispatcher-side configuration.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
// Secrets (ntfy credentials, telegram token, SSH settings) are NOT kept
// here; task units read them from the environment / .env themselves.
type Config struct {
	Tasks   TasksConfig   `yaml:"tasks,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`

	// Schedules is informational only: task name -> schedule spec, shown by
	// `run -list` with the next fire time. The actual triggering lives in the
	// external scheduler's own table (crontab / systemd timers).
	Schedules map[string]string `yaml:"schedules,omitempty"`
}

// TasksConfig locates the task collection.
//
// Defaults (when fields are omitted/zero):
//   - root: the directory containing the dispatcher binary
//   - entry_point: "run"
type TasksConfig struct {
	Root       string `yaml:"root,omitempty"`
	EntryPoint string `yaml:"entry_point,omitempty"`
}

type LoggingConfig struct {
	Level   string         `yaml:"level,omitempty"`
	Console *bool          `yaml:"console,omitempty"` // nil means enabled
	File    LoggingFile    `yaml:"file,omitempty"`
	Journal LoggingJournal `yaml:"journal,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

type LoggingJournal struct {
	Enabled  bool   `yaml:"enabled"`
	MinLevel string `yaml:"min_level,omitempty"`
}

// NotifyConfig holds the defaults task units fall back to when their own
// environment does not override the channel settings.
type NotifyConfig struct {
	// Channel selects the delivery backend: "ntfy" (default) or "telegram".
	Channel    string         `yaml:"channel,omitempty"`
	RatePerSec int            `yaml:"rate_per_sec,omitempty"`
	Ntfy       NtfyConfig     `yaml:"ntfy,omitempty"`
	Telegram   TelegramConfig `yaml:"telegram,omitempty"`
}

type NtfyConfig struct {
	Host     string `yaml:"host,omitempty"`
	Topic    string `yaml:"topic,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// Timeout is a Go duration string; default "10s".
	Timeout string `yaml:"timeout,omitempty"`
}

type TelegramConfig struct {
	Token  string `yaml:"token,omitempty"`
	ChatID int64  `yaml:"chat_id,omitempty"`
}

func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}
