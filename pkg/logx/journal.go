package logx

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter forwards zerolog JSON lines to systemd-journald.
//
// Under a cron/systemd timer the dispatcher's stdout is mailed or discarded;
// the journal keeps runs queryable (journalctl SYSLOG_IDENTIFIER=taskbox).
type journalWriter struct {
	min zerolog.Level
}

func newJournalWriter(min zerolog.Level) (*journalWriter, error) {
	if !journal.Enabled() {
		return nil, errors.New("journald socket not present")
	}
	return &journalWriter{min: min}, nil
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.min {
		return len(p), nil
	}

	msg, vars := splitJournalFields(p)
	if msg == "" {
		return len(p), nil
	}
	vars["SYSLOG_IDENTIFIER"] = "taskbox"

	// Best effort: a full journal is not a reason to fail the task.
	_ = journal.Send(msg, journalPriority(level), vars)
	return len(p), nil
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch {
	case level >= zerolog.ErrorLevel:
		return journal.PriErr
	case level >= zerolog.WarnLevel:
		return journal.PriWarning
	case level >= zerolog.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// splitJournalFields decodes a zerolog JSON line into the message and
// uppercase journal field variables.
func splitJournalFields(p []byte) (string, map[string]string) {
	vars := map[string]string{}
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return strings.TrimSpace(string(p)), vars
	}

	msg, _ := m[zerolog.MessageFieldName].(string)
	for k, v := range m {
		switch k {
		case zerolog.MessageFieldName, zerolog.TimestampFieldName, zerolog.LevelFieldName:
			continue
		}
		key := strings.ToUpper(strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return '_'
		}, k))
		if key == "" || key[0] == '_' {
			continue
		}
		switch vv := v.(type) {
		case string:
			vars[key] = vv
		default:
			b, err := json.Marshal(vv)
			if err == nil {
				vars[key] = string(b)
			}
		}
	}
	return msg, vars
}
