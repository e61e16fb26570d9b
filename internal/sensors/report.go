package sensors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskbox/internal/notify"
)

// Report is the outcome of one freshness check.
type Report struct {
	Since    time.Time
	Window   time.Duration
	CheckIns []CheckIn
	Missing  []Missing
	// Empty means the window had no rows at all: every sensor (or the hub's
	// collector) may be down, which is worse than a single stale sensor.
	Empty bool
}

// Check runs one freshness pass against src.
func Check(ctx context.Context, src Source, cfg Config) (Report, error) {
	cfg = cfg.withDefaults()
	since := time.Now().UTC().Add(-cfg.Window)

	rows, err := src.CheckIns(ctx, since)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Since:    since,
		Window:   cfg.Window,
		CheckIns: rows,
		Missing:  Analyze(rows, cfg.MinCheckins),
		Empty:    len(rows) == 0,
	}, nil
}

// Healthy reports whether no notification is warranted.
func (r Report) Healthy() bool { return !r.Empty && len(r.Missing) == 0 }

// Notification shapes the alert for an unhealthy report. ok is false for a
// healthy report (the check stays silent unless something is wrong).
func (r Report) Notification() (notify.Message, bool) {
	switch {
	case r.Empty:
		return notify.Message{
			Title: "Sensor Check-in Alert",
			Body: fmt.Sprintf("No sensor data received in the last %d minutes. All sensors may be offline.",
				int(r.Window.Minutes())),
			Priority: 4,
			Tags:     []string{"warning", "thermometer"},
		}, true
	case len(r.Missing) > 0:
		lines := make([]string, 0, len(r.Missing))
		for _, m := range r.Missing {
			lines = append(lines, fmt.Sprintf("%s (%s)", m.MAC, m.Location))
		}
		return notify.Message{
			Title: "Sensor Check-in Alert",
			Body: fmt.Sprintf("Missing check-ins detected for %d sensor(s):\n%s",
				len(r.Missing), strings.Join(lines, "\n")),
			Priority: 2,
			Tags:     []string{"warning", "thermometer"},
		}, true
	default:
		return notify.Message{}, false
	}
}
