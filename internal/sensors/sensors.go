// Package sensors checks a temp_humidity SQLite table for sensors that
// stopped checking in.
//
// The table lives on the sensor hub; it is reachable either over SSH
// (running sqlite3 -json remotely, the normal deployment) or directly on
// disk (same-host deployments and tests). Both paths produce the same
// CheckIn rows, so the analysis is source-agnostic.
package sensors

import (
	"context"
	"sort"
	"time"
)

// CheckIn is one row of the temp_humidity table (the columns the check
// reads; temperature/humidity are irrelevant to freshness).
type CheckIn struct {
	MAC       string
	Location  string
	Timestamp time.Time
}

// Missing identifies a sensor with too few check-ins in the window.
type Missing struct {
	MAC      string
	Location string
}

// Config are the freshness thresholds.
//
// Defaults match the deployed values: any sensor is expected to report
// roughly every 15 minutes, so 2 check-ins per 45-minute window is the
// floor below which something is wrong.
type Config struct {
	Window      time.Duration
	MinCheckins int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = 45 * time.Minute
	}
	if c.MinCheckins <= 0 {
		c.MinCheckins = 2
	}
	return c
}

// Source yields the check-ins recorded at or after since.
type Source interface {
	CheckIns(ctx context.Context, since time.Time) ([]CheckIn, error)
	Close() error
}

// Analyze counts check-ins per MAC and returns the sensors below min,
// sorted by MAC for stable notification text. The first row seen for a MAC
// determines its reported location.
func Analyze(rows []CheckIn, min int) []Missing {
	counts := map[string]int{}
	locations := map[string]string{}
	for _, r := range rows {
		if r.MAC == "" {
			continue
		}
		counts[r.MAC]++
		if _, ok := locations[r.MAC]; !ok {
			loc := r.Location
			if loc == "" {
				loc = "unknown location"
			}
			locations[r.MAC] = loc
		}
	}

	var missing []Missing
	for mac, n := range counts {
		if n < min {
			missing = append(missing, Missing{MAC: mac, Location: locations[mac]})
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].MAC < missing[j].MAC })
	return missing
}

const sqlTimeFormat = "2006-01-02 15:04:05"

// checkInQuery builds the freshness query. The cutoff is interpolated (not
// bound) because the SSH path hands the statement to the sqlite3 CLI; the
// value is a formatted timestamp we produced ourselves, never user input.
func checkInQuery(since time.Time) string {
	return "SELECT mac, location, timestamp FROM temp_humidity" +
		" WHERE timestamp >= '" + since.UTC().Format(sqlTimeFormat) + "'" +
		" ORDER BY mac, timestamp"
}

// parseTimestamp accepts the two forms sqlite emits for DATETIME defaults:
// with and without fractional seconds.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05.000000", s); err == nil {
		return t, nil
	}
	return time.Parse(sqlTimeFormat, s)
}
