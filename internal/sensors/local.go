package sensors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// LocalSource reads the database file directly. Used when the check runs on
// the sensor hub itself, and by tests.
type LocalSource struct {
	db *sql.DB
}

func NewLocalSource(path string) (*LocalSource, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// Read-only workload; one connection keeps sqlite happy.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &LocalSource{db: db}, nil
}

func (l *LocalSource) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *LocalSource) CheckIns(ctx context.Context, since time.Time) ([]CheckIn, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT mac, location, timestamp FROM temp_humidity
		 WHERE timestamp >= ? ORDER BY mac, timestamp`,
		since.UTC().Format(sqlTimeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	var out []CheckIn
	for rows.Next() {
		var mac, location, ts string
		if err := rows.Scan(&mac, &location, &ts); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		out = append(out, CheckIn{MAC: mac, Location: location, Timestamp: t})
	}
	return out, rows.Err()
}
