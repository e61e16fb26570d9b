package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := parseTimestamp(s)
	require.NoError(t, err)
	return v
}

func TestAnalyze(t *testing.T) {
	t.Parallel()
	rows := []CheckIn{
		{MAC: "aa:aa", Location: "wine", Timestamp: time.Now()},
		{MAC: "aa:aa", Location: "wine", Timestamp: time.Now()},
		{MAC: "aa:aa", Location: "wine", Timestamp: time.Now()},
		{MAC: "cc:cc", Location: "", Timestamp: time.Now()},
		{MAC: "bb:bb", Location: "attic", Timestamp: time.Now()},
	}

	missing := Analyze(rows, 2)
	require.Len(t, missing, 2)
	// Sorted by MAC for stable notification text.
	assert.Equal(t, Missing{MAC: "bb:bb", Location: "attic"}, missing[0])
	assert.Equal(t, Missing{MAC: "cc:cc", Location: "unknown location"}, missing[1])
}

func TestAnalyzeAllHealthy(t *testing.T) {
	t.Parallel()
	rows := []CheckIn{
		{MAC: "aa:aa", Location: "wine"},
		{MAC: "aa:aa", Location: "cellar"}, // location of the first row wins
	}
	assert.Empty(t, Analyze(rows, 2))
	assert.Empty(t, Analyze(nil, 2))
}

func TestAnalyzeSkipsBlankMAC(t *testing.T) {
	t.Parallel()
	rows := []CheckIn{{MAC: "", Location: "wine"}}
	assert.Empty(t, Analyze(rows, 2))
}

func TestCheckInQuery(t *testing.T) {
	t.Parallel()
	since := time.Date(2026, 8, 24, 7, 15, 0, 0, time.UTC)
	got := checkInQuery(since)
	assert.Contains(t, got, "FROM temp_humidity")
	assert.Contains(t, got, "timestamp >= '2026-08-24 07:15:00'")
	assert.Contains(t, got, "ORDER BY mac, timestamp")
}

func TestDecodeRows(t *testing.T) {
	t.Parallel()
	out := []byte(`[
		{"mac":"24:58:7c:ac:61:8c","location":"wine","timestamp":"2025-06-29 23:46:18.000000"},
		{"mac":"24:58:7c:ac:61:8c","location":"wine","timestamp":"2025-06-30 00:01:55"}
	]`)
	rows, err := decodeRows(out)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "24:58:7c:ac:61:8c", rows[0].MAC)
	assert.Equal(t, "wine", rows[0].Location)
	assert.Equal(t, ts(t, "2025-06-29 23:46:18"), rows[0].Timestamp)
}

func TestDecodeRowsEmpty(t *testing.T) {
	t.Parallel()
	// sqlite3 -json prints nothing at all for zero rows.
	rows, err := decodeRows([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeRowsBadInput(t *testing.T) {
	t.Parallel()
	_, err := decodeRows([]byte("Error: no such table: temp_humidity"))
	assert.Error(t, err)

	_, err = decodeRows([]byte(`[{"mac":"aa","location":"x","timestamp":"yesterday"}]`))
	assert.Error(t, err)
}

func TestReportNotification(t *testing.T) {
	t.Parallel()

	t.Run("empty window", func(t *testing.T) {
		t.Parallel()
		r := Report{Empty: true, Window: 45 * time.Minute}
		msg, ok := r.Notification()
		require.True(t, ok)
		assert.Equal(t, 4, msg.Priority)
		assert.Contains(t, msg.Body, "last 45 minutes")
		assert.Contains(t, msg.Body, "All sensors may be offline")
		assert.False(t, r.Healthy())
	})

	t.Run("missing check-ins", func(t *testing.T) {
		t.Parallel()
		r := Report{
			CheckIns: []CheckIn{{MAC: "aa:aa"}},
			Missing:  []Missing{{MAC: "aa:aa", Location: "wine"}},
		}
		msg, ok := r.Notification()
		require.True(t, ok)
		assert.Equal(t, 2, msg.Priority)
		assert.Contains(t, msg.Body, "1 sensor(s)")
		assert.Contains(t, msg.Body, "aa:aa (wine)")
		assert.False(t, r.Healthy())
	})

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		r := Report{CheckIns: []CheckIn{{MAC: "aa:aa"}}}
		_, ok := r.Notification()
		assert.False(t, ok)
		assert.True(t, r.Healthy())
	})
}
