package schedule

import (
	"testing"
	"time"
)

func TestParseVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		kind     Kind
		duration time.Duration
	}{
		{name: "cron", raw: "*/5 * * * *", kind: KindCron},
		{name: "cron descriptor", raw: "@hourly", kind: KindCron},
		{name: "prefixed cron", raw: "cron:0 0 * * *", kind: KindCron},
		{name: "weekday mornings", raw: "30 16 * * 1-5", kind: KindCron},
		{name: "duration", raw: "10m", kind: KindInterval, duration: 10 * time.Minute},
		{name: "prefixed interval", raw: "every:45s", kind: KindInterval, duration: 45 * time.Second},
		{name: "hhmm", raw: "01:30", kind: KindInterval, duration: 90 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if tt.kind == KindInterval && got.Every != tt.duration {
				t.Fatalf("Every = %v, want %v", got.Every, tt.duration)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-schedule", "cron:", "every:", "61 * * * * *", "12:75"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q): expected error", raw)
		}
	}
}

func TestNextCron(t *testing.T) {
	t.Parallel()
	spec, err := Parse("*/15 * * * *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	base := time.Date(2026, 8, 24, 7, 1, 0, 0, time.UTC)
	next := spec.Next(base)
	want := time.Date(2026, 8, 24, 7, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}

func TestNextInterval(t *testing.T) {
	t.Parallel()
	spec, err := Parse("45m")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	base := time.Now()
	if got := spec.Next(base); !got.Equal(base.Add(45 * time.Minute)) {
		t.Fatalf("Next = %v", got)
	}
	if spec.String() != "every 45m0s" {
		t.Fatalf("String = %q", spec.String())
	}
}
