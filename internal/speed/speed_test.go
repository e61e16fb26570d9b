package speed

import (
	"strings"
	"testing"
	"time"
)

func TestSummary(t *testing.T) {
	t.Parallel()
	r := &Result{
		DownloadMbps: 512.34,
		UploadMbps:   48.7,
		PingMs:       12,
		ISP:          "ExampleNet",
		ServerName:   "Amsterdam",
		Duration:     42 * time.Second,
	}
	got := r.Summary()
	for _, want := range []string{"512.3 Mbps", "48.7 Mbps", "12 ms", "ExampleNet", "Amsterdam", "42s"} {
		if !strings.Contains(got, want) {
			t.Fatalf("Summary() missing %q:\n%s", want, got)
		}
	}
}

func TestBelowFloor(t *testing.T) {
	t.Parallel()
	r := &Result{DownloadMbps: 100}
	if r.BelowFloor(0) {
		t.Fatal("floor 0 must disable the check")
	}
	if r.BelowFloor(50) {
		t.Fatal("100 Mbps is not below a 50 Mbps floor")
	}
	if !r.BelowFloor(200) {
		t.Fatal("100 Mbps is below a 200 Mbps floor")
	}
}
