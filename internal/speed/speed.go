// Package speed measures the home connection against the nearest speedtest
// server. One measurement per invocation; trends live in the notification
// history, not here.
package speed

import (
	"context"
	"errors"
	"fmt"
	"time"

	st "github.com/showwin/speedtest-go/speedtest"
)

// Result is a single measurement.
type Result struct {
	Timestamp    time.Time
	DownloadMbps float64
	UploadMbps   float64
	PingMs       float64
	ISP          string
	ServerName   string
	ServerHost   string
	Duration     time.Duration
}

type Config struct {
	// OperationTimeout bounds the whole run; default 3m.
	OperationTimeout time.Duration
	// SavingMode trades accuracy for bandwidth/memory on small boxes.
	SavingMode bool
}

// Run performs ping + download + upload against the nearest server.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	// Avoid package-level speedtest helpers; speedtest-go keeps package
	// state that a fresh client sidesteps.
	client := st.New(st.WithUserConfig(&st.UserConfig{SavingMode: cfg.SavingMode}))

	user, err := client.FetchUserInfoContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	servers, err := client.FetchServerListContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch server list: %w", err)
	}
	targets, err := servers.FindServer(nil)
	if err != nil || len(targets) == 0 {
		if err == nil {
			err = errors.New("no servers available")
		}
		return nil, fmt.Errorf("pick server: %w", err)
	}
	srv := targets[0]

	if err := srv.PingTestContext(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping test: %w", err)
	}
	if err := srv.DownloadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("download test: %w", err)
	}
	if err := srv.UploadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("upload test: %w", err)
	}

	return &Result{
		Timestamp:    start,
		DownloadMbps: srv.DLSpeed.Mbps(),
		UploadMbps:   srv.ULSpeed.Mbps(),
		PingMs:       float64(srv.Latency.Milliseconds()),
		ISP:          user.Isp,
		ServerName:   srv.Name,
		ServerHost:   srv.Host,
		Duration:     time.Since(start),
	}, nil
}

// Summary renders the measurement for a notification body.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Download: %.1f Mbps\nUpload: %.1f Mbps\nPing: %.0f ms\nISP: %s\nServer: %s\nTook: %.0fs",
		r.DownloadMbps, r.UploadMbps, r.PingMs, r.ISP, r.ServerName, r.Duration.Seconds(),
	)
}

// BelowFloor reports whether the measured download is under the configured
// minimum (0 disables the check).
func (r *Result) BelowFloor(floorMbps float64) bool {
	return floorMbps > 0 && r.DownloadMbps < floorMbps
}
