package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Ntfy posts messages to an ntfy.sh-compatible endpoint.
//
// Wire format: POST <host>/<topic> with the body as payload and metadata in
// Title / Priority / Tags / Click headers, basic auth when credentials are
// configured.
type Ntfy struct {
	client  *resty.Client
	topic   string
	limiter *rate.Limiter
}

func NewNtfy(cfg NtfyConfig, ratePerSec int) (*Ntfy, error) {
	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		return nil, errors.New("ntfy host is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("ntfy topic is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout)
	if cfg.Username != "" && cfg.Password != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}

	rps := ratePerSec
	if rps <= 0 {
		rps = 3
	}

	return &Ntfy{
		client: client,
		topic:  strings.TrimSpace(cfg.Topic),
		// Token bucket: burst = rate per sec, so short spikes don't block too hard.
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (n *Ntfy) Send(ctx context.Context, msg Message) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	req := n.client.R().
		SetContext(ctx).
		SetHeader("Title", msg.Title).
		SetHeader("Priority", strconv.Itoa(msg.priority())).
		SetBody(msg.Body)
	if tags := msg.tagHeader(); tags != "" {
		req.SetHeader("Tags", tags)
	}
	if msg.Click != "" {
		req.SetHeader("Click", msg.Click)
	}

	resp, err := req.Post("/" + n.topic)
	if err != nil {
		return fmt.Errorf("ntfy post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ntfy post: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	return nil
}
