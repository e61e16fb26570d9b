// Package quote fetches delayed stock quotes from the Yahoo Finance chart
// API (the unauthenticated endpoint; the v7 quote endpoint now requires a
// crumb, the chart meta carries the same regular-market fields without one).
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"

	// Yahoo rejects Go's default user agent with 429s.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) taskbox/1.0"
)

// Quote is one delayed market snapshot.
type Quote struct {
	Symbol    string
	Price     float64
	ChangePct float64
	Currency  string
}

// Direction returns the ntfy arrow tag for the day move.
func (q Quote) Direction() string {
	switch {
	case q.ChangePct > 0:
		return "arrow_up"
	case q.ChangePct < 0:
		return "arrow_down"
	default:
		return "arrow_up_down"
	}
}

// PageURL is the human-facing quote page, used as the notification click
// target.
func (q Quote) PageURL() string {
	return "https://finance.yahoo.com/quote/" + q.Symbol + "/"
}

type Client struct {
	http *resty.Client
}

type Option func(*Client)

// WithBaseURL overrides the API host (tests point this at httptest).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(u, "/")) }
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// chartResponse mirrors the slice of /v8/finance/chart we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the current regular-market quote for symbol.
func (c *Client) Fetch(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, errors.New("symbol is required")
	}

	var out chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"range": "1d", "interval": "1d"}).
		SetResult(&out).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	if resp.IsError() {
		return Quote{}, fmt.Errorf("fetch quote %s: %s", symbol, resp.Status())
	}
	if e := out.Chart.Error; e != nil {
		return Quote{}, fmt.Errorf("fetch quote %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(out.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("fetch quote %s: empty result", symbol)
	}

	meta := out.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return Quote{}, fmt.Errorf("fetch quote %s: no regular market price", symbol)
	}

	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	q := Quote{
		Symbol:   symbol,
		Price:    meta.RegularMarketPrice,
		Currency: meta.Currency,
	}
	if prev != 0 {
		q.ChangePct = (meta.RegularMarketPrice - prev) / prev * 100
	}
	return q, nil
}
