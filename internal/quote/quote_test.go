package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(5*time.Second, WithBaseURL(srv.URL))
}

func TestFetchQuote(t *testing.T) {
	c := chartServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/RKLB", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{
			"symbol":"RKLB","currency":"USD",
			"regularMarketPrice":52.10,"previousClose":51.42
		}}],"error":null}}`)
	})

	q, err := c.Fetch(context.Background(), "rklb")
	require.NoError(t, err)
	assert.Equal(t, "RKLB", q.Symbol)
	assert.Equal(t, 52.10, q.Price)
	assert.Equal(t, "USD", q.Currency)
	assert.InDelta(t, 1.3224, q.ChangePct, 0.001)
	assert.Equal(t, "arrow_up", q.Direction())
	assert.Equal(t, "https://finance.yahoo.com/quote/RKLB/", q.PageURL())
}

func TestFetchQuoteChartPreviousCloseFallback(t *testing.T) {
	c := chartServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{
			"symbol":"RKLB","regularMarketPrice":50.0,"chartPreviousClose":52.0
		}}]}}`)
	})

	q, err := c.Fetch(context.Background(), "RKLB")
	require.NoError(t, err)
	assert.InDelta(t, -3.846, q.ChangePct, 0.001)
	assert.Equal(t, "arrow_down", q.Direction())
}

func TestFetchQuoteErrors(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"api error", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}},
		{"empty result", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"chart":{"result":[]}}`)
		}},
		{"no price", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"RKLB"}}]}}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chartServer(t, tt.h)
			_, err := c.Fetch(context.Background(), "RKLB")
			assert.Error(t, err)
		})
	}
}

func TestFetchQuoteEmptySymbol(t *testing.T) {
	t.Parallel()
	c := NewClient(time.Second)
	_, err := c.Fetch(context.Background(), "  ")
	assert.Error(t, err)
}

func TestDirectionFlat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "arrow_up_down", Quote{}.Direction())
}
