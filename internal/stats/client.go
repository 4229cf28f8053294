// Package stats provides a minimal client for the stats.nba.com JSON API.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the root endpoint for the stats API.
const DefaultBaseURL = "https://stats.nba.com/stats"

// The API rejects requests without a browser-like Referer and User-Agent.
const (
	referer   = "https://www.nba.com/"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client is a rate-limited stats API client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// NewClient returns a stats API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
	}
}

// get waits for the rate limiter, performs a GET against endpoint and
// JSON-decodes the response body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", referer)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", endpoint, err)
	}
	return nil
}
