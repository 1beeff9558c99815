// Package transport provides the HTTP client shared by the table fetcher and
// the settlement directory client. Requests are throttled, carry a browser
// User-Agent and have their bodies decoded from the source character set.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
)

// Client performs throttled GET requests.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	service   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit limits requests to perSecond with the given burst. A
// non-positive rate disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithService names the remote service in errors.
func WithService(name string) Option {
	return func(c *Client) {
		c.service = name
	}
}

// New creates a client with the default timeout and no throttling.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		userAgent: constants.UserAgent,
		service:   constants.DocumentService,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns the raw body. A non-200 status is reported as
// *errors.APIError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.WrapResource("wait", "rate limiter", c.service, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: url,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	logging.FromContext(ctx).Debug().
		Str("service", c.service).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("HTTP request")

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{
			Service:    c.service,
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: url,
			Message:  "failed to read response body",
			Err:      err,
		}
	}
	return body, nil
}

// Fetch fetches url and decodes the body from the named character set.
func (c *Client) Fetch(ctx context.Context, url, charset string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return Decode(body, charset)
}
