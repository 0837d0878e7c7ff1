// Package http builds configured HTTP clients on top of HashiCorp's
// retryablehttp. Functional options control timeouts, retry behavior and
// basic-auth credentials attached to every request.
package http

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type config struct {
	timeout      time.Duration // per-request budget, must exceed any server-side wait
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	retryMax     int
	basicUser    string
	basicPass    string
}

// Option configures the HTTP client.
type Option func(*config)

// basicAuthTransport injects an Authorization header on every request.
type basicAuthTransport struct {
	user, pass string
	inner      http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.user, t.pass)
	return t.inner.RoundTrip(req)
}

// NewClient returns a retryablehttp.Client built from the given options.
// Defaults: 10s timeout, 1s-5s retry waits, 2 retries, no auth.
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      10 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax

	if cfg.basicUser != "" || cfg.basicPass != "" {
		client.HTTPClient.Transport = &basicAuthTransport{
			user:  cfg.basicUser,
			pass:  cfg.basicPass,
			inner: http.DefaultTransport,
		}
	}

	return client
}

// WithTimeout sets the maximum duration for a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the maximum number of retries for failed requests.
// Use 0 when the caller owns the retry policy.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithBasicAuth attaches HTTP basic credentials to every outgoing request.
func WithBasicAuth(user, pass string) Option {
	return func(c *config) {
		c.basicUser = user
		c.basicPass = pass
	}
}
