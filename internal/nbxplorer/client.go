// Package nbxplorer implements the HTTP client for an NBXplorer-style
// wallet-tracking service: derivation registration, balance lookups with
// endpoint fallback, and the long-polled event stream. It satisfies the
// collaborator interfaces declared by the registry, txwatch and watcher
// packages.
package nbxplorer

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	transporthttp "nbxwatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// cryptoCode is the only currency this client speaks.
const cryptoCode = "BTC"

const (
	// longPollSeconds is the server-side wait budget passed on event polls.
	longPollSeconds = 20

	// streamRequestTimeout must exceed the long-poll wait budget so a held
	// request is not mistaken for a stuck one.
	streamRequestTimeout = 30 * time.Second

	// requestTimeout bounds the non-streaming calls.
	requestTimeout = 10 * time.Second

	// streamFailureBackoff is the flat sleep between failed event polls.
	streamFailureBackoff = 10 * time.Second
)

// Client talks to one NBXplorer instance with HTTP basic credentials.
type Client struct {
	baseURL string

	// http retries transient failures itself; stream does not, because the
	// stream loop owns the retry policy to keep its cursor rules intact.
	http   *retryablehttp.Client
	stream *retryablehttp.Client

	streamBackoff time.Duration
}

type config struct {
	streamBackoff time.Duration
}

// Option configures the client.
type Option func(*config)

// WithStreamFailureBackoff overrides the sleep between failed event polls.
func WithStreamFailureBackoff(d time.Duration) Option {
	return func(c *config) {
		c.streamBackoff = d
	}
}

// NewClient builds a client for the service at baseURL (scheme://host:port)
// authenticating every request with the given basic credentials.
func NewClient(baseURL, user, pass string, opts ...Option) *Client {
	cfg := config{streamBackoff: streamFailureBackoff}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		baseURL: baseURL,
		http: transporthttp.NewClient(
			transporthttp.WithTimeout(requestTimeout),
			transporthttp.WithBasicAuth(user, pass),
		),
		stream: transporthttp.NewClient(
			transporthttp.WithTimeout(streamRequestTimeout),
			transporthttp.WithRetryMax(0),
			transporthttp.WithBasicAuth(user, pass),
		),
		streamBackoff: cfg.streamBackoff,
	}
}

// derivationURL builds {base}/v1/cryptos/BTC/derivations/{descriptor}[suffix]
// with the descriptor path-escaped.
func (c *Client) derivationURL(descriptor, suffix string) string {
	return fmt.Sprintf("%s/v1/cryptos/%s/derivations/%s%s",
		c.baseURL, cryptoCode, url.PathEscape(descriptor), suffix)
}

func (c *Client) eventsURL(lastEventID int64) string {
	return fmt.Sprintf("%s/v1/cryptos/%s/events?lastEventId=%d&longPolling=%d",
		c.baseURL, cryptoCode, lastEventID, longPollSeconds)
}

// drainAndClose releases the response body so the connection can be reused.
func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
