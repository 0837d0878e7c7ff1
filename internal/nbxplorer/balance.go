package nbxplorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/watcher"

	"github.com/hashicorp/go-retryablehttp"
)

// Ensure the client satisfies the watcher.BalanceResolver interface.
var _ watcher.BalanceResolver = (*Client)(nil)

// balanceProbe is one step of the balance fallback chain: an endpoint suffix
// plus the field names its response may carry the confirmed amount under.
type balanceProbe struct {
	suffix string
	fields []string
}

// balanceProbes is tried in order. The primary /summary endpoint falls back
// to the legacy /balance endpoint (only on 404), whose schema drifted between
// two field names over time.
var balanceProbes = []balanceProbe{
	{suffix: "/summary", fields: []string{"confirmedBalance"}},
	{suffix: "/balance", fields: []string{"confirmedBalance", "confirmed"}},
}

// WalletBalanceSats fetches the wallet's confirmed balance. It is strictly
// best-effort: a not-found on the primary endpoint consults the fallback,
// and any other failure yields (0, degraded=true) after logging. The caller
// never has to handle an error, so a balance outage cannot abort a
// notification.
func (c *Client) WalletBalanceSats(ctx context.Context, derivation string) (int64, bool) {
	for i, probe := range balanceProbes {
		sats, status, err := c.fetchBalance(ctx, derivation, probe)
		switch {
		case err != nil:
			logger.Error(ctx, "balance query failed",
				"endpoint", probe.suffix,
				"error", err,
			)
			return 0, true
		case status == http.StatusNotFound && i < len(balanceProbes)-1:
			continue
		case status != http.StatusOK:
			logger.Error(ctx, "balance query returned unexpected status",
				"endpoint", probe.suffix,
				"status", status,
			)
			return 0, true
		default:
			return sats, false
		}
	}

	return 0, true
}

// fetchBalance queries one endpoint of the chain. A non-2xx status is not an
// error here; the caller decides whether it warrants the fallback.
func (c *Client) fetchBalance(ctx context.Context, derivation string, probe balanceProbe) (int64, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.derivationURL(derivation, probe.suffix), nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return 0, resp.StatusCode, nil
	}

	// Responses carry more than the balance fields, so decode loosely and
	// pick out the first known field.
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("decoding balance response: %w", err)
	}

	for _, field := range probe.fields {
		raw, ok := body[field]
		if !ok {
			continue
		}

		var sats int64
		if err := json.Unmarshal(raw, &sats); err != nil {
			return 0, 0, fmt.Errorf("field %q is not an integer: %w", field, err)
		}
		return sats, resp.StatusCode, nil
	}

	// No known field present: treat as a zero balance, not a failure.
	return 0, resp.StatusCode, nil
}
