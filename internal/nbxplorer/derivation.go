package nbxplorer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// RegisterDerivation asks the tracking service to watch the given descriptor.
// Registration is idempotent: 200/201 and 409 ("already exists") both count
// as success, with alreadyRegistered distinguishing the latter. Any other
// status or transport failure is an error.
func (c *Client) RegisterDerivation(ctx context.Context, descriptor string) (alreadyRegistered bool, err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.derivationURL(descriptor, ""), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer drainAndClose(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return false, nil
	case http.StatusConflict:
		return true, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("registration returned status %d: %s", resp.StatusCode, body)
	}
}
