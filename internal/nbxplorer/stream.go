package nbxplorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nbxwatch/internal/pkg/logger"
	"nbxwatch/internal/watcher"

	"github.com/hashicorp/go-retryablehttp"
)

const eventChannelBufferSize = 16

// Ensure the client satisfies the watcher.EventSource interface.
var _ watcher.EventSource = (*Client)(nil)

// StreamEvents long-polls the event feed starting after fromEventID and
// yields every event singly, in order, on the returned channel.
//
// The cursor advances only after an event has been delivered to the consumer,
// so a crash mid-batch never skips events on resume. Transport and protocol
// failures are logged and retried with the same cursor after a flat backoff;
// the sequence ends only when ctx is canceled, at which point the channel is
// closed.
func (c *Client) StreamEvents(ctx context.Context, fromEventID int64) <-chan watcher.Event {
	eventsCh := make(chan watcher.Event, eventChannelBufferSize)

	go func() {
		defer close(eventsCh)

		lastEventID := fromEventID
		for ctx.Err() == nil {
			events, err := c.fetchEvents(ctx, lastEventID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				logger.Error(ctx, "event poll failed, keeping cursor",
					"last_event_id", lastEventID,
					"backoff", c.streamBackoff.String(),
					"error", err,
				)
				if !sleepContext(ctx, c.streamBackoff) {
					return
				}
				continue
			}

			// An empty batch just means the wait window elapsed; re-poll
			// immediately.
			for _, event := range events {
				select {
				case eventsCh <- event:
				case <-ctx.Done():
					return
				}

				if event.ID > lastEventID {
					lastEventID = event.ID
				}
			}
		}
	}()

	return eventsCh
}

// fetchEvents issues one long-poll request and decodes the returned batch.
func (c *Client) fetchEvents(ctx context.Context, lastEventID int64) ([]watcher.Event, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.eventsURL(lastEventID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("event feed returned status %d", resp.StatusCode)
	}

	var envelopes []eventEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		return nil, fmt.Errorf("decoding event batch: %w", err)
	}

	events := make([]watcher.Event, len(envelopes))
	for i, envelope := range envelopes {
		events[i] = envelope.toWatcherEvent()
	}
	return events, nil
}

// sleepContext waits for d or until ctx is done. Reports whether the full
// duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
