package nbxplorer

import (
	"encoding/json"
	"strings"
	"time"

	"nbxwatch/internal/watcher"
)

// Wire-level event types as NBXplorer reports them.
const (
	eventTypeNewTransaction = "newtransaction"
	eventTypeNewBlock       = "newblock"
)

type (
	// eventEnvelope is one entry of the GET /events response array.
	eventEnvelope struct {
		EventID int64           `json:"eventId"`
		Type    string          `json:"type"`
		Data    json.RawMessage `json:"data"`
	}

	// txValue is a single owned input or output of the wallet.
	txValue struct {
		Value int64 `json:"value"`
	}

	// transactionData nests under the newtransaction payload.
	transactionData struct {
		TransactionHash string `json:"transactionHash"`
		Confirmations   *int   `json:"confirmations"`
	}

	// transactionPayload is the data object of a newtransaction event.
	transactionPayload struct {
		DerivationStrategy string          `json:"derivationStrategy"`
		TransactionData    transactionData `json:"transactionData"`
		Inputs             []txValue       `json:"inputs"`
		Outputs            []txValue       `json:"outputs"`

		// Known first-seen timestamp fields, probed in declaration order.
		Timestamp string `json:"timestamp"`
		SeenAt    string `json:"seenAt"`
		FirstSeen string `json:"firstSeen"`
	}

	// blockPayload is the data object of a newblock event.
	blockPayload struct {
		Height int64  `json:"height"`
		Hash   string `json:"hash"`
	}
)

// timestampLayouts are tried after RFC3339 parsing fails; values without a
// zone suffix are taken as UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses an RFC3339-like timestamp into UTC. Returns the zero
// time when the value is empty or unparseable.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}

	trimmed, _ := strings.CutSuffix(s, "Z")
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t
		}
	}

	return time.Time{}
}

// observedAt resolves the first usable timestamp field.
func (p transactionPayload) observedAt() time.Time {
	for _, candidate := range []string{p.Timestamp, p.SeenAt, p.FirstSeen} {
		if t := parseTimestamp(candidate); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

func (p transactionPayload) toWatcherTransaction() *watcher.TransactionEvent {
	inputs := make([]int64, len(p.Inputs))
	for i, in := range p.Inputs {
		inputs[i] = in.Value
	}
	outputs := make([]int64, len(p.Outputs))
	for i, out := range p.Outputs {
		outputs[i] = out.Value
	}

	return &watcher.TransactionEvent{
		DerivationStrategy: p.DerivationStrategy,
		TxHash:             p.TransactionData.TransactionHash,
		Confirmations:      p.TransactionData.Confirmations,
		InputsSats:         inputs,
		OutputsSats:        outputs,
		ObservedAt:         p.observedAt(),
	}
}

// toWatcherEvent converts a wire envelope to the domain event variant.
// Payloads that fail to decode degrade to KindOther so one malformed entry
// cannot take down the stream.
func (e eventEnvelope) toWatcherEvent() watcher.Event {
	event := watcher.Event{
		ID:      e.EventID,
		Kind:    watcher.KindOther,
		RawType: e.Type,
	}

	switch e.Type {
	case eventTypeNewTransaction:
		var payload transactionPayload
		if err := json.Unmarshal(e.Data, &payload); err == nil {
			event.Kind = watcher.KindNewTransaction
			event.Transaction = payload.toWatcherTransaction()
		}
	case eventTypeNewBlock:
		var payload blockPayload
		if err := json.Unmarshal(e.Data, &payload); err == nil {
			event.Kind = watcher.KindNewBlock
			event.Block = &watcher.BlockEvent{Height: payload.Height, Hash: payload.Hash}
		}
	}

	return event
}
