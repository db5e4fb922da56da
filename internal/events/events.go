// Package events carries transaction change notifications between writers,
// the snapshot cache and streaming clients.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Op names what happened to the owner's transactions.
type Op string

const (
	// OpCreated is emitted after new rows were inserted.
	OpCreated Op = "created"
	// OpChanged is emitted when the source only knows something changed,
	// e.g. a webhook from the database backend.
	OpChanged Op = "changed"
)

// ChangeEvent tells subscribers that UserID's snapshot is stale. An empty
// UserID means every owner's snapshot is stale.
type ChangeEvent struct {
	UserID         string    `json:"user_id"`
	Op             Op        `json:"op"`
	TransactionIDs []string  `json:"transaction_ids,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher delivers change events.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev ChangeEvent) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, ev ChangeEvent) error {
	return f(ctx, ev)
}

// Discard drops every event. Used when the database itself emits
// notifications.
var Discard Publisher = PublisherFunc(func(context.Context, ChangeEvent) error { return nil })

// Encode serializes ev as JSON.
func Encode(ev ChangeEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode parses a JSON change event. Missing Op defaults to OpChanged.
func Decode(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	if ev.Op == "" {
		ev.Op = OpChanged
	}
	return ev, nil
}
