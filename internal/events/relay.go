package events

import (
	"context"

	"finboard/internal/logger"
)

// RemoteBroker is the cross-instance half of a Relay.
type RemoteBroker interface {
	Publisher
	Consume(ctx context.Context, handler func(context.Context, ChangeEvent) error) error
}

// Relay joins the local hub with a remote broker. Local writes reach local
// subscribers immediately and other instances through the broker.
type Relay struct {
	local  *Hub
	remote RemoteBroker
}

// NewRelay creates a relay.
func NewRelay(local *Hub, remote RemoteBroker) *Relay {
	return &Relay{local: local, remote: remote}
}

// Publish delivers ev locally, then forwards it. A forwarding failure is
// returned after local delivery has happened.
func (r *Relay) Publish(ctx context.Context, ev ChangeEvent) error {
	_ = r.local.Publish(ctx, ev)
	if err := r.remote.Publish(ctx, ev); err != nil {
		logger.Named("events.relay").Warnw("Failed to forward change event", "error", err, "user_id", ev.UserID)
		return err
	}
	return nil
}

// Run copies remote events into the local hub until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	return r.remote.Consume(ctx, r.local.Publish)
}
