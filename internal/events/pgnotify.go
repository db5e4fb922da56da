package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"finboard/internal/logger"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// PGListener forwards Postgres NOTIFY payloads on one channel to a
// Publisher. The payload is a JSON ChangeEvent produced by the
// transactions trigger.
type PGListener struct {
	connString string
	channel    string
	target     Publisher
}

// NewPGListener creates a listener for channel.
func NewPGListener(connString, channel string, target Publisher) *PGListener {
	return &PGListener{connString: connString, channel: channel, target: target}
}

// Run listens until ctx is cancelled, reconnecting with backoff.
func (l *PGListener) Run(ctx context.Context) error {
	log := logger.Named("events.pgnotify")
	wait := reconnectMin
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnw("Notification listener disconnected", "error", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if wait *= 2; wait > reconnectMax {
			wait = reconnectMax
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	logger.Named("events.pgnotify").Infow("Listening for transaction changes", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := Decode([]byte(n.Payload))
		if err != nil {
			logger.Named("events.pgnotify").Errorw("Discarding malformed notification", "error", err, "payload", n.Payload)
			continue
		}
		if err := l.target.Publish(ctx, ev); err != nil {
			logger.Named("events.pgnotify").Warnw("Failed to publish notification", "error", err)
		}
	}
}
