package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"finboard/internal/logger"
)

const publishTimeout = 5 * time.Second

// AMQPBroker shares change events between API instances over a fanout
// exchange. Each broker binds its own exclusive queue unless a queue name
// is configured, and skips messages it published itself.
type AMQPBroker struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	queue      string
	instanceID string
}

// NewAMQPBroker dials url and declares the exchange and queue.
func NewAMQPBroker(url, exchange, queue string) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	b := &AMQPBroker{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		queue:      queue,
		instanceID: uuid.NewString(),
	}
	if err := b.setup(); err != nil {
		b.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return b, nil
}

func (b *AMQPBroker) setup() error {
	if err := b.channel.ExchangeDeclare(
		b.exchange, // name
		"fanout",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// A named queue is shared, an unnamed one is private to this instance.
	shared := b.queue != ""
	q, err := b.channel.QueueDeclare(
		b.queue, // name
		shared,  // durable
		!shared, // delete when unused
		!shared, // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	b.queue = q.Name

	if err := b.channel.QueueBind(b.queue, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends ev to the exchange.
func (b *AMQPBroker) Publish(ctx context.Context, ev ChangeEvent) error {
	body, err := Encode(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = b.channel.PublishWithContext(ctx,
		b.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			AppId:       b.instanceID,
			Timestamp:   ev.OccurredAt,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Consume delivers events published by other instances to handler until ctx
// is cancelled. Malformed messages are dropped; handler failures are
// requeued.
func (b *AMQPBroker) Consume(ctx context.Context, handler func(context.Context, ChangeEvent) error) error {
	log := logger.Named("events.amqp")

	msgs, err := b.channel.Consume(
		b.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	log.Infow("Consuming change events", "queue", b.queue, "exchange", b.exchange)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("AMQP delivery channel closed")
			}
			if d.AppId == b.instanceID {
				_ = d.Ack(false)
				continue
			}
			ev, err := Decode(d.Body)
			if err != nil {
				log.Errorw("Discarding malformed change event", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, ev); err != nil {
				log.Errorw("Failed to handle change event", "error", err, "user_id", ev.UserID)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the channel and connection.
func (b *AMQPBroker) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
