package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/journeyconnect/journeyconnect/internal/logging"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	timeout  time.Duration
	log      logging.Logger
}

// dial is a seam for tests.
var dial = amqp.Dial

// Connect dials url, trying up to attempts times with exponential backoff,
// and declares exchange.
func Connect(ctx context.Context, url, exchange string, attempts int, log logging.Logger) (*AMQPPublisher, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for i := 1; i <= attempts; i++ {
		conn, err = dial(url)
		if err == nil {
			break
		}
		log.Warn(ctx, "amqp connect attempt failed", "attempt", i, "error", err)
		if i == attempts {
			return nil, fmt.Errorf("connect to broker after %d attempts: %w", attempts, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(1<<i) * 100 * time.Millisecond):
		}
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log logging.Logger) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, timeout: 2 * time.Second, log: log}, nil
}

// Publish sends e; errors are logged and dropped.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.log.Error(ctx, "event marshal failed", "routing_key", e.RoutingKey(), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.At,
		MessageId:    e.ID,
		Body:         body,
	})
	if err != nil {
		p.log.Warn(ctx, "event publish failed", "routing_key", e.RoutingKey(), "error", err)
		return
	}
	p.log.Debug(ctx, "event published", "routing_key", e.RoutingKey(), "id", e.ID)
}

func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
