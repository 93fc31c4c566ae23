package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	sent       []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

func TestPublish_RoutesByKindAndAction(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, DefaultExchange, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"journey.events:topic"}, ch.declared)

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p.Publish(context.Background(), Event{Kind: models.KindRentPayment, Action: ActionDecided, ID: "p1", At: at})

	require.Len(t, ch.sent, 1)
	assert.Equal(t, "journey.events", ch.sent[0].exchange)
	assert.Equal(t, "rent_payment.decided", ch.sent[0].key)
	assert.Equal(t, "application/json", ch.sent[0].msg.ContentType)

	var got Event
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &got))
	assert.Equal(t, "p1", got.ID)
}

func TestPublish_FailureIsSwallowed(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, DefaultExchange, logging.Nop())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Kind: models.KindMessage, Action: ActionCreated})
	})
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newPublisher(ch, DefaultExchange, logging.Nop())
	require.Error(t, err)
	assert.True(t, ch.closed)
}

func TestConnect_GivesUp(t *testing.T) {
	orig := dial
	calls := 0
	dial = func(string) (*amqp.Connection, error) {
		calls++
		return nil, errors.New("connection refused")
	}
	defer func() { dial = orig }()

	_, err := Connect(context.Background(), "amqp://x", DefaultExchange, 2, logging.Nop())
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	p.Publish(context.Background(), Event{})
	assert.NoError(t, p.Close())
}
