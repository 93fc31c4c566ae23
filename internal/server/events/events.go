// Package events publishes domain events (records created, payments
// decided) to a RabbitMQ topic exchange. Publishing is best effort: failures
// are logged and never reach the request that caused the event.
package events

import (
	"context"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// DefaultExchange is the topic exchange events are published to.
const DefaultExchange = "journey.events"

const (
	ActionCreated = "created"
	ActionDecided = "decided"
	ActionUpdated = "updated"
)

// Event is the JSON body of a published message. Its routing key is
// "<kind>.<action>".
type Event struct {
	Kind    models.Kind `json:"kind"`
	Action  string      `json:"action"`
	ID      string      `json:"id"`
	ActorID string      `json:"actor_id,omitempty"`
	At      time.Time   `json:"at"`
	Data    any         `json:"data,omitempty"`
}

// RoutingKey returns the topic routing key for e.
func (e Event) RoutingKey() string {
	return string(e.Kind) + "." + e.Action
}

// Publisher emits events. Implementations must not block callers on broker
// failures.
type Publisher interface {
	Publish(ctx context.Context, e Event)
	Close() error
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
func (Nop) Close() error                   { return nil }
