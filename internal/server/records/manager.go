package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
)

// Manager runs create and list for one record type.
type Manager[T any] struct {
	schema   Schema[T]
	store    Store[T]
	onCreate []Hook[T]

	now   func() time.Time
	newID func() string
}

// Option customises a Manager.
type Option[T any] func(*Manager[T])

// WithHook registers h to run after every successful create.
func WithHook[T any](h Hook[T]) Option[T] {
	return func(m *Manager[T]) { m.onCreate = append(m.onCreate, h) }
}

// WithClock overrides the time source used for stamping.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(m *Manager[T]) { m.now = now }
}

// WithIDs overrides the id generator used for stamping.
func WithIDs[T any](newID func() string) Option[T] {
	return func(m *Manager[T]) { m.newID = newID }
}

// NewManager builds a Manager for schema backed by store.
func NewManager[T any](schema Schema[T], store Store[T], opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{
		schema: schema,
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Kind returns the record kind the manager serves.
func (m *Manager[T]) Kind() models.Kind { return m.schema.Kind }

// Create authorises actor, stamps and validates rec and persists it.
// Creates are not deduplicated: submitting the same payload twice yields
// two records.
func (m *Manager[T]) Create(ctx context.Context, rec T, actor models.User) (T, error) {
	var zero T

	if !policy.CanMutate(actor.Role, m.schema.Kind) {
		return zero, fmt.Errorf("create %s as %s: %w", m.schema.Kind, actor.Role, common.ErrAuthorization)
	}

	if m.schema.Stamp != nil {
		m.schema.Stamp(&rec, actor, m.newID(), m.now().UTC())
	}
	if m.schema.Validate != nil {
		if err := m.schema.Validate(&rec); err != nil {
			return zero, err
		}
	}

	if err := m.store.Insert(ctx, &rec); err != nil {
		return zero, fmt.Errorf("insert %s: %w", m.schema.Kind, err)
	}

	for _, h := range m.onCreate {
		h(ctx, rec)
	}
	return rec, nil
}

// List returns the records visible to actor. For owner-scoped kinds a user
// is confined to their own records whatever the requested filter says.
func (m *Manager[T]) List(ctx context.Context, actor models.User, f Filter) ([]T, error) {
	switch m.schema.Visibility {
	case VisibleOwner:
		f.OwnerID = policy.ScopeOwner(actor, f.OwnerID)
		f.VisibleTo = ""
	case VisibleParticipant:
		f.OwnerID = ""
		f.VisibleTo = actor.ID
	default:
		f.OwnerID = ""
		f.VisibleTo = ""
	}

	out, err := m.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.schema.Kind, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
