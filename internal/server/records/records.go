// Package records implements the record lifecycle shared by every
// collection: authorised create with stamping and validation, and
// role-scoped listing. One Manager is instantiated per record type.
package records

import (
	"context"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// Visibility decides how List scopes a request to the caller.
type Visibility int

const (
	// VisiblePublic records are readable by every authenticated caller.
	VisiblePublic Visibility = iota
	// VisibleOwner records are confined to their owner for the user role.
	VisibleOwner
	// VisibleParticipant records are visible to their sender, their
	// recipient, and to everyone when they have no recipient.
	VisibleParticipant
)

// Filter narrows a List call. Stores apply every non-empty field.
type Filter struct {
	OwnerID   string
	VisibleTo string
	From      time.Time
}

// Store is the persistence contract a Manager needs.
type Store[T any] interface {
	Insert(ctx context.Context, rec *T) error
	List(ctx context.Context, f Filter) ([]T, error)
}

// Stamp fills server-controlled fields of a new record.
type Stamp[T any] func(rec *T, actor models.User, id string, now time.Time)

// Schema describes one record type to the generic Manager.
type Schema[T any] struct {
	Kind       models.Kind
	Visibility Visibility
	Stamp      Stamp[T]
	Validate   func(rec *T) error
}

// Hook observes records after a successful create.
type Hook[T any] func(ctx context.Context, rec T)
