// Package sessions declares the server-side repository contract for
// sign-in sessions referenced by session credentials.
package sessions

import (
	"context"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
