// Package settings persists the singleton program settings row.
package settings

import (
	"context"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, s models.Settings) (*models.Settings, error)
}
