// Package users declares and implements persistence for user accounts.
package users

import (
	"context"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
}
