package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// UserService exposes the user directory to mentors and role management
// to admins.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// List returns all users, or only those with role when it is set.
func (s *UserService) List(ctx context.Context, actor models.User, role models.Role) ([]models.User, error) {
	if !policy.CanListUsers(actor.Role) {
		return nil, fmt.Errorf("list users as %s: %w", actor.Role, common.ErrAuthorization)
	}
	if role != "" && !role.Valid() {
		return nil, common.Invalid("role", "is not a known role")
	}
	out, err := s.repomanager.Users(s.db).List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	if out == nil {
		out = []models.User{}
	}
	return out, nil
}

// UpdateRole assigns role to the user with id and returns the updated user.
func (s *UserService) UpdateRole(ctx context.Context, actor models.User, id string, role models.Role) (*models.User, error) {
	if !policy.CanChangeRoles(actor.Role) {
		return nil, fmt.Errorf("change roles as %s: %w", actor.Role, common.ErrAuthorization)
	}
	if !role.Valid() {
		return nil, common.Invalid("role", "is not a known role")
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateRole(ctx, id, role); err != nil {
		return nil, fmt.Errorf("error updating role of %s: %w", id, err)
	}
	u, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading user %s: %w", id, err)
	}
	return u, nil
}
