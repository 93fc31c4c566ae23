// Package services contains server-side business logic. This file implements
// SessionService, which exchanges an auth-provider session for a signed
// credential and resolves credentials back to users.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/auth"
	"github.com/journeyconnect/journeyconnect/internal/server/authprovider"
	"github.com/journeyconnect/journeyconnect/internal/server/config"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// ProfileSource looks up the identity behind a provider session id.
type ProfileSource interface {
	Profile(ctx context.Context, sessionID string) (*authprovider.Profile, error)
}

// SessionService provides sign-in, credential resolution and sign-out.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	provider    ProfileSource
	jwtSecret   []byte
	validity    time.Duration
	admins      map[string]bool

	now   func() time.Time
	newID func() string
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, provider ProfileSource, cfg *config.Config) *SessionService {
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &SessionService{
		db:          db,
		repomanager: m,
		provider:    provider,
		jwtSecret:   []byte(cfg.SecretKey),
		validity:    cfg.SessionValidity,
		admins:      admins,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Establish verifies providerSessionID with the auth provider, creates the
// account on first sign-in and opens a session. It returns the credential
// and the stored user.
func (s *SessionService) Establish(ctx context.Context, providerSessionID string) (string, *models.User, error) {
	if strings.TrimSpace(providerSessionID) == "" {
		return "", nil, common.Invalid("session id", "is required")
	}

	profile, err := s.provider.Profile(ctx, providerSessionID)
	if err != nil {
		return "", nil, err
	}

	role := models.RoleUser
	if s.admins[profile.Email] {
		role = models.RoleAdmin
	}

	now := s.now().UTC()
	var (
		user    *models.User
		session *models.Session
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Upsert(ctx, &models.User{
			ID:      s.newID(),
			Email:   profile.Email,
			Name:    profile.Name,
			Picture: profile.Picture,
			Role:    role,
		})
		if err != nil {
			return fmt.Errorf("error upserting user: %w", err)
		}

		session = &models.Session{
			ID:        s.newID(),
			UserID:    user.ID,
			ExpiresAt: now.Add(s.validity),
			CreatedAt: now,
		}
		if err := s.repomanager.Sessions(tx).Create(ctx, session); err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	token, err := auth.GenerateToken(user.ID, session.ID, s.jwtSecret, s.validity)
	if err != nil {
		return "", nil, fmt.Errorf("error signing credential: %w", err)
	}
	return token, user, nil
}

// WhoAmI resolves a credential to its user. Any defect in the credential or
// its session yields ErrorUnauthorized.
func (s *SessionService) WhoAmI(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: session revoked", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrSessionExpired)
	}

	user, err := s.repomanager.Users(s.db).Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: account removed", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// Invalidate deletes the session behind token. Malformed, expired or
// already revoked credentials are not an error.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}
