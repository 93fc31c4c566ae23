// Package session resolves who the CLI user is. Its operations never fail:
// any problem is logged and the caller sees an anonymous state.
package session

import (
	"context"
	"errors"

	"github.com/journeyconnect/journeyconnect/internal/client/client"
	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// API is the part of the REST client the resolver needs.
type API interface {
	SetToken(token string)
	Token() string
	EstablishSession(ctx context.Context, providerSessionID string) (*client.SessionInfo, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

// Store persists the credential between runs.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// State is the outcome of a resolution. User is nil when not authenticated.
type State struct {
	Authenticated bool
	User          *models.User
}

var anonymous = State{}

type Resolver struct {
	api   API
	store Store
	log   logging.Logger
	user  *models.User
}

func NewResolver(api API, store Store, log logging.Logger) *Resolver {
	return &Resolver{api: api, store: store, log: log.With("module", "session")}
}

// Resolve restores the stored credential and asks the server who it
// belongs to.
func (r *Resolver) Resolve(ctx context.Context) State {
	token, err := r.store.Load()
	if err != nil {
		r.log.Warn(ctx, "credential unreadable", "error", err)
		return r.forget()
	}
	if token == "" {
		return r.forget()
	}
	r.api.SetToken(token)
	return r.whoAmI(ctx)
}

// SignIn exchanges a provider session id for a credential, stores it and
// resolves the user.
func (r *Resolver) SignIn(ctx context.Context, providerSessionID string) State {
	info, err := r.api.EstablishSession(ctx, providerSessionID)
	if err != nil {
		r.log.Warn(ctx, "sign-in failed", "error", err)
		return r.forget()
	}
	if err := r.store.Save(info.SessionToken); err != nil {
		r.log.Warn(ctx, "credential not saved", "error", err)
	}
	user := info.User
	r.user = &user
	return State{Authenticated: true, User: r.user}
}

// Logout invalidates the credential on the server and clears local state.
// Errors are logged and swallowed.
func (r *Resolver) Logout(ctx context.Context) {
	if err := r.api.Logout(ctx); err != nil {
		r.log.Warn(ctx, "server logout failed", "error", err)
	}
	if err := r.store.Clear(); err != nil {
		r.log.Warn(ctx, "credential not cleared", "error", err)
	}
	r.user = nil
}

// Current returns the last resolved state without a round trip.
func (r *Resolver) Current() State {
	if r.user == nil {
		return anonymous
	}
	return State{Authenticated: true, User: r.user}
}

func (r *Resolver) whoAmI(ctx context.Context) State {
	user, err := r.api.Me(ctx)
	if err != nil {
		r.log.Info(ctx, "session not resolved", "error", err)
		if errors.Is(err, common.ErrorUnauthorized) {
			if err := r.store.Clear(); err != nil {
				r.log.Warn(ctx, "credential not cleared", "error", err)
			}
		}
		return r.forget()
	}
	r.user = user
	return State{Authenticated: true, User: user}
}

func (r *Resolver) forget() State {
	r.user = nil
	r.api.SetToken("")
	return anonymous
}
