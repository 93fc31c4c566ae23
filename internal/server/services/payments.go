package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/metrics"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// PaymentService covers the rent payment lifecycle: owner-submitted
// creation, listing with the mismatch flag, and the one-time decision.
type PaymentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	manager     *records.Manager[models.RentPayment]
	settings    *SettingsService
	events      events.Publisher
	log         logging.Logger
	now         func() time.Time
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, manager *records.Manager[models.RentPayment],
	settings *SettingsService, pub events.Publisher, log logging.Logger) *PaymentService {
	return &PaymentService{
		db:          db,
		repomanager: m,
		manager:     manager,
		settings:    settings,
		events:      pub,
		log:         log,
		now:         time.Now,
	}
}

// Create submits a pending payment owned by actor.
func (s *PaymentService) Create(ctx context.Context, p models.RentPayment, actor models.User) (models.RentPayment, error) {
	created, err := s.manager.Create(ctx, p, actor)
	if err != nil {
		return created, err
	}
	s.annotate(ctx, []models.RentPayment{created})
	return created, nil
}

// List returns the payments visible to actor with Mismatched set.
func (s *PaymentService) List(ctx context.Context, actor models.User, f records.Filter) ([]models.RentPayment, error) {
	out, err := s.manager.List(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	s.annotate(ctx, out)
	return out, nil
}

// Decide confirms or rejects a pending payment. The acting user's name is
// recorded as the decider. A payment that was already decided is left
// untouched and ErrAlreadyDecided is returned.
func (s *PaymentService) Decide(ctx context.Context, id string, d models.Decision, actor models.User) (*models.RentPayment, error) {
	if !policy.CanMutate(actor.Role, models.KindRentPaymentDecision) {
		return nil, fmt.Errorf("decide payment as %s: %w", actor.Role, common.ErrAuthorization)
	}

	now := s.now().UTC()
	var p *models.RentPayment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		p, err = s.repomanager.Payments(tx).Decide(ctx, id, d.Status(), actor.Name, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("decide payment %s: %w", id, err)
	}

	metrics.PaymentDecisions.WithLabelValues(string(p.Status)).Inc()
	s.events.Publish(ctx, events.Event{
		Kind: models.KindRentPayment, Action: events.ActionDecided,
		ID: p.ID, ActorID: actor.ID, At: now, Data: p,
	})

	payments := []models.RentPayment{*p}
	s.annotate(ctx, payments)
	return &payments[0], nil
}

// annotate sets the derived mismatch flag. Settings failures only cost the
// flag, never the response.
func (s *PaymentService) annotate(ctx context.Context, ps []models.RentPayment) {
	if len(ps) == 0 {
		return
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn(ctx, "mismatch flag unavailable", "error", err)
		return
	}
	for i := range ps {
		ps[i].Mismatched = policy.IsMismatched(ps[i].Amount, *st)
	}
}
