package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/cache"
	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/policy"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// SettingsUpdate is a partial update; nil fields keep their stored value.
type SettingsUpdate struct {
	ExpectedRentAmount *models.Amount `json:"expected_rent_amount"`
	RentDueDay         *int           `json:"rent_due_day"`
}

// SettingsService reads and writes the program settings through a
// write-through cache.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Settings
	events      events.Publisher
	now         func() time.Time
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, c cache.Settings, pub events.Publisher) *SettingsService {
	return &SettingsService{db: db, repomanager: m, cache: c, events: pub, now: time.Now}
}

// Get returns the current settings. Any authenticated caller may read them.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}
	st, err := s.repomanager.Settings(s.db).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}
	s.cache.Set(ctx, st)
	return st, nil
}

// Update applies in on top of the stored settings. Admin only; last
// writer wins.
func (s *SettingsService) Update(ctx context.Context, in SettingsUpdate, actor models.User) (*models.Settings, error) {
	if !policy.CanMutate(actor.Role, models.KindSettings) {
		return nil, fmt.Errorf("update settings as %s: %w", actor.Role, common.ErrAuthorization)
	}

	repo := s.repomanager.Settings(s.db)
	cur, err := repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading settings: %w", err)
	}

	next := *cur
	if in.ExpectedRentAmount != nil {
		next.ExpectedRentAmount = *in.ExpectedRentAmount
	}
	if in.RentDueDay != nil {
		next.RentDueDay = *in.RentDueDay
	}
	if next.ExpectedRentAmount < 0 {
		return nil, common.Invalid("expected_rent_amount", "must not be negative")
	}
	if next.RentDueDay < 1 || next.RentDueDay > 31 {
		return nil, common.Invalid("rent_due_day", "must be between 1 and 31")
	}

	now := s.now().UTC()
	next.UpdatedBy = actor.Name
	next.UpdatedByID = actor.ID
	next.UpdatedAt = &now

	saved, err := repo.Update(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	s.cache.Set(ctx, saved)

	s.events.Publish(ctx, events.Event{
		Kind: models.KindSettings, Action: events.ActionUpdated,
		ActorID: actor.ID, At: now, Data: saved,
	})
	return saved, nil
}
