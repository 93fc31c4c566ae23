package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/dashboard"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/payments"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/reminders"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/sessions"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/settings"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var (
	alice  = models.User{ID: "u-alice", Email: "alice@example.com", Name: "Alice", Role: models.RoleUser}
	bob    = models.User{ID: "u-bob", Email: "bob@example.com", Name: "Bob", Role: models.RoleUser}
	mentor = models.User{ID: "u-mentor", Email: "m@example.com", Name: "Mark", Role: models.RoleMentor}
	admin  = models.User{ID: "u-admin", Email: "a@example.com", Name: "Ada", Role: models.RoleAdmin}
)

// fakeRM vends in-memory repositories regardless of the DBTX passed in.
type fakeRM struct {
	users     *fakeUsersRepo
	sessions  *fakeSessionsRepo
	settings  *fakeSettingsRepo
	payments  *fakePaymentsRepo
	dashboard *fakeDashboardRepo
}

func newFakeRM(us ...models.User) *fakeRM {
	f := &fakeRM{
		users:     &fakeUsersRepo{byID: map[string]models.User{}},
		sessions:  &fakeSessionsRepo{byID: map[string]models.Session{}},
		settings:  &fakeSettingsRepo{s: models.Settings{RentDueDay: 1}},
		payments:  &fakePaymentsRepo{byID: map[string]models.RentPayment{}},
		dashboard: &fakeDashboardRepo{},
	}
	for _, u := range us {
		f.users.byID[u.ID] = u
	}
	return f
}

func (f *fakeRM) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRM) Users(dbx.DBTX) users.Repository              { return f.users }
func (f *fakeRM) Sessions(dbx.DBTX) sessions.Repository        { return f.sessions }
func (f *fakeRM) Settings(dbx.DBTX) settings.Repository        { return f.settings }
func (f *fakeRM) Payments(dbx.DBTX) payments.Repository        { return f.payments }
func (f *fakeRM) Dashboard(dbx.DBTX) dashboard.Repository      { return f.dashboard }
func (f *fakeRM) Reminders(dbx.DBTX) reminders.Repository      { return nil }

type fakeUsersRepo struct {
	byID      map[string]models.User
	upsertErr error
	getErr    error
	listRole  models.Role
}

func (f *fakeUsersRepo) Upsert(_ context.Context, u *models.User) (*models.User, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			if u.Role == models.RoleAdmin {
				existing.Role = models.RoleAdmin
				f.byID[existing.ID] = existing
			}
			return &existing, nil
		}
	}
	f.byID[u.ID] = *u
	return u, nil
}

func (f *fakeUsersRepo) Get(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeUsersRepo) List(_ context.Context, role models.Role) ([]models.User, error) {
	f.listRole = role
	var out []models.User
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) UpdateRole(_ context.Context, id string, role models.Role) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Role = role
	f.byID[id] = u
	return nil
}

type fakeSessionsRepo struct {
	byID      map[string]models.Session
	createErr error
	deleteErr error
}

func (f *fakeSessionsRepo) Create(_ context.Context, s *models.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSessionsRepo) Find(_ context.Context, id string) (*models.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (f *fakeSessionsRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeSettingsRepo struct {
	s      models.Settings
	gets   int
	getErr error
}

func (f *fakeSettingsRepo) Get(context.Context) (*models.Settings, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	s := f.s
	return &s, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, s models.Settings) (*models.Settings, error) {
	f.s = s
	return &s, nil
}

type fakePaymentsRepo struct {
	byID map[string]models.RentPayment
}

func (f *fakePaymentsRepo) Decide(_ context.Context, id string, status models.PaymentStatus, by string, at time.Time) (*models.RentPayment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Status != models.PaymentPending {
		return nil, common.ErrAlreadyDecided
	}
	p.Status = status
	p.Confirmed = status == models.PaymentConfirmed
	p.ConfirmedBy = by
	p.ConfirmationDate = &at
	f.byID[id] = p
	return &p, nil
}

type fakeDashboardRepo struct {
	owner string
	sum   models.DashboardSummary
	err   error
}

func (f *fakeDashboardRepo) Summary(_ context.Context, ownerID string) (models.DashboardSummary, error) {
	f.owner = ownerID
	return f.sum, f.err
}

// memStore is an in-memory records.Store that honours Filter.
type memStore[T any] struct {
	mu      sync.Mutex
	rows    []T
	owner   func(T) string
	visible func(T, string) bool
}

func (m *memStore[T]) Insert(_ context.Context, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *rec)
	return nil
}

func (m *memStore[T]) List(_ context.Context, f records.Filter) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, r := range m.rows {
		if f.OwnerID != "" && m.owner != nil && m.owner(r) != f.OwnerID {
			continue
		}
		if f.VisibleTo != "" && m.visible != nil && !m.visible(r, f.VisibleTo) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, e)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.got {
		out = append(out, e.RoutingKey())
	}
	return out
}

type mapCache struct{ s *models.Settings }

func (c *mapCache) Get(context.Context) (*models.Settings, bool) {
	if c.s == nil {
		return nil, false
	}
	s := *c.s
	return &s, true
}

func (c *mapCache) Set(_ context.Context, s *models.Settings) {
	cp := *s
	c.s = &cp
}
