package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/dashboard"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/payments"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/reminders"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/sessions"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/settings"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/users"
)

type fakeRM struct {
	settings  *fakeSettings
	users     *fakeUsers
	reminders *fakeReminders
	sessions  *fakeSessions
}

func (f *fakeRM) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRM) Users(dbx.DBTX) users.Repository              { return f.users }
func (f *fakeRM) Sessions(dbx.DBTX) sessions.Repository        { return f.sessions }
func (f *fakeRM) Settings(dbx.DBTX) settings.Repository        { return f.settings }
func (f *fakeRM) Payments(dbx.DBTX) payments.Repository        { return nil }
func (f *fakeRM) Dashboard(dbx.DBTX) dashboard.Repository      { return nil }
func (f *fakeRM) Reminders(dbx.DBTX) reminders.Repository      { return f.reminders }

type fakeSettings struct {
	s   models.Settings
	err error
}

func (f *fakeSettings) Get(context.Context) (*models.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.s
	return &s, nil
}

func (f *fakeSettings) Update(_ context.Context, s models.Settings) (*models.Settings, error) {
	f.s = s
	return &s, nil
}

type fakeUsers struct{ byID map[string]models.User }

func (f *fakeUsers) Upsert(_ context.Context, u *models.User) (*models.User, error) { return u, nil }
func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}
func (f *fakeUsers) List(context.Context, models.Role) ([]models.User, error) { return nil, nil }
func (f *fakeUsers) UpdateRole(context.Context, string, models.Role) error    { return nil }

type fakeReminders struct {
	due    []models.User
	sent   map[string]bool
	period string
	from   time.Time
	to     time.Time
}

func (f *fakeReminders) Due(_ context.Context, period string, from, to time.Time) ([]models.User, error) {
	f.period, f.from, f.to = period, from, to
	return f.due, nil
}

func (f *fakeReminders) MarkSent(_ context.Context, userID, period string) (bool, error) {
	k := userID + "/" + period
	if f.sent[k] {
		return false, nil
	}
	f.sent[k] = true
	return true, nil
}

type fakeSessions struct {
	deleted int64
	err     error
	at      time.Time
}

func (f *fakeSessions) Create(context.Context, *models.Session) error { return nil }
func (f *fakeSessions) Find(context.Context, string) (*models.Session, error) {
	return nil, common.ErrorNotFound
}
func (f *fakeSessions) Delete(context.Context, string) error { return nil }
func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.at = now
	return f.deleted, f.err
}

type recordingPublisher struct{ got []events.Event }

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) { p.got = append(p.got, e) }
func (p *recordingPublisher) Close() error                              { return nil }
