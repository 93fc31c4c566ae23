package repomanager

import (
	"context"
	"database/sql"

	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/dashboard"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/payments"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/reminders"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/sessions"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/settings"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction. Record collections use the
// generic recordstore package directly.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Settings(db dbx.DBTX) settings.Repository
	Payments(db dbx.DBTX) payments.Repository
	Dashboard(db dbx.DBTX) dashboard.Repository
	Reminders(db dbx.DBTX) reminders.Repository
}
