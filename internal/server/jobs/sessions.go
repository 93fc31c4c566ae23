package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// SessionCleanup deletes sessions past their expiry.
func SessionCleanup(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger, now func() time.Time) Job {
	return func(ctx context.Context) error {
		n, err := rm.Sessions(db).DeleteExpired(ctx, now())
		if err != nil {
			return fmt.Errorf("delete expired sessions: %w", err)
		}
		if n > 0 {
			log.Info(ctx, "expired sessions removed", "count", n)
		}
		return nil
	}
}
