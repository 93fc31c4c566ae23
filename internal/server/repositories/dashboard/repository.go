// Package dashboard aggregates the landing-page counters in one query.
package dashboard

import (
	"context"
	"fmt"

	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type Repository interface {
	Summary(ctx context.Context, ownerID string) (models.DashboardSummary, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Summary counts the owner's records, or everybody's when ownerID is empty.
// Devotions are always counted program-wide.
func (r *PostgresRepository) Summary(ctx context.Context, ownerID string) (models.DashboardSummary, error) {
	query := `
		SELECT
			(SELECT count(*) FROM drug_tests WHERE $1 = '' OR user_id::text = $1),
			(SELECT count(*) FROM meetings WHERE attended AND ($1 = '' OR user_id::text = $1)),
			(SELECT count(*) FROM rent_payments WHERE status = 'confirmed' AND ($1 = '' OR user_id::text = $1)),
			(SELECT count(*) FROM devotions)
	`
	var s models.DashboardSummary
	err := r.db.QueryRowContext(ctx, query, ownerID).
		Scan(&s.DrugTests, &s.MeetingsAttended, &s.ConfirmedPayments, &s.Devotions)
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
