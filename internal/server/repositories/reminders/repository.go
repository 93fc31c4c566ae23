// Package reminders finds participants who owe rent for a period and
// records which reminders were already sent.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type Repository interface {
	Due(ctx context.Context, period string, from, to time.Time) ([]models.User, error)
	MarkSent(ctx context.Context, userID, period string) (bool, error)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Due lists user-role accounts with no rent payment dated in [from, to)
// that have not been reminded for period yet.
func (r *PostgresRepository) Due(ctx context.Context, period string, from, to time.Time) ([]models.User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.picture, u.role, u.created_at
		FROM users u
		WHERE u.role = 'user'
		  AND NOT EXISTS (
			SELECT 1 FROM rent_payments p
			WHERE p.user_id = u.id AND p.payment_date >= $2 AND p.payment_date < $3
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM rent_reminders rr
			WHERE rr.user_id = u.id AND rr.period = $1
		  )
		ORDER BY u.created_at, u.id
	`
	rows, err := r.db.QueryContext(ctx, query, period, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// MarkSent records the reminder; false means it was already recorded.
func (r *PostgresRepository) MarkSent(ctx context.Context, userID, period string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rent_reminders (user_id, period) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, period)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
