package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const settingsColumns = `expected_rent_amount, rent_due_day, updated_by, updated_by_id, updated_at`

func scanSettings(row *sql.Row) (*models.Settings, error) {
	s := &models.Settings{}
	var by, byID sql.NullString
	if err := row.Scan(&s.ExpectedRentAmount, &s.RentDueDay, &by, &byID, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.UpdatedBy = by.String
	s.UpdatedByID = byID.String
	return s, nil
}

// Get returns the settings row. A missing row reads as the defaults
// (no expected rent, due on the 1st).
func (r *PostgresRepository) Get(ctx context.Context) (*models.Settings, error) {
	s, err := scanSettings(r.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Settings{RentDueDay: 1}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Update overwrites the settings row; last writer wins.
func (r *PostgresRepository) Update(ctx context.Context, in models.Settings) (*models.Settings, error) {
	query := `
		INSERT INTO settings (id, expected_rent_amount, rent_due_day, updated_by, updated_by_id, updated_at)
		VALUES (true, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			expected_rent_amount = EXCLUDED.expected_rent_amount,
			rent_due_day = EXCLUDED.rent_due_day,
			updated_by = EXCLUDED.updated_by,
			updated_by_id = EXCLUDED.updated_by_id,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + settingsColumns

	var byID any
	if in.UpdatedByID != "" {
		byID = in.UpdatedByID
	}

	s, err := scanSettings(r.db.QueryRowContext(ctx, query,
		in.ExpectedRentAmount, in.RentDueDay, in.UpdatedBy, byID, in.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
