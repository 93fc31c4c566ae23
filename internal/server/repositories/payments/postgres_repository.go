package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/dbx"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/recordstore"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var returning = strings.Join(recordstore.RentPayments.Columns, ", ")

// Decide moves a pending payment to status. The update is guarded on
// status = 'pending', so of two racing deciders exactly one wins. It returns
// common.ErrorNotFound for an unknown id and common.ErrAlreadyDecided when
// the payment left the pending state earlier; the row is then untouched.
// A malformed id cannot name a payment and is also common.ErrorNotFound.
func (r *PostgresRepository) Decide(ctx context.Context, id string, status models.PaymentStatus, by string, at time.Time) (*models.RentPayment, error) {
	query := `
		UPDATE rent_payments
		SET status = $2, confirmed = $3, confirmed_by = $4, confirmation_date = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + returning

	p := &models.RentPayment{}
	err := r.db.QueryRowContext(ctx, query, id, string(status), status == models.PaymentConfirmed, by, at).
		Scan(recordstore.RentPayments.Dest(p)...)
	if err == nil {
		return p, nil
	}
	if dbx.IsInvalidInput(err) {
		return nil, common.ErrorNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM rent_payments WHERE id = $1`, id).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, common.ErrorNotFound
	case err != nil:
		return nil, fmt.Errorf("db error: %w", err)
	default:
		return nil, fmt.Errorf("payment %s is %s: %w", id, current, common.ErrAlreadyDecided)
	}
}
