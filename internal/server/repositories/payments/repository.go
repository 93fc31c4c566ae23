// Package payments holds the rent payment state transition: the one
// mutation in the data model beyond create.
package payments

import (
	"context"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type Repository interface {
	Decide(ctx context.Context, id string, status models.PaymentStatus, by string, at time.Time) (*models.RentPayment, error)
}
