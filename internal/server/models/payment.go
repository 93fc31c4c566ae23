package models

import "time"

// PaymentStatus is the decision state of a rent payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRejected  PaymentStatus = "rejected"
)

// Decision is the outcome a mentor or admin records for a pending payment.
type Decision bool

const (
	Confirm Decision = true
	Reject  Decision = false
)

// Status maps the decision to the payment state it produces.
func (d Decision) Status() PaymentStatus {
	if d {
		return PaymentConfirmed
	}
	return PaymentRejected
}

// RentPayment is created pending by its owner and decided once by a mentor
// or admin. Mismatched is derived from Settings and never stored.
type RentPayment struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	PaymentDate      Timestamp     `json:"payment_date"`
	Amount           Amount        `json:"amount"`
	Notes            string        `json:"notes,omitempty"`
	ImageURL         string        `json:"image_url,omitempty"`
	Status           PaymentStatus `json:"status"`
	Confirmed        bool          `json:"confirmed"`
	ConfirmedBy      string        `json:"confirmed_by,omitempty"`
	ConfirmationDate *time.Time    `json:"confirmation_date,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	Mismatched       bool          `json:"mismatched"`
}

// Settings is the singleton program configuration edited by admins.
type Settings struct {
	ExpectedRentAmount Amount     `json:"expected_rent_amount"`
	RentDueDay         int        `json:"rent_due_day"`
	UpdatedBy          string     `json:"updated_by,omitempty"`
	UpdatedByID        string     `json:"-"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}
