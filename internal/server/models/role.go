package models

// Role is the access level of a user account.
type Role string

const (
	RoleUser   Role = "user"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// Kind names a record collection (or an action on one) for permission checks.
type Kind string

const (
	KindDrugTest            Kind = "drug_test"
	KindMeeting             Kind = "meeting"
	KindRentPayment         Kind = "rent_payment"
	KindRentPaymentDecision Kind = "rent_payment_decision"
	KindDevotion            Kind = "devotion"
	KindReadingMaterial     Kind = "reading_material"
	KindCalendarEvent       Kind = "calendar_event"
	KindMessage             Kind = "message"
	KindSettings            Kind = "settings"
)
