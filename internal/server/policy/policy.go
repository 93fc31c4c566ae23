// Package policy holds the pure access rules: which role may mutate which
// record kind, who may see the user directory, and the rent-mismatch rule.
package policy

import "github.com/journeyconnect/journeyconnect/internal/server/models"

// mutators lists, per kind, the roles allowed to create (or decide) it.
var mutators = map[models.Kind]map[models.Role]bool{
	models.KindDrugTest:            {models.RoleMentor: true, models.RoleAdmin: true},
	models.KindMeeting:             {models.RoleMentor: true, models.RoleAdmin: true},
	models.KindReadingMaterial:     {models.RoleMentor: true, models.RoleAdmin: true},
	models.KindCalendarEvent:       {models.RoleMentor: true, models.RoleAdmin: true},
	models.KindDevotion:            {models.RoleMentor: true, models.RoleAdmin: true},
	models.KindRentPayment:         {models.RoleUser: true},
	models.KindRentPaymentDecision: {models.RoleMentor: true, models.RoleAdmin: true},
	models.KindSettings:            {models.RoleAdmin: true},
	models.KindMessage:             {models.RoleUser: true, models.RoleMentor: true, models.RoleAdmin: true},
}

// CanMutate reports whether role may create records of kind (or, for
// KindRentPaymentDecision, confirm or reject a payment). Unknown roles and
// kinds are denied.
func CanMutate(role models.Role, kind models.Kind) bool {
	return mutators[kind][role]
}

// CanListUsers reports whether role may read the user directory.
func CanListUsers(role models.Role) bool {
	return role == models.RoleMentor || role == models.RoleAdmin
}

// CanChangeRoles reports whether role may assign roles to other users.
func CanChangeRoles(role models.Role) bool {
	return role == models.RoleAdmin
}

// ScopeOwner returns the owner filter a list request is allowed to use.
// A plain user is always confined to their own records, whatever was asked.
func ScopeOwner(actor models.User, requested string) string {
	if actor.Role == models.RoleMentor || actor.Role == models.RoleAdmin {
		return requested
	}
	return actor.ID
}

// IsMismatched reports whether a payment amount differs from the expected
// rent. An expected amount of zero disables the rule.
func IsMismatched(amount models.Amount, settings models.Settings) bool {
	return settings.ExpectedRentAmount > 0 && amount != settings.ExpectedRentAmount
}
