// Package identity manages accounts: the login principals that profiles,
// appointments and medical records hang off. Every account carries exactly
// one role for its lifetime; role changes are an account replacement, not an
// update.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles an account can hold. The role is fixed at creation.
const (
	RoleAdmin        = "admin"
	RolePractitioner = "practitioner"
	RolePatient      = "patient"
)

var validRoles = map[string]bool{
	RoleAdmin:        true,
	RolePractitioner: true,
	RolePatient:      true,
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return validRoles[role]
}

// Account is a login principal.
type Account struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	Role        string    `db:"role" json:"role"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
