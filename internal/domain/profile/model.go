// Package profile manages the clinical profiles layered on accounts. A
// practitioner or patient profile extends exactly one account whose role
// matches the profile kind; the account itself stays in the identity package.
package profile

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Practitioner is the clinical profile of a practitioner account.
// Availability is an opaque JSON document describing working hours; the
// scheduling package does not interpret it, it is advisory for booking UIs.
type Practitioner struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	AccountID       uuid.UUID       `db:"account_id" json:"account_id"`
	Specialization  string          `db:"specialization" json:"specialization"`
	Availability    json.RawMessage `db:"availability" json:"availability,omitempty"`
	ExperienceYears int             `db:"experience_years" json:"experience_years"`
	ContactNumber   *string         `db:"contact_number" json:"contact_number,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Patient is the clinical profile of a patient account. Email is required
// because it is the reminder delivery address.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	AccountID      uuid.UUID  `db:"account_id" json:"account_id"`
	Email          string     `db:"email" json:"email"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	MedicalHistory *string    `db:"medical_history" json:"medical_history,omitempty"`
	ContactNumber  *string    `db:"contact_number" json:"contact_number,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
