// Package records manages medical records. Records are practitioner-authored
// clinical notes bound to a patient; both profile references are protected,
// so neither profile can be deleted while a record points at it.
package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is one clinical note about a patient.
type MedicalRecord struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	AppointmentID  *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Notes          string     `db:"notes" json:"notes"`
	Diagnosis      *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
