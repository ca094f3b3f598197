// Package scheduling manages appointments between patients and
// practitioners, including the status lifecycle and reminder requests.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. An appointment starts scheduled and finishes in one
// of the two terminal states.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCanceled:  true,
}

// ValidStatus reports whether status is one of the known lifecycle states.
func ValidStatus(status string) bool {
	return validStatuses[status]
}

// CanTransition reports whether the status change from -> to is legal.
// Repeating the current status is a no-op and always allowed, which makes
// status updates idempotent. Completed and canceled are terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusScheduled && (to == StatusCompleted || to == StatusCanceled)
}

// Appointment links one patient profile to one practitioner profile at a
// point in time.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID `db:"practitioner_id" json:"practitioner_id"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	Status         string    `db:"status" json:"status"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Changes is a partial update to an appointment. Nil fields keep their
// current value.
type Changes struct {
	PatientID      *uuid.UUID `json:"patient_id,omitempty"`
	PractitionerID *uuid.UUID `json:"practitioner_id,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Reason         *string    `json:"reason,omitempty"`
}
