package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence boundary for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int, error)
}

// Participant is a resolved appointment party: which profile it is, what
// role it carries, and where reminders for it go. Email is empty for
// practitioners.
type Participant struct {
	ProfileID uuid.UUID
	Role      string
	Email     string
}

// Directory resolves profile references to participants. The adapter over
// the profile service satisfies it; tests use an in-memory map.
type Directory interface {
	Lookup(ctx context.Context, profileID uuid.UUID) (*Participant, error)
}

// Notifier delivers appointment reminders. Delivery failures must not
// affect the appointment itself.
type Notifier interface {
	SendReminder(ctx context.Context, recipient, whenText string) error
}
