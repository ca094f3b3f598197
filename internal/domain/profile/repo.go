package profile

import (
	"context"

	"github.com/google/uuid"
)

// PractitionerRepository is the persistence boundary for practitioner profiles.
type PractitionerRepository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Practitioner, error)
	Update(ctx context.Context, p *Practitioner) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error)
}

// PatientRepository is the persistence boundary for patient profiles.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

// AccountDirectory resolves the role carried by an account. Implemented by
// an adapter over the identity service so this package does not import it.
type AccountDirectory interface {
	AccountRole(ctx context.Context, accountID uuid.UUID) (string, error)
}

// TxRunner runs fn atomically; repository calls made through the context fn
// receives join one transaction. db.Runner provides the production
// implementation.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// ReferenceCounter reports how many dependent rows still reference a
// profile. Appointment and medical record repositories both satisfy it; the
// service refuses profile deletion while any counter is non-zero.
type ReferenceCounter interface {
	CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}
