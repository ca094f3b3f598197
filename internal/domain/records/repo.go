package records

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository is the persistence boundary for medical records. The two
// Count methods also satisfy the profile package's ReferenceCounter, which
// is how record references block profile deletion.
type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int, error)
}
