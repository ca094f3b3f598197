package records

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/access"
)

// Service owns medical record rules: only roles that satisfy the record
// write policy may author or change records, and notes must carry content.
type Service struct {
	records RecordRepository
}

func NewService(records RecordRepository) *Service {
	return &Service{records: records}
}

// CreateRecord authors a new record. The write check runs here rather than
// only at the route so direct service callers get the same policy.
func (s *Service) CreateRecord(ctx context.Context, rec *MedicalRecord) error {
	if err := requireRecordWrite(ctx); err != nil {
		return err
	}
	if err := validateNotes(rec); err != nil {
		return err
	}
	return s.records.Create(ctx, rec)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

// UpdateRecord edits notes and diagnosis. Patient and practitioner bindings
// are immutable once written.
func (s *Service) UpdateRecord(ctx context.Context, rec *MedicalRecord) error {
	if err := requireRecordWrite(ctx); err != nil {
		return err
	}
	existing, err := s.records.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if err := validateNotes(rec); err != nil {
		return err
	}
	rec.PatientID = existing.PatientID
	rec.PractitionerID = existing.PractitionerID
	rec.AppointmentID = existing.AppointmentID
	return s.records.Update(ctx, rec)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if err := requireRecordWrite(ctx); err != nil {
		return err
	}
	return s.records.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPractitioner(ctx, practitionerID, limit, offset)
}

func validateNotes(rec *MedicalRecord) error {
	rec.Notes = strings.TrimSpace(rec.Notes)
	if rec.Notes == "" {
		return &clinicerr.EmptyFieldError{Field: "notes"}
	}
	return nil
}

func requireRecordWrite(ctx context.Context) error {
	actor, ok := access.ActorFromContext(ctx)
	if !ok || !actor.CanWrite(access.ResourceRecord) {
		return &clinicerr.PermissionDeniedError{Role: actor.Role, Operation: "write", Resource: "record"}
	}
	return nil
}
