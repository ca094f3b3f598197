package profile

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/access"
)

// Service owns profile lifecycle rules: role matching against the account
// directory, the one-profile-per-account invariant (backed by a unique
// constraint), and referential protection on deletion.
type Service struct {
	practitioners PractitionerRepository
	patients      PatientRepository
	directory     AccountDirectory
	tx            TxRunner
	dependents    []ReferenceCounter
}

// NewService wires the profile rules together. A nil tx runs deletions
// without a transaction, which in-memory tests rely on.
func NewService(practitioners PractitionerRepository, patients PatientRepository, directory AccountDirectory, tx TxRunner, dependents ...ReferenceCounter) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		practitioners: practitioners,
		patients:      patients,
		directory:     directory,
		tx:            tx,
		dependents:    dependents,
	}
}

// -- Practitioner --

// CreatePractitioner attaches a practitioner profile to an account. The
// account must exist and carry the practitioner role; a second profile for
// the same account surfaces as ErrConflict from the unique constraint.
func (s *Service) CreatePractitioner(ctx context.Context, p *Practitioner) error {
	role, err := s.directory.AccountRole(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if role != "practitioner" {
		return &clinicerr.RoleMismatchError{Side: "practitioner", Want: "practitioner", Got: role}
	}
	if err := validatePractitioner(p); err != nil {
		return err
	}
	return s.practitioners.Create(ctx, p)
}

func (s *Service) GetPractitioner(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return s.practitioners.GetByID(ctx, id)
}

func (s *Service) GetPractitionerByAccount(ctx context.Context, accountID uuid.UUID) (*Practitioner, error) {
	return s.practitioners.GetByAccountID(ctx, accountID)
}

func (s *Service) ListPractitioners(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	return s.practitioners.List(ctx, limit, offset)
}

// UpdatePractitioner edits a practitioner profile. Beyond the admin policy,
// the profile owner may edit their own profile.
func (s *Service) UpdatePractitioner(ctx context.Context, p *Practitioner) error {
	existing, err := s.practitioners.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.requireProfileWrite(ctx, existing.AccountID, access.ResourcePractitioner); err != nil {
		return err
	}
	if err := validatePractitioner(p); err != nil {
		return err
	}
	p.AccountID = existing.AccountID
	return s.practitioners.Update(ctx, p)
}

// UpdateAvailability replaces the availability document only, leaving the
// rest of the profile untouched.
func (s *Service) UpdateAvailability(ctx context.Context, id uuid.UUID, availability json.RawMessage) (*Practitioner, error) {
	existing, err := s.practitioners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileWrite(ctx, existing.AccountID, access.ResourcePractitioner); err != nil {
		return nil, err
	}
	existing.Availability = availability
	if err := s.practitioners.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeletePractitioner removes a practitioner profile unless appointments or
// medical records still reference it. The reference counts and the delete
// run in one transaction, so a booking landing between them cannot orphan
// itself.
func (s *Service) DeletePractitioner(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.practitioners.GetByID(ctx, id); err != nil {
			return err
		}
		total := 0
		for _, dep := range s.dependents {
			n, err := dep.CountByPractitioner(ctx, id)
			if err != nil {
				return err
			}
			total += n
		}
		if total > 0 {
			return &clinicerr.ReferentialProtectionError{Resource: "practitioner", Dependents: total}
		}
		return s.practitioners.Delete(ctx, id)
	})
}

// -- Patient --

// CreatePatient attaches a patient profile to an account. Email is required
// since reminders are delivered there; a future date of birth is rejected.
func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	role, err := s.directory.AccountRole(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if role != "patient" {
		return &clinicerr.RoleMismatchError{Side: "patient", Want: "patient", Got: role}
	}
	if err := validatePatient(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByAccount(ctx context.Context, accountID uuid.UUID) (*Patient, error) {
	return s.patients.GetByAccountID(ctx, accountID)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// UpdatePatient edits a patient profile. Beyond the admin policy, the
// profile owner may edit their own profile.
func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.requireProfileWrite(ctx, existing.AccountID, access.ResourcePatient); err != nil {
		return err
	}
	if err := validatePatient(p); err != nil {
		return err
	}
	p.AccountID = existing.AccountID
	return s.patients.Update(ctx, p)
}

// DeletePatient removes a patient profile unless appointments or medical
// records still reference it. Counts and delete share one transaction, same
// as DeletePractitioner.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.patients.GetByID(ctx, id); err != nil {
			return err
		}
		total := 0
		for _, dep := range s.dependents {
			n, err := dep.CountByPatient(ctx, id)
			if err != nil {
				return err
			}
			total += n
		}
		if total > 0 {
			return &clinicerr.ReferentialProtectionError{Resource: "patient", Dependents: total}
		}
		return s.patients.Delete(ctx, id)
	})
}

func validatePractitioner(p *Practitioner) error {
	p.Specialization = strings.TrimSpace(p.Specialization)
	if p.Specialization == "" {
		return &clinicerr.EmptyFieldError{Field: "specialization"}
	}
	if p.ExperienceYears < 0 {
		return &clinicerr.InvalidValueError{Field: "experience_years", Reason: "must not be negative"}
	}
	return nil
}

func validatePatient(p *Patient) error {
	p.Email = strings.TrimSpace(p.Email)
	if p.Email == "" {
		return &clinicerr.EmptyFieldError{Field: "email"}
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		return &clinicerr.InvalidTimeError{Field: "date_of_birth", Reason: "must not be in the future"}
	}
	return nil
}

// requireProfileWrite passes when the actor satisfies the write policy for
// the resource or owns the profile being edited.
func (s *Service) requireProfileWrite(ctx context.Context, ownerAccountID uuid.UUID, resource access.Resource) error {
	actor, ok := access.ActorFromContext(ctx)
	if !ok || !actor.Authenticated {
		return &clinicerr.PermissionDeniedError{Role: "anonymous", Operation: "write", Resource: string(resource)}
	}
	if actor.CanWrite(resource) || actor.ID == ownerAccountID.String() {
		return nil
	}
	return &clinicerr.PermissionDeniedError{Role: actor.Role, Operation: "write", Resource: string(resource)}
}
