package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/access"
)

// Service owns the appointment lifecycle: validation at booking, the status
// state machine, and reminder dispatch. The clock is injectable so tests can
// pin "now".
type Service struct {
	appointments AppointmentRepository
	directory    Directory
	notifier     Notifier
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(appointments AppointmentRepository, directory Directory, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		appointments: appointments,
		directory:    directory,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

// CreateAppointment books an appointment. Any authenticated actor may book;
// the start time must be strictly in the future and both references must
// resolve to profiles of the right kind. The status is always scheduled at
// creation regardless of what the caller sent.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	actor, ok := access.ActorFromContext(ctx)
	if !ok || !actor.Authenticated {
		return &clinicerr.PermissionDeniedError{Role: "anonymous", Operation: "create", Resource: "appointment"}
	}
	if err := s.validateStartTime(a.StartTime); err != nil {
		return err
	}
	if err := s.validateParticipants(ctx, a.PatientID, a.PractitionerID); err != nil {
		return err
	}
	a.Status = StatusScheduled
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("patient_id", a.PatientID.String()).
		Str("practitioner_id", a.PractitionerID.String()).
		Time("start_time", a.StartTime).
		Msg("appointment booked")
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateAppointment applies a partial update. Rescheduling or swapping a
// participant re-runs the booking validation; a status-only change skips the
// future-time check so past appointments can still be completed or canceled.
// Every field merge happens before any repository write, so a failed update
// leaves the appointment untouched.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, ch Changes) (*Appointment, error) {
	actor, ok := access.ActorFromContext(ctx)
	if !ok || !actor.CanWrite(access.ResourceAppointment) {
		return nil, &clinicerr.PermissionDeniedError{Role: actor.Role, Operation: "update", Resource: "appointment"}
	}

	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ch.StartTime != nil {
		if err := s.validateStartTime(*ch.StartTime); err != nil {
			return nil, err
		}
		a.StartTime = *ch.StartTime
	}
	if ch.PatientID != nil || ch.PractitionerID != nil {
		patientID, practitionerID := a.PatientID, a.PractitionerID
		if ch.PatientID != nil {
			patientID = *ch.PatientID
		}
		if ch.PractitionerID != nil {
			practitionerID = *ch.PractitionerID
		}
		if err := s.validateParticipants(ctx, patientID, practitionerID); err != nil {
			return nil, err
		}
		a.PatientID, a.PractitionerID = patientID, practitionerID
	}
	if ch.Status != nil {
		if !ValidStatus(*ch.Status) {
			return nil, &clinicerr.InvalidStatusError{Status: *ch.Status}
		}
		if !CanTransition(a.Status, *ch.Status) {
			return nil, fmt.Errorf("%w: cannot transition appointment from %s to %s", clinicerr.ErrConflict, a.Status, *ch.Status)
		}
		a.Status = *ch.Status
	}
	if ch.Reason != nil {
		a.Reason = ch.Reason
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAppointment removes an appointment under the same write policy as
// updates, so the check holds for callers that bypass the route middleware.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	actor, ok := access.ActorFromContext(ctx)
	if !ok || !actor.CanWrite(access.ResourceAppointment) {
		return &clinicerr.PermissionDeniedError{Role: actor.Role, Operation: "delete", Resource: "appointment"}
	}
	return s.appointments.Delete(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListAppointmentsByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPractitioner(ctx, practitionerID, limit, offset)
}

func (s *Service) ListAppointmentsByStatus(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error) {
	if !ValidStatus(status) {
		return nil, 0, &clinicerr.InvalidStatusError{Status: status}
	}
	return s.appointments.ListByStatus(ctx, status, limit, offset)
}

// RequestReminder sends an email reminder for an upcoming appointment to the
// patient. Only upcoming appointments qualify; a delivery failure surfaces
// as a NotificationError and never alters the appointment.
func (s *Service) RequestReminder(ctx context.Context, id uuid.UUID) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !a.StartTime.After(s.now()) {
		return &clinicerr.InvalidTimeError{Field: "start_time", Reason: "appointment is not upcoming"}
	}

	patient, err := s.directory.Lookup(ctx, a.PatientID)
	if err != nil {
		return err
	}

	whenText := a.StartTime.Format("Mon, 02 Jan 2006 at 15:04")
	if err := s.notifier.SendReminder(ctx, patient.Email, whenText); err != nil {
		s.log.Error().Err(err).
			Str("appointment_id", a.ID.String()).
			Str("recipient", patient.Email).
			Msg("reminder delivery failed")
		return &clinicerr.NotificationError{Recipient: patient.Email, Err: err}
	}
	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("recipient", patient.Email).
		Msg("reminder sent")
	return nil
}

func (s *Service) validateStartTime(start time.Time) error {
	if start.IsZero() {
		return &clinicerr.EmptyFieldError{Field: "start_time"}
	}
	if !start.After(s.now()) {
		return &clinicerr.InvalidTimeError{Field: "start_time", Reason: "must be in the future"}
	}
	return nil
}

// validateParticipants resolves both references and checks each resolves to
// a profile of the expected kind.
func (s *Service) validateParticipants(ctx context.Context, patientID, practitionerID uuid.UUID) error {
	patient, err := s.directory.Lookup(ctx, patientID)
	if err != nil {
		return err
	}
	if patient.Role != "patient" {
		return &clinicerr.RoleMismatchError{Side: "patient", Want: "patient", Got: patient.Role}
	}
	practitioner, err := s.directory.Lookup(ctx, practitionerID)
	if err != nil {
		return err
	}
	if practitioner.Role != "practitioner" {
		return &clinicerr.RoleMismatchError{Side: "practitioner", Want: "practitioner", Got: practitioner.Role}
	}
	return nil
}
