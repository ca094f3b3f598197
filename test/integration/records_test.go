package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/records"
)

func TestMedicalRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	patient := newPatientProfile(t, "ama@example.com")
	practitioner := newPractitionerProfile(t)
	pracCtx := asRole(practitioner.AccountID, identity.RolePractitioner)

	rec := &records.MedicalRecord{
		PatientID:      patient.ID,
		PractitionerID: practitioner.ID,
		Notes:          "routine checkup, no complaints",
		Diagnosis:      ptrStr("healthy"),
	}
	if err := recordsSvc.CreateRecord(pracCtx, rec); err != nil {
		t.Fatalf("CreateRecord() error: %v", err)
	}

	got, err := recordsSvc.GetRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord() error: %v", err)
	}
	if got.Diagnosis == nil || *got.Diagnosis != "healthy" {
		t.Errorf("diagnosis = %v, want healthy", got.Diagnosis)
	}

	// Whatever bindings the caller sends on update, the stored patient and
	// practitioner references must survive.
	got.Notes = "follow-up booked for next month"
	got.PatientID = uuid.New()
	if err := recordsSvc.UpdateRecord(pracCtx, got); err != nil {
		t.Fatalf("UpdateRecord() error: %v", err)
	}
	stored, err := recordsSvc.GetRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord() after update: %v", err)
	}
	if stored.Notes != "follow-up booked for next month" {
		t.Errorf("notes = %q, update lost", stored.Notes)
	}
	if stored.PatientID != patient.ID {
		t.Errorf("patient binding changed to %s", stored.PatientID)
	}

	list, total, err := recordsSvc.ListByPatient(ctx, patient.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListByPatient() error: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != rec.ID {
		t.Errorf("ListByPatient() = %d records (total %d), want exactly the created one", len(list), total)
	}

	if err := recordsSvc.DeleteRecord(pracCtx, rec.ID); err != nil {
		t.Fatalf("DeleteRecord() error: %v", err)
	}
	if _, err := recordsSvc.GetRecord(ctx, rec.ID); !errors.Is(err, clinicerr.ErrNotFound) {
		t.Errorf("GetRecord() after delete: got %v, want ErrNotFound", err)
	}
}

func TestMedicalRecordUnknownPatient(t *testing.T) {
	practitioner := newPractitionerProfile(t)
	pracCtx := asRole(practitioner.AccountID, identity.RolePractitioner)

	err := recordsSvc.CreateRecord(pracCtx, &records.MedicalRecord{
		PatientID:      uuid.New(),
		PractitionerID: practitioner.ID,
		Notes:          "orphan note",
	})
	if !errors.Is(err, clinicerr.ErrNotFound) {
		t.Errorf("record with unknown patient: got %v, want ErrNotFound", err)
	}
}

func TestMedicalRecordPatientCannotWrite(t *testing.T) {
	patient := newPatientProfile(t, "esi@example.com")
	practitioner := newPractitionerProfile(t)

	err := recordsSvc.CreateRecord(asRole(patient.AccountID, identity.RolePatient), &records.MedicalRecord{
		PatientID:      patient.ID,
		PractitionerID: practitioner.ID,
		Notes:          "self-authored",
	})
	var denied *clinicerr.PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Errorf("patient-authored record: got %v, want PermissionDeniedError", err)
	}
}

func TestRecordAppointmentLinkCleared(t *testing.T) {
	ctx := context.Background()
	patient := newPatientProfile(t, "kwesi@example.com")
	practitioner := newPractitionerProfile(t)
	svc, _ := newMailbox()
	pracCtx := asRole(practitioner.AccountID, identity.RolePractitioner)

	appt := bookAppointment(t, svc, patient, practitioner, time.Now().Add(24*time.Hour))

	rec := &records.MedicalRecord{
		PatientID:      patient.ID,
		PractitionerID: practitioner.ID,
		AppointmentID:  &appt.ID,
		Notes:          "intake assessment",
	}
	if err := recordsSvc.CreateRecord(pracCtx, rec); err != nil {
		t.Fatalf("CreateRecord() error: %v", err)
	}

	// Deleting the appointment detaches the record instead of blocking.
	if err := appointmentRepo.Delete(ctx, appt.ID); err != nil {
		t.Fatalf("delete appointment: %v", err)
	}

	stored, err := recordsSvc.GetRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord() error: %v", err)
	}
	if stored.AppointmentID != nil {
		t.Errorf("appointment link = %s, want cleared", *stored.AppointmentID)
	}
}
