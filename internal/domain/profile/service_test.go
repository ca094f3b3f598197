package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/access"
)

// -- In-memory fixtures --

type mockPractitionerRepo struct {
	byID map[uuid.UUID]*Practitioner
}

func (m *mockPractitionerRepo) Create(_ context.Context, p *Practitioner) error {
	for _, existing := range m.byID {
		if existing.AccountID == p.AccountID {
			return clinicerr.ErrConflict
		}
	}
	p.ID = uuid.New()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPractitionerRepo) GetByID(_ context.Context, id uuid.UUID) (*Practitioner, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, clinicerr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPractitionerRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*Practitioner, error) {
	for _, p := range m.byID {
		if p.AccountID == accountID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, clinicerr.ErrNotFound
}

func (m *mockPractitionerRepo) Update(_ context.Context, p *Practitioner) error {
	if _, ok := m.byID[p.ID]; !ok {
		return clinicerr.ErrNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPractitionerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return clinicerr.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockPractitionerRepo) List(_ context.Context, limit, offset int) ([]*Practitioner, int, error) {
	var all []*Practitioner
	for _, p := range m.byID {
		cp := *p
		all = append(all, &cp)
	}
	return all, len(all), nil
}

type mockPatientRepo struct {
	byID map[uuid.UUID]*Patient
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.byID {
		if existing.AccountID == p.AccountID {
			return clinicerr.ErrConflict
		}
	}
	p.ID = uuid.New()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, clinicerr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*Patient, error) {
	for _, p := range m.byID {
		if p.AccountID == accountID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, clinicerr.ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.byID[p.ID]; !ok {
		return clinicerr.ErrNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return clinicerr.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.byID {
		cp := *p
		all = append(all, &cp)
	}
	return all, len(all), nil
}

type mockDirectory struct {
	roles map[uuid.UUID]string
}

func (m *mockDirectory) AccountRole(_ context.Context, accountID uuid.UUID) (string, error) {
	role, ok := m.roles[accountID]
	if !ok {
		return "", clinicerr.ErrNotFound
	}
	return role, nil
}

type mockCounter struct {
	byPractitioner map[uuid.UUID]int
	byPatient      map[uuid.UUID]int
}

func (m *mockCounter) CountByPractitioner(_ context.Context, id uuid.UUID) (int, error) {
	return m.byPractitioner[id], nil
}

func (m *mockCounter) CountByPatient(_ context.Context, id uuid.UUID) (int, error) {
	return m.byPatient[id], nil
}

type fixture struct {
	svc     *Service
	dir     *mockDirectory
	counter *mockCounter
}

func newFixture() *fixture {
	dir := &mockDirectory{roles: make(map[uuid.UUID]string)}
	counter := &mockCounter{byPractitioner: make(map[uuid.UUID]int), byPatient: make(map[uuid.UUID]int)}
	svc := NewService(
		&mockPractitionerRepo{byID: make(map[uuid.UUID]*Practitioner)},
		&mockPatientRepo{byID: make(map[uuid.UUID]*Patient)},
		dir,
		nil,
		counter,
	)
	return &fixture{svc: svc, dir: dir, counter: counter}
}

func (f *fixture) account(role string) uuid.UUID {
	id := uuid.New()
	f.dir.roles[id] = role
	return id
}

func actorCtx(accountID uuid.UUID, role string) context.Context {
	return access.WithActor(context.Background(), access.Actor{
		ID:            accountID.String(),
		Role:          role,
		Authenticated: true,
	})
}

// -- Practitioner tests --

func TestCreatePractitioner(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	p := &Practitioner{AccountID: acct, Specialization: "cardiology", ExperienceYears: 12}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected profile ID to be assigned")
	}
}

func TestCreatePractitioner_RoleMismatch(t *testing.T) {
	f := newFixture()
	acct := f.account("patient")

	var mismatch *clinicerr.RoleMismatchError
	err := f.svc.CreatePractitioner(context.Background(), &Practitioner{AccountID: acct, Specialization: "derm"})
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected RoleMismatchError, got %v", err)
	}
	if mismatch.Got != "patient" {
		t.Errorf("expected got=patient, got %q", mismatch.Got)
	}
}

func TestCreatePractitioner_UnknownAccount(t *testing.T) {
	f := newFixture()

	err := f.svc.CreatePractitioner(context.Background(), &Practitioner{AccountID: uuid.New(), Specialization: "derm"})
	if !errors.Is(err, clinicerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePractitioner_SecondProfileConflicts(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	if err := f.svc.CreatePractitioner(context.Background(), &Practitioner{AccountID: acct, Specialization: "cardiology"}); err != nil {
		t.Fatalf("first CreatePractitioner() error: %v", err)
	}
	err := f.svc.CreatePractitioner(context.Background(), &Practitioner{AccountID: acct, Specialization: "neurology"})
	if !errors.Is(err, clinicerr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreatePractitioner_BlankSpecialization(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	var emptyField *clinicerr.EmptyFieldError
	err := f.svc.CreatePractitioner(context.Background(), &Practitioner{AccountID: acct, Specialization: "  "})
	if !errors.As(err, &emptyField) {
		t.Fatalf("expected EmptyFieldError, got %v", err)
	}
}

func TestCreatePractitioner_NegativeExperience(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	var invalid *clinicerr.InvalidValueError
	err := f.svc.CreatePractitioner(context.Background(), &Practitioner{AccountID: acct, Specialization: "cardiology", ExperienceYears: -5})
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if invalid.Field != "experience_years" {
		t.Errorf("field = %q, want experience_years", invalid.Field)
	}
}

func TestUpdatePractitioner_NegativeExperience(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	p := &Practitioner{AccountID: acct, Specialization: "cardiology", ExperienceYears: 4}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}

	p.ExperienceYears = -1
	var invalid *clinicerr.InvalidValueError
	if err := f.svc.UpdatePractitioner(actorCtx(acct, "practitioner"), p); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}

	// The stored profile keeps its old value.
	stored, err := f.svc.GetPractitioner(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPractitioner() error: %v", err)
	}
	if stored.ExperienceYears != 4 {
		t.Errorf("experience_years = %d, want 4", stored.ExperienceYears)
	}
}

func TestUpdateAvailability_Owner(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	p := &Practitioner{AccountID: acct, Specialization: "cardiology"}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}

	avail := json.RawMessage(`{"mon":["09:00-13:00"]}`)
	updated, err := f.svc.UpdateAvailability(actorCtx(acct, "practitioner"), p.ID, avail)
	if err != nil {
		t.Fatalf("UpdateAvailability() error: %v", err)
	}
	if string(updated.Availability) != string(avail) {
		t.Errorf("availability not stored: %s", updated.Availability)
	}
}

func TestUpdateAvailability_OtherPractitionerDenied(t *testing.T) {
	f := newFixture()
	owner := f.account("practitioner")
	other := f.account("patient")

	p := &Practitioner{AccountID: owner, Specialization: "cardiology"}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}

	var denied *clinicerr.PermissionDeniedError
	_, err := f.svc.UpdateAvailability(actorCtx(other, "patient"), p.ID, json.RawMessage(`{}`))
	if !errors.As(err, &denied) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
}

func TestUpdateAvailability_AdminAllowed(t *testing.T) {
	f := newFixture()
	owner := f.account("practitioner")
	admin := f.account("admin")

	p := &Practitioner{AccountID: owner, Specialization: "cardiology"}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}
	if _, err := f.svc.UpdateAvailability(actorCtx(admin, "admin"), p.ID, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("UpdateAvailability() as admin error: %v", err)
	}
}

func TestDeletePractitioner_Protected(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	p := &Practitioner{AccountID: acct, Specialization: "cardiology"}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}
	f.counter.byPractitioner[p.ID] = 3

	var protect *clinicerr.ReferentialProtectionError
	err := f.svc.DeletePractitioner(context.Background(), p.ID)
	if !errors.As(err, &protect) {
		t.Fatalf("expected ReferentialProtectionError, got %v", err)
	}
	if protect.Dependents != 3 {
		t.Errorf("expected 3 dependents, got %d", protect.Dependents)
	}

	// Profile must still exist after the refused deletion.
	if _, err := f.svc.GetPractitioner(context.Background(), p.ID); err != nil {
		t.Errorf("profile should survive refused deletion: %v", err)
	}
}

func TestDeletePractitioner_Unreferenced(t *testing.T) {
	f := newFixture()
	acct := f.account("practitioner")

	p := &Practitioner{AccountID: acct, Specialization: "cardiology"}
	if err := f.svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}
	if err := f.svc.DeletePractitioner(context.Background(), p.ID); err != nil {
		t.Fatalf("DeletePractitioner() error: %v", err)
	}
	if _, err := f.svc.GetPractitioner(context.Background(), p.ID); !errors.Is(err, clinicerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
}

func TestDelete_RunsThroughTxRunner(t *testing.T) {
	var calls int
	runner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		calls++
		return fn(ctx)
	}
	dir := &mockDirectory{roles: make(map[uuid.UUID]string)}
	counter := &mockCounter{byPractitioner: make(map[uuid.UUID]int), byPatient: make(map[uuid.UUID]int)}
	svc := NewService(
		&mockPractitionerRepo{byID: make(map[uuid.UUID]*Practitioner)},
		&mockPatientRepo{byID: make(map[uuid.UUID]*Patient)},
		dir,
		runner,
		counter,
	)

	acct := uuid.New()
	dir.roles[acct] = "practitioner"
	p := &Practitioner{AccountID: acct, Specialization: "cardiology"}
	if err := svc.CreatePractitioner(context.Background(), p); err != nil {
		t.Fatalf("CreatePractitioner() error: %v", err)
	}
	if err := svc.DeletePractitioner(context.Background(), p.ID); err != nil {
		t.Fatalf("DeletePractitioner() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("deletion ran through the runner %d times, want 1", calls)
	}

	// A refused deletion also happens inside the runner so the counts and
	// the decision share one snapshot.
	acct2 := uuid.New()
	dir.roles[acct2] = "patient"
	pt := &Patient{AccountID: acct2, Email: "abena@example.com"}
	if err := svc.CreatePatient(context.Background(), pt); err != nil {
		t.Fatalf("CreatePatient() error: %v", err)
	}
	counter.byPatient[pt.ID] = 2
	var protect *clinicerr.ReferentialProtectionError
	if err := svc.DeletePatient(context.Background(), pt.ID); !errors.As(err, &protect) {
		t.Fatalf("expected ReferentialProtectionError, got %v", err)
	}
	if calls != 2 {
		t.Errorf("runner calls = %d, want 2", calls)
	}
}

// -- Patient tests --

func TestCreatePatient(t *testing.T) {
	f := newFixture()
	acct := f.account("patient")

	dob := time.Now().AddDate(-30, 0, 0)
	p := &Patient{AccountID: acct, Email: "amara@example.org", DateOfBirth: &dob}
	if err := f.svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient() error: %v", err)
	}
}

func TestCreatePatient_RoleMismatch(t *testing.T) {
	f := newFixture()
	acct := f.account("admin")

	var mismatch *clinicerr.RoleMismatchError
	err := f.svc.CreatePatient(context.Background(), &Patient{AccountID: acct, Email: "x@example.org"})
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected RoleMismatchError, got %v", err)
	}
}

func TestCreatePatient_BlankEmail(t *testing.T) {
	f := newFixture()
	acct := f.account("patient")

	var emptyField *clinicerr.EmptyFieldError
	err := f.svc.CreatePatient(context.Background(), &Patient{AccountID: acct, Email: "   "})
	if !errors.As(err, &emptyField) {
		t.Fatalf("expected EmptyFieldError, got %v", err)
	}
	if emptyField.Field != "email" {
		t.Errorf("expected field email, got %q", emptyField.Field)
	}
}

func TestCreatePatient_FutureDateOfBirth(t *testing.T) {
	f := newFixture()
	acct := f.account("patient")

	future := time.Now().Add(48 * time.Hour)
	var invalidTime *clinicerr.InvalidTimeError
	err := f.svc.CreatePatient(context.Background(), &Patient{AccountID: acct, Email: "x@example.org", DateOfBirth: &future})
	if !errors.As(err, &invalidTime) {
		t.Fatalf("expected InvalidTimeError, got %v", err)
	}
	if invalidTime.Field != "date_of_birth" {
		t.Errorf("expected field date_of_birth, got %q", invalidTime.Field)
	}
}

func TestDeletePatient_Protected(t *testing.T) {
	f := newFixture()
	acct := f.account("patient")

	p := &Patient{AccountID: acct, Email: "amara@example.org"}
	if err := f.svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient() error: %v", err)
	}
	f.counter.byPatient[p.ID] = 1

	var protect *clinicerr.ReferentialProtectionError
	if err := f.svc.DeletePatient(context.Background(), p.ID); !errors.As(err, &protect) {
		t.Fatalf("expected ReferentialProtectionError, got %v", err)
	}
}

func TestUpdatePatient_OwnerEditsOwnProfile(t *testing.T) {
	f := newFixture()
	acct := f.account("patient")

	p := &Patient{AccountID: acct, Email: "amara@example.org"}
	if err := f.svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient() error: %v", err)
	}

	history := "penicillin allergy"
	update := &Patient{ID: p.ID, Email: "amara@example.org", MedicalHistory: &history}
	if err := f.svc.UpdatePatient(actorCtx(acct, "patient"), update); err != nil {
		t.Fatalf("UpdatePatient() error: %v", err)
	}
	if update.AccountID != acct {
		t.Error("account binding must be preserved on update")
	}
}
