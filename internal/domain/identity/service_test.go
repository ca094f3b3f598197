package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
)

// mockAccountRepo is an in-memory AccountRepository for service tests.
type mockAccountRepo struct {
	accounts map[uuid.UUID]*Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[uuid.UUID]*Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, a *Account) error {
	for _, existing := range m.accounts {
		if existing.Username == a.Username {
			return clinicerr.ErrConflict
		}
	}
	a.ID = uuid.New()
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, clinicerr.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, clinicerr.ErrNotFound
}

func (m *mockAccountRepo) Update(_ context.Context, a *Account) error {
	if _, ok := m.accounts[a.ID]; !ok {
		return clinicerr.ErrNotFound
	}
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *mockAccountRepo) List(_ context.Context, limit, offset int) ([]*Account, int, error) {
	var all []*Account
	for _, a := range m.accounts {
		cp := *a
		all = append(all, &cp)
	}
	return page(all, limit, offset), len(all), nil
}

func (m *mockAccountRepo) ListByRole(_ context.Context, role string, limit, offset int) ([]*Account, int, error) {
	var matched []*Account
	for _, a := range m.accounts {
		if a.Role == role {
			cp := *a
			matched = append(matched, &cp)
		}
	}
	return page(matched, limit, offset), len(matched), nil
}

func page(items []*Account, limit, offset int) []*Account {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func newTestService() (*Service, *mockAccountRepo) {
	repo := newMockAccountRepo()
	return NewService(repo), repo
}

func TestCreateAccount(t *testing.T) {
	svc, _ := newTestService()

	a := &Account{Username: "dr.osei", Role: RolePractitioner, DisplayName: "Dr. Osei"}
	if err := svc.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount() error: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("expected account ID to be assigned")
	}
	if !a.Active {
		t.Error("expected new account to be active")
	}
}

func TestCreateAccount_TrimsUsername(t *testing.T) {
	svc, _ := newTestService()

	a := &Account{Username: "  amara  ", Role: RolePatient}
	if err := svc.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount() error: %v", err)
	}
	if a.Username != "amara" {
		t.Errorf("expected trimmed username, got %q", a.Username)
	}
}

func TestCreateAccount_BlankUsername(t *testing.T) {
	svc, _ := newTestService()

	var emptyField *clinicerr.EmptyFieldError
	err := svc.CreateAccount(context.Background(), &Account{Username: "   ", Role: RolePatient})
	if !errors.As(err, &emptyField) {
		t.Fatalf("expected EmptyFieldError, got %v", err)
	}
	if emptyField.Field != "username" {
		t.Errorf("expected field username, got %q", emptyField.Field)
	}
}

func TestCreateAccount_InvalidRole(t *testing.T) {
	svc, _ := newTestService()

	var invalidRole *clinicerr.InvalidRoleError
	err := svc.CreateAccount(context.Background(), &Account{Username: "x", Role: "superuser"})
	if !errors.As(err, &invalidRole) {
		t.Fatalf("expected InvalidRoleError, got %v", err)
	}
}

func TestCreateAccount_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.CreateAccount(context.Background(), &Account{Username: "amara", Role: RolePatient}); err != nil {
		t.Fatalf("first CreateAccount() error: %v", err)
	}
	err := svc.CreateAccount(context.Background(), &Account{Username: "amara", Role: RoleAdmin})
	if !errors.Is(err, clinicerr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateAccount_PreservesUsernameAndRole(t *testing.T) {
	svc, _ := newTestService()

	a := &Account{Username: "amara", Role: RolePatient, DisplayName: "Amara"}
	if err := svc.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount() error: %v", err)
	}

	update := &Account{ID: a.ID, Username: "hijacked", Role: RoleAdmin, DisplayName: "Amara N.", Active: true}
	if err := svc.UpdateAccount(context.Background(), update); err != nil {
		t.Fatalf("UpdateAccount() error: %v", err)
	}
	if update.Username != "amara" {
		t.Errorf("username must be immutable, got %q", update.Username)
	}
	if update.Role != RolePatient {
		t.Errorf("role must be immutable, got %q", update.Role)
	}
}

func TestUpdateAccount_NotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.UpdateAccount(context.Background(), &Account{ID: uuid.New()})
	if !errors.Is(err, clinicerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAccounts_RoleFilter(t *testing.T) {
	svc, _ := newTestService()

	for _, a := range []*Account{
		{Username: "dr.osei", Role: RolePractitioner},
		{Username: "amara", Role: RolePatient},
		{Username: "root", Role: RoleAdmin},
	} {
		if err := svc.CreateAccount(context.Background(), a); err != nil {
			t.Fatalf("CreateAccount(%s) error: %v", a.Username, err)
		}
	}

	items, total, err := svc.ListAccounts(context.Background(), RolePatient, 10, 0)
	if err != nil {
		t.Fatalf("ListAccounts() error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 patient account, got total=%d len=%d", total, len(items))
	}
	if items[0].Username != "amara" {
		t.Errorf("expected amara, got %q", items[0].Username)
	}

	if _, _, err := svc.ListAccounts(context.Background(), "bogus", 10, 0); err == nil {
		t.Error("expected error for unknown role filter")
	}
}
