package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
)

// Service owns account lifecycle rules.
type Service struct {
	repo AccountRepository
}

func NewService(repo AccountRepository) *Service {
	return &Service{repo: repo}
}

// CreateAccount registers a new principal. Username is normalized by trimming
// surrounding whitespace; a blank username or an unknown role is rejected
// before the repository is touched.
func (s *Service) CreateAccount(ctx context.Context, a *Account) error {
	a.Username = strings.TrimSpace(a.Username)
	if a.Username == "" {
		return &clinicerr.EmptyFieldError{Field: "username"}
	}
	if !ValidRole(a.Role) {
		return &clinicerr.InvalidRoleError{Role: a.Role}
	}
	a.Active = true
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	return s.repo.GetByUsername(ctx, username)
}

// UpdateAccount changes the mutable account fields: display name and active
// flag. Username and role are immutable after creation.
func (s *Service) UpdateAccount(ctx context.Context, a *Account) error {
	existing, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	a.Username = existing.Username
	a.Role = existing.Role
	return s.repo.Update(ctx, a)
}

func (s *Service) ListAccounts(ctx context.Context, role string, limit, offset int) ([]*Account, int, error) {
	if role != "" {
		if !ValidRole(role) {
			return nil, 0, &clinicerr.InvalidRoleError{Role: role}
		}
		return s.repo.ListByRole(ctx, role, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
