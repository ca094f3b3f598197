package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository is the persistence boundary for accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, a *Account) error
	List(ctx context.Context, limit, offset int) ([]*Account, int, error)
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*Account, int, error)
}
