package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/medicore/hms/internal/platform/auth"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*User, int, error)
	SearchByName(ctx context.Context, role auth.Role, q string, limit int) ([]*User, error)
}
