package users

import (
	"context"
)

// Repository persists user records keyed by a unique email.
//
// Implementations return shared.ErrNotFound for missing records and
// shared.ErrDuplicateEmail when the store's unique constraint rejects a write.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, id string, changes Update) (*User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Store is a Repository that can prepare its own schema. The underlying
// connection is owned by the caller.
type Store interface {
	Repository
	EnsureSchema(ctx context.Context) error
}
