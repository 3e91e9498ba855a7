package user

import "context"

type Repository interface {
	// Create inserts u. The unique indexes decide duplicates: ErrDuplicateUsername / ErrDuplicateEmail.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
