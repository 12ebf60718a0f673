package users

import (
	"context"
)

// Repository defines persistence operations for user accounts.
// Lookups return common.ErrorNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// UpdateProfile persists username, email and name fields and bumps the
	// modification timestamp.
	UpdateProfile(ctx context.Context, user *User) (*User, error)

	// UpdatePassword replaces the stored hash and bumps the modification
	// timestamp. The hash must already be computed by the caller; this layer
	// never sees plaintext.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// Touch bumps the modification timestamp only (login bookkeeping).
	Touch(ctx context.Context, id string) error
}
