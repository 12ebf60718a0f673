// Package recovery implements the email-based password-recovery flow:
// issuing short-lived single-use tokens, verifying them, and resetting the
// account secret.
package recovery

import (
	"context"
)

// Repository defines persistence operations for recovery tokens.
type Repository interface {
	// CreateSuperseding marks every prior unused token of t.UserID as used
	// and inserts t, atomically. This keeps the one-valid-token-per-user
	// invariant at the data layer.
	CreateSuperseding(ctx context.Context, t *Token) error

	// FindUnused looks up an unused token by its opaque value.
	// Returns common.ErrorNotFound when absent or already used.
	FindUnused(ctx context.Context, token string) (*Token, error)

	// MarkUsed flips the used flag of the token with the given id.
	MarkUsed(ctx context.Context, id string) error
}
