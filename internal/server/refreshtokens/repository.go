// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns its metadata.
	// Implementations should return a not-found error when the token is absent.
	Find(ctx context.Context, token string) (*RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token is not an error; logout is idempotent.
	Delete(ctx context.Context, token string) error

	// DeleteAllForUser removes every refresh token owned by userID
	// (global session kill).
	DeleteAllForUser(ctx context.Context, userID string) error

	// DeleteExpiredForUser removes the already-expired tokens of userID.
	// Called opportunistically on login.
	DeleteExpiredForUser(ctx context.Context, userID string) error
}
