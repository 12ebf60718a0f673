package refreshtokens

import "time"

// RefreshToken is a persisted session record. The token string itself is a
// signed JWT, but revocation happens by deleting the row, so a session dies
// even while its signature is still valid.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
