package recovery

import "time"

// Token is a single-use password-recovery token. Only one unused token per
// user is valid at a time; issuing a new one supersedes the rest.
type Token struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	Used      bool
	CreatedAt time.Time
}

// Expired reports whether the token's validity window has passed.
func (t *Token) Expired() bool {
	return time.Now().After(t.Expires)
}
