package session

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session maps an issued bearer token to its owner. The row is the trust
// anchor: resolution is exact-token lookup with a lookup-time expiry check.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Valid reports whether the session is usable at the given instant. A session
// is valid iff now is strictly before expiry; there is no background sweep.
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
