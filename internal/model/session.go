package model

import "time"

// Session binds a random token, carried in the sid cookie, to a user until
// ExpiresAt. Expiry is checked when the token is used; nothing sweeps
// expired rows in the background.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
