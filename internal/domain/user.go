package domain

import "time"

type User struct {
	ID    UserID
	Name  string
	Email string
}

// Session binds an edge session to the bearer token issued by the remote auth API.
type Session struct {
	ID    SessionID
	Token string
	User  User

	CreatedAt time.Time
	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time
}

// Expired reports whether the session's token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
