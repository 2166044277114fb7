package sessions

import "time"

// Session is an authenticated dashboard login. The Token is the opaque bearer
// credential handed to the browser; it is checked on every call.
type Session struct {
	ID        string    // Unique session identifier (UUID)
	ClientID  string    // Client that logged in
	TenantID  string    // Tenant the client belongs to
	Token     string    // Opaque bearer token
	CreatedAt time.Time // When the session was created
	ExpiresAt time.Time // Absolute expiry, never extended
}

// Expired reports whether the session can no longer be used at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
