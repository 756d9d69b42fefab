package models

import "time"

// Session is the read-only view of an authenticated host that handlers and
// the dashboard hold. The auth service owns its lifecycle; everybody else
// treats it as a cached copy that a sign-out event invalidates.
type Session struct {
	HostID    string    `json:"host_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session can still gate a protected view.
func (s *Session) Valid() bool {
	return s != nil && s.HostID != "" && time.Now().Before(s.ExpiresAt)
}
