package entity

import "time"

// Session represents a refresh-token session for a user.
// The ID doubles as the refresh token value (64-character hex string).
type Session struct {
	ID        string     // Refresh token value
	UserID    uint       // Owning user
	UserAgent string     // Client's User-Agent header, for auditing
	IPAddress string     // Client's IP address, for auditing
	CreatedAt time.Time  // Issued at
	ExpiresAt time.Time  // Hard expiry
	RevokedAt *time.Time // Revocation time (nil while active)
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
