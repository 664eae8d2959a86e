// Package auth manages authentication tokens for API and UI test flows.
// It caches tokens per (tenant, user), refreshes them before expiry, and
// produces the header set every authenticated call must carry.
package auth

import "time"

// Token is a time-bounded credential for one (tenant, user) pair.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	TenantID     string
	UserEmail    string
}

// ExpiredAt reports whether the token has expired at the given instant.
// A token whose ExpiresAt equals now is already expired.
func (t Token) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ValidAt reports whether the token is usable at the given instant: a
// non-empty access token that has not yet expired.
func (t Token) ValidAt(now time.Time) bool {
	return t.AccessToken != "" && !t.ExpiredAt(now)
}
