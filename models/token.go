package models

import "time"

// ResetTokenTTL is how long a password reset token stays redeemable.
const ResetTokenTTL = time.Hour

// ResetToken grants one-time permission to set a new password for the
// associated email. The opaque token string is the lookup key; redemption
// removes it. Expiry is checked at redemption time, not by a background
// sweep, so expired tokens may linger in storage.
type ResetToken struct {
	Token     string    `db:"token"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
