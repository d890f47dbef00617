package domain

import "time"

// EmailVerificationCode is a short-lived one-time code proving email ownership.
type EmailVerificationCode struct {
	UserID    string
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code can no longer be used at the given instant.
func (c *EmailVerificationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
