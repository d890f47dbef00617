package domain

import "time"

// Identity is the caller information embedded in an access token.
type Identity struct {
	UserID string
	Role   Role
	Email  string
	Name   string
}

// Token represents an issued access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}
