package domain

import "time"

// Role enumerates what an account may do in the helpdesk.
type Role string

const (
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTechnician
}

// User is an account that files tickets or works on them.
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	CPF           string
	Role          Role
	PasswordHash  string
	Phone         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Sanitized returns a copy of the user without credential material.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	return &u
}
