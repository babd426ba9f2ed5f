// Package domain holds the user model shared by repositories and services.
package domain

import "time"

// Role is the coarse authorization role embedded into access tokens.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleSupport Role = "support"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSupport:
		return true
	}
	return false
}

// User is an account holder. Email lookups are exact-case: the stored email
// is the credential, no normalization is applied on either side.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	Active       bool
	Suspended    bool
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAuthenticate reports whether the account may receive tokens. Suspension
// overrides the active flag.
func (u *User) CanAuthenticate() bool {
	return u.Active && !u.Suspended
}

// Public is the representation safe to return to clients. The password hash
// never leaves the service layer.
type Public struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	Verified bool   `json:"verified"`
}

// Public returns the client-safe view of the user.
func (u *User) Public() Public {
	return Public{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Verified: u.Verified,
	}
}
