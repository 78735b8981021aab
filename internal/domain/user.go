package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Satisfies reports whether the role meets the given requirement.
// Admins satisfy every requirement.
func (r Role) Satisfies(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// User is a registered account. PasswordHash never leaves the persistence
// boundary: it is excluded from JSON and stripped by read-only projections.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated identity attached to a request.
// It lives exactly one request.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}
