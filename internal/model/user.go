package model

import "time"

// Role is the portal a user signs in to.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePM       Role = "pm"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePM, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Role        Role       `json:"role"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsSuspended returns true if the user account is currently suspended.
func (u *User) IsSuspended() bool {
	return u.SuspendedAt != nil
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
