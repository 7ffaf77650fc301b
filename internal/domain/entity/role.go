package entity

import "github.com/google/uuid"

// UserRole represents the role a user account holds
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// ParseUserRole returns the role named by s, defaulting to RoleUser
func ParseUserRole(s string) UserRole {
	if UserRole(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Actor is the authenticated identity performing an operation.
// Both the cookie and the bearer-token credential paths resolve to an Actor
// before any usecase is called.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  UserRole
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsAuthenticated reports whether the actor carries an identity
func (a Actor) IsAuthenticated() bool {
	return a.ID != uuid.Nil
}
