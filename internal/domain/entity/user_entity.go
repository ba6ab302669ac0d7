package entity

import (
	"time"
)

// Roles a user can register with. The role is fixed at registration time
// and acts as a login-time discriminant, not a capability grant.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// User is the aggregate root for the auth domain.
// Password holds a bcrypt hash, never the plain text.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleOwner
}
