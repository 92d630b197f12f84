package domain

import "time"

type UserRole string

const (
	RoleRenter    UserRole = "renter"
	RoleLessor    UserRole = "lessor"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// CanModerate reports whether the role may act on any booking or listing
// regardless of ownership.
func (r UserRole) CanModerate() bool {
	return r == RoleAdmin || r == RoleModerator
}

func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleRenter, RoleLessor, RoleModerator, RoleAdmin:
		return UserRole(s), true
	}
	return "", false
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
