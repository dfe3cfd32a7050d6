package users

import (
	"time"

	"github.com/salesdesk/salesdesk/internal/authz"
)

// User represents a sales user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         authz.Role
	// LeaderID points at the group leader this user reports to, when any.
	LeaderID  *int64
	Superuser bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID implements authz.Principal.
func (u *User) GetID() int64 { return u.ID }

// GetRole implements authz.Principal.
func (u *User) GetRole() authz.Role { return u.Role }

// IsSuperUser implements authz.Principal.
func (u *User) IsSuperUser() bool { return u.Superuser }

var _ authz.Principal = (*User)(nil)
