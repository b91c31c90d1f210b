package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleHR    Role = "HR"
	RoleUser  Role = "User"
)

var roles = []Role{RoleAdmin, RoleHR, RoleUser}

// ParseRole resolves a role name case-insensitively to its canonical form.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Roles returns the canonical role names.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// IsPrivileged reports whether the role may act on other users' timesheet entries.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleHR
}

type User struct {
	ID                    uint64     `gorm:"primarykey" json:"id"`
	Username              string     `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email                 string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash          string     `gorm:"type:varchar(255);not null" json:"-"`
	Role                  Role       `gorm:"type:varchar(20);not null;default:'User'" json:"role"`
	IsActive              bool       `gorm:"not null;default:true" json:"is_active"`
	IsTempPassword        bool       `gorm:"not null;default:false" json:"is_temp_password"`
	CredentialsValidSince *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
