// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	// RoleEmployer posts jobs and browses makers.
	RoleEmployer Role = "employer"
	// RoleWHV is a Working Holiday Visa job seeker ("maker").
	RoleWHV Role = "whv"
)

// ParseRole normalizes s into a Role. ok is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployer || r == RoleWHV
}

// Opposite returns the counterpart role. Unknown roles map to "".
func (r Role) Opposite() Role {
	switch r {
	case RoleEmployer:
		return RoleWHV
	case RoleWHV:
		return RoleEmployer
	default:
		return ""
	}
}

// User represents an account on either side of the marketplace.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	Role        Role           `gorm:"type:varchar(16);not null;index" json:"role"`
	DisplayName string         `gorm:"size:120" json:"display_name"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor is the authenticated identity every like operation runs as.
type Actor struct {
	ID   uint `json:"id"`
	Role Role `json:"role"`
}
