// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents a user's lifecycle state.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusBlocked  UserStatus = "blocked"
	StatusRejected UserStatus = "rejected"
)

// ValidStatus reports whether s is one of the recognized user statuses.
func ValidStatus(s string) bool {
	switch UserStatus(s) {
	case StatusActive, StatusInactive, StatusBlocked, StatusRejected:
		return true
	}
	return false
}

// User represents a back-office user with authentication and optional 2FA.
// Roles are attached many-to-many and carry the user's permissions.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Never serialize the hash
	Status          UserStatus `json:"status"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	AvatarPath      *string    `json:"avatar_path"`
	TOTPSecret      *string    `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled     bool       `json:"totp_enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Roles is populated by UserStore lookups that join the pivot table.
	Roles []Role `json:"roles,omitempty"`
}

// IsActive returns true if the user may sign in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsVerified returns true once the user's email address is confirmed.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
