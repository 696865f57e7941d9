// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ProtectedRoles are system roles that can never be deleted.
var ProtectedRoles = map[string]bool{
	"admin":       true,
	"super-admin": true,
}

// Role groups permissions and is attached to users many-to-many.
type Role struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Permissions is populated by RoleStore lookups that join the pivot table.
	Permissions []Permission `json:"permissions,omitempty"`
}

// IsProtected returns true for system roles that must not be deleted.
func (r *Role) IsProtected() bool {
	return ProtectedRoles[r.Name]
}

// Permission is a named capability granted to roles.
// Names follow the "<verb> <resource>" convention, e.g. "manage users".
type Permission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
