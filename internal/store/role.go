// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"backoffice/internal/models"
)

// ErrProtectedRole is returned when deleting a system role (admin, super-admin).
var ErrProtectedRole = errors.New("system role cannot be deleted")

// RoleStore handles role persistence and the role-permission pivot.
type RoleStore struct {
	db *sql.DB
}

// NewRoleStore creates a new RoleStore with the given database connection.
func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

// List returns all roles ordered by name, permissions attached.
func (s *RoleStore) List() ([]models.Role, error) {
	rows, err := s.db.Query(`
		SELECT id, name, guard_name, created_at, updated_at
		FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.GuardName, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		if err := s.attachPermissions(&roles[i]); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

// FindByID retrieves a role with its permissions. Returns nil if not found.
func (s *RoleStore) FindByID(id uuid.UUID) (*models.Role, error) {
	r := &models.Role{}
	err := s.db.QueryRow(`
		SELECT id, name, guard_name, created_at, updated_at
		FROM roles WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.GuardName, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	if err := s.attachPermissions(r); err != nil {
		return nil, err
	}
	return r, nil
}

// FindByName retrieves a role by its unique name. Returns nil if not found.
func (s *RoleStore) FindByName(name string) (*models.Role, error) {
	r := &models.Role{}
	err := s.db.QueryRow(`
		SELECT id, name, guard_name, created_at, updated_at
		FROM roles WHERE name = $1`, name,
	).Scan(&r.ID, &r.Name, &r.GuardName, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	if err := s.attachPermissions(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a new role and grants it the given permissions.
func (s *RoleStore) Create(name string, permissionIDs []uuid.UUID) (*models.Role, error) {
	r := &models.Role{}
	err := s.db.QueryRow(`
		INSERT INTO roles (name) VALUES ($1)
		RETURNING id, name, guard_name, created_at, updated_at`, name,
	).Scan(&r.ID, &r.Name, &r.GuardName, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	if err := s.SyncPermissions(r.ID, permissionIDs); err != nil {
		return nil, err
	}
	if err := s.attachPermissions(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Rename changes the role's name.
func (s *RoleStore) Rename(id uuid.UUID, name string) error {
	_, err := s.db.Exec(`UPDATE roles SET name = $1, updated_at = now() WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("rename role: %w", err)
	}
	return nil
}

// Delete removes a role. System roles (admin, super-admin) are rejected
// with ErrProtectedRole; pivot rows for other roles cascade.
func (s *RoleStore) Delete(id uuid.UUID) error {
	role, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if role == nil {
		return nil
	}
	if role.IsProtected() {
		return ErrProtectedRole
	}

	if _, err := s.db.Exec(`DELETE FROM roles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// SyncPermissions replaces the role's permission set with exactly the
// given permission IDs.
func (s *RoleStore) SyncPermissions(roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sync permissions begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("sync permissions clear: %w", err)
	}
	for _, permID := range permissionIDs {
		if _, err := tx.Exec(`
			INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, roleID, permID); err != nil {
			return fmt.Errorf("sync permissions insert: %w", err)
		}
	}
	return tx.Commit()
}

// attachPermissions populates r.Permissions from the pivot table.
func (s *RoleStore) attachPermissions(r *models.Role) error {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.guard_name, p.created_at, p.updated_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`, r.ID)
	if err != nil {
		return fmt.Errorf("role permissions: %w", err)
	}
	defer rows.Close()

	r.Permissions = nil
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.GuardName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return fmt.Errorf("scan permission: %w", err)
		}
		r.Permissions = append(r.Permissions, p)
	}
	return rows.Err()
}
