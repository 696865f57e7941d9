// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"backoffice/internal/models"
)

// PermissionStore handles permission persistence.
type PermissionStore struct {
	db *sql.DB
}

// NewPermissionStore creates a new PermissionStore with the given database connection.
func NewPermissionStore(db *sql.DB) *PermissionStore {
	return &PermissionStore{db: db}
}

// List returns all permissions ordered by name.
func (s *PermissionStore) List() ([]models.Permission, error) {
	rows, err := s.db.Query(`
		SELECT id, name, guard_name, created_at, updated_at
		FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.GuardName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// FindByID retrieves a permission by UUID. Returns nil if not found.
func (s *PermissionStore) FindByID(id uuid.UUID) (*models.Permission, error) {
	p := &models.Permission{}
	err := s.db.QueryRow(`
		SELECT id, name, guard_name, created_at, updated_at
		FROM permissions WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.GuardName, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return p, nil
}

// Create inserts a new permission.
func (s *PermissionStore) Create(name string) (*models.Permission, error) {
	p := &models.Permission{}
	err := s.db.QueryRow(`
		INSERT INTO permissions (name) VALUES ($1)
		RETURNING id, name, guard_name, created_at, updated_at`, name,
	).Scan(&p.ID, &p.Name, &p.GuardName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create permission: %w", err)
	}
	return p, nil
}

// Rename changes the permission's name.
func (s *PermissionStore) Rename(id uuid.UUID, name string) error {
	_, err := s.db.Exec(`UPDATE permissions SET name = $1, updated_at = now() WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("rename permission: %w", err)
	}
	return nil
}

// Delete removes a permission. Pivot rows cascade.
func (s *PermissionStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return nil
}
