package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedPermissions is the initial permission set, one "<verb> <resource>"
// name per admin capability.
var seedPermissions = []string{
	"access admin dashboard",
	"manage users",
	"view users",
	"create users",
	"edit users",
	"delete users",
	"approve users",
	"reject users",
	"block users",
	"manage roles",
	"view roles",
	"create roles",
	"edit roles",
	"delete roles",
	"manage permissions",
	"view permissions",
	"create permissions",
	"edit permissions",
	"delete permissions",
	"manage settings",
}

// Seed populates the database with the initial permission set, the system
// roles, and a default admin user. It is a no-op once any user exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, name := range seedPermissions {
		if _, err := tx.Exec(`
			INSERT INTO permissions (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name); err != nil {
			return fmt.Errorf("seed permission %q: %w", name, err)
		}
	}

	// System roles. admin and super-admin are protected from deletion and
	// receive every permission; the plain user role gets none.
	for _, role := range []string{"admin", "super-admin", "user"} {
		if _, err := tx.Exec(`
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, role); err != nil {
			return fmt.Errorf("seed role %q: %w", role, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT r.id, p.id FROM roles r CROSS JOIN permissions p
		WHERE r.name IN ('admin', 'super-admin')
		ON CONFLICT DO NOTHING
	`); err != nil {
		return fmt.Errorf("seed role permissions: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	if err := tx.QueryRow(`
		INSERT INTO users (name, email, password_hash, status, email_verified_at)
		VALUES ($1, $2, $3, 'active', now())
		RETURNING id
	`, "Admin", "admin@admin.com", string(hash)).Scan(&adminID); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = 'admin'
	`, adminID); err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@admin.com",
		"password", "password",
	)

	return nil
}
