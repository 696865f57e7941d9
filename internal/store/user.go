// Package store provides database access methods for all back-office
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/models"
)

const userColumns = `
	id, name, email, password_hash, status, email_verified_at,
	avatar_path, totp_secret, totp_enabled, created_at, updated_at`

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Status, &u.EmailVerifiedAt,
		&u.AvatarPath, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by email address, roles attached.
// Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT`+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	if err := s.attachRoles(u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindByID retrieves a user by UUID, roles attached. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT`+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	if err := s.attachRoles(u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns users ordered by creation date with roles attached.
// limit <= 0 means no limit.
func (s *UserStore) List(limit, offset int) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users ORDER BY created_at ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Status, &u.EmailVerifiedAt,
			&u.AvatarPath, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		if err := s.attachRoles(&users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Count returns the total number of users.
func (s *UserStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts a new user with a bcrypt-hashed password and assigns the
// given roles.
func (s *UserStore) Create(name, email, password string, status models.UserStatus, roleIDs []uuid.UUID) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := scanUser(s.db.QueryRow(`
		INSERT INTO users (name, email, password_hash, status)
		VALUES ($1, $2, $3, $4)
		RETURNING`+userColumns,
		name, email, string(hash), status,
	))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.SyncRoles(u.ID, roleIDs); err != nil {
		return nil, err
	}
	if err := s.attachRoles(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update writes name, email, and status. Password is only changed when
// newPassword is non-empty.
func (s *UserStore) Update(id uuid.UUID, name, email string, status models.UserStatus, newPassword string) error {
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		_, err = s.db.Exec(`
			UPDATE users SET name = $1, email = $2, status = $3, password_hash = $4, updated_at = now()
			WHERE id = $5`,
			name, email, status, string(hash), id,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	}

	_, err := s.db.Exec(`
		UPDATE users SET name = $1, email = $2, status = $3, updated_at = now()
		WHERE id = $4`,
		name, email, status, id,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateStatus changes only the user's lifecycle status.
func (s *UserStore) UpdateStatus(id uuid.UUID, status models.UserStatus) error {
	_, err := s.db.Exec(`UPDATE users SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return nil
}

// MarkVerified stamps the user's email as verified right now.
// Idempotent: an already-verified user keeps the original timestamp.
func (s *UserStore) MarkVerified(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET email_verified_at = now(), updated_at = now()
		WHERE id = $1 AND email_verified_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	return nil
}

// Delete removes a user by ID. The role pivot rows cascade.
func (s *UserStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// SyncRoles replaces the user's role set with exactly the given role IDs.
func (s *UserStore) SyncRoles(userID uuid.UUID, roleIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sync roles begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("sync roles clear: %w", err)
	}
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(`
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, userID, roleID); err != nil {
			return fmt.Errorf("sync roles insert: %w", err)
		}
	}
	return tx.Commit()
}

// PermissionNames returns the union of permission names the user holds
// through all assigned roles, sorted and de-duplicated.
func (s *UserStore) PermissionNames(userID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("user permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// HasPermission reports whether the user holds the named permission
// through any of their roles.
func (s *UserStore) HasPermission(userID uuid.UUID, permission string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1
			FROM permissions p
			JOIN role_permissions rp ON rp.permission_id = p.id
			JOIN user_roles ur ON ur.role_id = rp.role_id
			WHERE ur.user_id = $1 AND p.name = $2
		)`, userID, permission).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return exists, nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`UPDATE users SET totp_secret = $1, updated_at = now() WHERE id = $2`, secret, userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE users SET totp_enabled = TRUE, updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// ResetTOTP clears the TOTP secret and disables 2FA for a user.
func (s *UserStore) ResetTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, updated_at = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// attachRoles populates u.Roles from the pivot table.
func (s *UserStore) attachRoles(u *models.User) error {
	rows, err := s.db.Query(`
		SELECT r.id, r.name, r.guard_name, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`, u.ID)
	if err != nil {
		return fmt.Errorf("user roles: %w", err)
	}
	defer rows.Close()

	u.Roles = nil
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.GuardName, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return fmt.Errorf("scan role: %w", err)
		}
		u.Roles = append(u.Roles, r)
	}
	return rows.Err()
}
