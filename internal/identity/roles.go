package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProtectedAdmin is returned when a delete targets the protected
// super-admin row. The guard runs before any identity-provider call so a
// rejected delete never reaches the network.
var ErrProtectedAdmin = errors.New("the protected super admin account cannot be deleted")

// RolesStore provides database operations over user_roles
type RolesStore struct {
	db *sql.DB
}

// NewRolesStore creates a new roles store
func NewRolesStore(db *sql.DB) *RolesStore {
	return &RolesStore{db: db}
}

// GetRole returns the role row for an account, or nil when none exists
func (s *RolesStore) GetRole(ctx context.Context, userID uuid.UUID) (*Role, error) {
	query := `SELECT user_id, email, role, is_protected, created_at FROM user_roles WHERE user_id = $1`

	role := &Role{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&role.UserID, &role.Email, &role.Role, &role.IsProtected, &role.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

// GetRoleByEmail returns the role row for an email, or nil when none exists
func (s *RolesStore) GetRoleByEmail(ctx context.Context, email string) (*Role, error) {
	query := `SELECT user_id, email, role, is_protected, created_at FROM user_roles WHERE email = $1`

	role := &Role{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&role.UserID, &role.Email, &role.Role, &role.IsProtected, &role.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

// ListAdmins returns every admin and super-admin role row
func (s *RolesStore) ListAdmins(ctx context.Context) ([]*Role, error) {
	query := `SELECT user_id, email, role, is_protected, created_at FROM user_roles
		WHERE role IN ($1, $2) ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, RoleAdmin, RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*Role
	for rows.Next() {
		role := &Role{}
		if err := rows.Scan(&role.UserID, &role.Email, &role.Role, &role.IsProtected, &role.CreatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, role)
	}
	return admins, rows.Err()
}

// CreateRole inserts a role row
func (s *RolesStore) CreateRole(ctx context.Context, role *Role) error {
	role.CreatedAt = time.Now()

	query := `INSERT INTO user_roles (user_id, email, role, is_protected, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, role.UserID, role.Email, role.Role,
		role.IsProtected, role.CreatedAt)
	return err
}

// CreateProducerRoleTx inserts a "producer" role row inside an existing
// transaction, so registration commits the role and the producer atomically.
func (s *RolesStore) CreateProducerRoleTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, email string) error {
	query := `INSERT INTO user_roles (user_id, email, role, is_protected, created_at)
		VALUES ($1, $2, $3, FALSE, $4)`

	_, err := tx.ExecContext(ctx, query, userID, email, RoleProducer, time.Now())
	return err
}

// DeleteAdminRole removes an admin role row. The protected super-admin row is
// rejected here, before any provider-side account deletion can happen.
func (s *RolesStore) DeleteAdminRole(ctx context.Context, email string) error {
	role, err := s.GetRoleByEmail(ctx, email)
	if err != nil {
		return err
	}
	if role == nil {
		return sql.ErrNoRows
	}
	if role.IsProtected {
		return ErrProtectedAdmin
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE email = $1 AND is_protected = FALSE`, email)
	return err
}

// IsAdminRole reports whether a role string grants back-office access
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
