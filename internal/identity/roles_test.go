package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRolesTest(t *testing.T) (*RolesStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRolesStore(db), mock
}

func roleRow(userID uuid.UUID, email, role string, protected bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "email", "role", "is_protected", "created_at"}).
		AddRow(userID, email, role, protected, time.Now())
}

func TestGetRoleMissingReturnsNil(t *testing.T) {
	store, mock := newRolesTest(t)

	mock.ExpectQuery("FROM user_roles WHERE user_id =").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "role", "is_protected", "created_at"}))

	role, err := store.GetRole(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, role)
}

// Deleting the protected super-admin must fail locally: no DELETE statement,
// and therefore no provider-side account deletion, is ever issued.
func TestDeleteAdminRoleRejectsProtected(t *testing.T) {
	store, mock := newRolesTest(t)

	mock.ExpectQuery("FROM user_roles WHERE email =").
		WithArgs("jdespoix@gmail.com").
		WillReturnRows(roleRow(uuid.New(), "jdespoix@gmail.com", RoleSuperAdmin, true))

	err := store.DeleteAdminRole(context.Background(), "jdespoix@gmail.com")
	assert.ErrorIs(t, err, ErrProtectedAdmin)
	assert.NoError(t, mock.ExpectationsWereMet(), "no DELETE may follow the guard")
}

func TestDeleteAdminRoleDeletesUnprotected(t *testing.T) {
	store, mock := newRolesTest(t)

	mock.ExpectQuery("FROM user_roles WHERE email =").
		WithArgs("other@mifmarket.fr").
		WillReturnRows(roleRow(uuid.New(), "other@mifmarket.fr", RoleAdmin, false))
	mock.ExpectExec("DELETE FROM user_roles WHERE email = (.+) AND is_protected = FALSE").
		WithArgs("other@mifmarket.fr").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteAdminRole(context.Background(), "other@mifmarket.fr"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAdminRoleUnknownEmail(t *testing.T) {
	store, mock := newRolesTest(t)

	mock.ExpectQuery("FROM user_roles WHERE email =").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "role", "is_protected", "created_at"}))

	err := store.DeleteAdminRole(context.Background(), "ghost@mifmarket.fr")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListAdminsExcludesProducers(t *testing.T) {
	store, mock := newRolesTest(t)

	rows := sqlmock.NewRows([]string{"user_id", "email", "role", "is_protected", "created_at"}).
		AddRow(uuid.New(), "jdespoix@gmail.com", RoleSuperAdmin, true, time.Now()).
		AddRow(uuid.New(), "staff@mifmarket.fr", RoleAdmin, false, time.Now())

	mock.ExpectQuery("FROM user_roles\\s+WHERE role IN").
		WithArgs(RoleAdmin, RoleSuperAdmin).
		WillReturnRows(rows)

	admins, err := store.ListAdmins(context.Background())
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.True(t, admins[0].IsProtected)
}

func TestIsAdminRole(t *testing.T) {
	assert.True(t, IsAdminRole(RoleAdmin))
	assert.True(t, IsAdminRole(RoleSuperAdmin))
	assert.False(t, IsAdminRole(RoleProducer))
	assert.False(t, IsAdminRole(""))
}
