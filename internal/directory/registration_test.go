package directory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mifmarket/directory-api/internal/identity"
)

// fakeIdentity counts provider calls so tests can assert that local
// validation failures never reach the network.
type fakeIdentity struct {
	signUpCalls     int
	signOutCalls    int
	deleteCalls     int
	signUpErr       error
	signUpUserID    uuid.UUID
	deletedUserIDs  []uuid.UUID
	roleInsertCalls int
	roleInsertErr   error
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	f.signUpCalls++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &identity.Session{
		AccessToken: "token-123",
		User:        identity.User{ID: f.signUpUserID, Email: email},
	}, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context, accessToken string) error {
	f.signOutCalls++
	return nil
}

func (f *fakeIdentity) AdminDeleteUser(ctx context.Context, userID uuid.UUID) error {
	f.deleteCalls++
	f.deletedUserIDs = append(f.deletedUserIDs, userID)
	return nil
}

func (f *fakeIdentity) CreateProducerRoleTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, email string) error {
	f.roleInsertCalls++
	return f.roleInsertErr
}

func validInput() *RegistrationInput {
	return &RegistrationInput{
		CompanyName:     "Ferme des Trois Chênes",
		ContactName:     "Marie Dupont",
		Email:           "marie@ferme3chenes.fr",
		Password:        "secret99",
		PasswordConfirm: "secret99",
		Region:          "Bretagne",
		Categories:      []string{"Fruits et Légumes"},
		CharterAccepted: true,
	}
}

func newRegistrationTest(t *testing.T) (*RegistrationService, sqlmock.Sqlmock, *fakeIdentity) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	idp := &fakeIdentity{signUpUserID: uuid.New()}
	svc := NewRegistrationService(NewStore(db), idp, idp)
	return svc, mock, idp
}

func TestRegisterRejectsWithoutCharter(t *testing.T) {
	svc, _, idp := newRegistrationTest(t)

	in := validInput()
	in.CharterAccepted = false

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrCharterNotAccepted)
	assert.Zero(t, idp.signUpCalls, "validation failure must not reach the provider")
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	svc, _, idp := newRegistrationTest(t)

	in := validInput()
	in.PasswordConfirm = "different"

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Zero(t, idp.signUpCalls)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, idp := newRegistrationTest(t)

	in := validInput()
	in.Password = "abc"
	in.PasswordConfirm = "abc"

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Zero(t, idp.signUpCalls)
}

func TestRegisterHappyPath(t *testing.T) {
	svc, mock, idp := newRegistrationTest(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO producers").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	producer, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 1, idp.signUpCalls)
	assert.Equal(t, 1, idp.roleInsertCalls)
	assert.Equal(t, 1, idp.signOutCalls, "registration must sign the new session out")
	assert.Zero(t, idp.deleteCalls)

	assert.True(t, producer.IsVisible, "new producers default to visible")
	assert.Equal(t, idp.signUpUserID, *producer.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterTranslatesDuplicateEmail(t *testing.T) {
	svc, _, idp := newRegistrationTest(t)
	idp.signUpErr = identity.ErrUserAlreadyExists

	_, err := svc.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterCompensatesOrphanedIdentity(t *testing.T) {
	svc, mock, idp := newRegistrationTest(t)
	idp.roleInsertErr = errors.New("role insert failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), validInput())
	require.Error(t, err)

	assert.Equal(t, 1, idp.deleteCalls, "orphaned identity must be deleted")
	assert.Equal(t, []uuid.UUID{idp.signUpUserID}, idp.deletedUserIDs)
	assert.Zero(t, idp.signOutCalls)
}
