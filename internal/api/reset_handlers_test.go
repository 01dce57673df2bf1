package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mifmarket/directory-api/internal/config"
	"github.com/mifmarket/directory-api/internal/identity"
)

// fakeIDP implements IdentityAPI for handler tests
type fakeIDP struct {
	users           map[string]*identity.User
	updateCalls     int
	lastUpdatedID   uuid.UUID
	lastPassword    string
	recoveryLink    string
	recoveryErr     error
	updateErr       error
	signInSession   *identity.Session
	signInErr       error
	getUserByToken  map[string]*identity.User
	signOutCalls    int
	deleteUserCalls int
}

func (f *fakeIDP) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.signInSession, nil
}

func (f *fakeIDP) SignOut(ctx context.Context, accessToken string) error {
	f.signOutCalls++
	return nil
}

func (f *fakeIDP) GetUser(ctx context.Context, accessToken string) (*identity.User, error) {
	if user, ok := f.getUserByToken[accessToken]; ok {
		return user, nil
	}
	return nil, errors.New("invalid token")
}

func (f *fakeIDP) AdminFindUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return nil, identity.ErrUserNotFound
}

func (f *fakeIDP) AdminUpdateUserPassword(ctx context.Context, userID uuid.UUID, password string) error {
	f.updateCalls++
	f.lastUpdatedID = userID
	f.lastPassword = password
	return f.updateErr
}

func (f *fakeIDP) AdminGenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	if f.recoveryErr != nil {
		return "", f.recoveryErr
	}
	return f.recoveryLink, nil
}

func (f *fakeIDP) AdminDeleteUser(ctx context.Context, userID uuid.UUID) error {
	f.deleteUserCalls++
	return nil
}

func newResetHandlers(secret string, idp *fakeIDP) *Handlers {
	cfg := &config.Config{}
	cfg.Reset.Secret = secret
	return &Handlers{cfg: cfg, idp: idp}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAdminResetPasswordHappyPath(t *testing.T) {
	userID := uuid.New()
	idp := &fakeIDP{users: map[string]*identity.User{
		"marie@ferme.fr": {ID: userID, Email: "marie@ferme.fr"},
	}}
	h := newResetHandlers("s3cret", idp)

	rec := postJSON(t, h.HandleAdminResetPassword,
		map[string]string{"email": "marie@ferme.fr", "newPassword": "newpass99"},
		map[string]string{"X-Reset-Secret": "s3cret"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, idp.updateCalls)
	assert.Equal(t, userID, idp.lastUpdatedID)
	assert.Equal(t, "newpass99", idp.lastPassword)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestAdminResetPasswordMissingFields(t *testing.T) {
	idp := &fakeIDP{}
	h := newResetHandlers("s3cret", idp)

	rec := postJSON(t, h.HandleAdminResetPassword,
		map[string]string{"email": "marie@ferme.fr"},
		map[string]string{"X-Reset-Secret": "s3cret"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, idp.updateCalls)
}

func TestAdminResetPasswordUnknownEmail(t *testing.T) {
	idp := &fakeIDP{users: map[string]*identity.User{}}
	h := newResetHandlers("s3cret", idp)

	rec := postJSON(t, h.HandleAdminResetPassword,
		map[string]string{"email": "ghost@ferme.fr", "newPassword": "newpass99"},
		map[string]string{"X-Reset-Secret": "s3cret"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminResetPasswordProviderError(t *testing.T) {
	idp := &fakeIDP{
		users:     map[string]*identity.User{"marie@ferme.fr": {ID: uuid.New()}},
		updateErr: errors.New("provider unavailable"),
	}
	h := newResetHandlers("s3cret", idp)

	rec := postJSON(t, h.HandleAdminResetPassword,
		map[string]string{"email": "marie@ferme.fr", "newPassword": "newpass99"},
		map[string]string{"X-Reset-Secret": "s3cret"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminResetPasswordRequiresSecret(t *testing.T) {
	idp := &fakeIDP{users: map[string]*identity.User{
		"marie@ferme.fr": {ID: uuid.New()},
	}}
	h := newResetHandlers("s3cret", idp)

	rec := postJSON(t, h.HandleAdminResetPassword,
		map[string]string{"email": "marie@ferme.fr", "newPassword": "newpass99"},
		map[string]string{"X-Reset-Secret": "wrong"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, idp.updateCalls)
}

func TestAdminResetPasswordDisabledWithoutSecret(t *testing.T) {
	idp := &fakeIDP{}
	h := newResetHandlers("", idp)

	rec := postJSON(t, h.HandleAdminResetPassword,
		map[string]string{"email": "marie@ferme.fr", "newPassword": "newpass99"}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateResetLink(t *testing.T) {
	idp := &fakeIDP{recoveryLink: "https://auth.mifmarket.fr/verify?token=abc"}
	h := newResetHandlers("", idp)

	rec := postJSON(t, h.HandleGenerateResetLink,
		map[string]string{"email": "marie@ferme.fr", "redirectTo": "https://mifmarket.fr/reset"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "https://auth.mifmarket.fr/verify?token=abc", resp["resetLink"])
}

func TestGenerateResetLinkMissingEmail(t *testing.T) {
	h := newResetHandlers("", &fakeIDP{})

	rec := postJSON(t, h.HandleGenerateResetLink, map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateResetLinkProviderError(t *testing.T) {
	idp := &fakeIDP{recoveryErr: errors.New("provider down")}
	h := newResetHandlers("", idp)

	rec := postJSON(t, h.HandleGenerateResetLink,
		map[string]string{"email": "marie@ferme.fr"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
