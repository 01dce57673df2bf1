// Package api exposes the HTTP surface: the public directory and
// registration endpoints, the authenticated back office, and the two
// password-reset bridge functions.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mifmarket/directory-api/internal/campaign"
	"github.com/mifmarket/directory-api/internal/config"
	"github.com/mifmarket/directory-api/internal/directory"
	"github.com/mifmarket/directory-api/internal/identity"
	"github.com/mifmarket/directory-api/internal/settings"
)

// IdentityAPI is the subset of the identity client the handlers use
type IdentityAPI interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
	AdminFindUserByEmail(ctx context.Context, email string) (*identity.User, error)
	AdminUpdateUserPassword(ctx context.Context, userID uuid.UUID, password string) error
	AdminGenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
	AdminDeleteUser(ctx context.Context, userID uuid.UUID) error
}

// RoleStore is the subset of the roles store the handlers use
type RoleStore interface {
	GetRole(ctx context.Context, userID uuid.UUID) (*identity.Role, error)
	ListAdmins(ctx context.Context) ([]*identity.Role, error)
	CreateRole(ctx context.Context, role *identity.Role) error
	DeleteAdminRole(ctx context.Context, email string) error
}

// LogoUploader stores logo images and returns public URLs
type LogoUploader interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
}

// Handlers bundles every HTTP handler with its collaborators
type Handlers struct {
	cfg          *config.Config
	producers    *directory.Store
	registration *directory.RegistrationService
	importer     *directory.Importer
	campaigns    *campaign.Store
	materializer *campaign.Materializer
	renderer     *campaign.Renderer
	settings     *settings.Store
	roles        RoleStore
	idp          IdentityAPI
	logos        LogoUploader
}

// NewHandlers creates the handler set
func NewHandlers(
	cfg *config.Config,
	producers *directory.Store,
	registration *directory.RegistrationService,
	importer *directory.Importer,
	campaigns *campaign.Store,
	materializer *campaign.Materializer,
	settingsStore *settings.Store,
	roles RoleStore,
	idp IdentityAPI,
	logos LogoUploader,
) *Handlers {
	return &Handlers{
		cfg:          cfg,
		producers:    producers,
		registration: registration,
		importer:     importer,
		campaigns:    campaigns,
		materializer: materializer,
		renderer:     campaign.NewRenderer(),
		settings:     settingsStore,
		roles:        roles,
		idp:          idp,
		logos:        logos,
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck reports liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
