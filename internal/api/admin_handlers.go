package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mifmarket/directory-api/internal/identity"
)

// Admin account management. All routes here sit behind RequireSuperAdmin.

// HandleListAdmins returns every admin role row
func (h *Handlers) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.roles.ListAdmins(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load admins")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"admins": admins,
		"total":  len(admins),
	})
}

// HandleCreateAdmin grants the admin role to an existing identity account
func (h *Handlers) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.idp.AdminFindUserByEmail(r.Context(), body.Email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "no account exists for this email")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to look up account")
		return
	}

	role := &identity.Role{UserID: user.ID, Email: user.Email, Role: identity.RoleAdmin}
	if err := h.roles.CreateRole(r.Context(), role); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to grant admin role")
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

// HandleDeleteAdmin revokes an admin role. The protected super-admin row is
// rejected by the store before anything reaches the identity provider.
func (h *Handlers) HandleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.roles.DeleteAdminRole(r.Context(), email); err != nil {
		if errors.Is(err, identity.ErrProtectedAdmin) {
			respondError(w, http.StatusForbidden, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete admin")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
