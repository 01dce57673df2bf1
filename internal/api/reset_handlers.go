package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mifmarket/directory-api/internal/identity"
)

// Password-reset bridges. Both are external-facing JSON endpoints that
// forward to the identity provider's admin API. The direct-reset endpoint
// bypasses recovery-token verification, so it is gated behind a shared
// secret and disabled entirely when none is configured.

func (h *Handlers) checkResetSecret(w http.ResponseWriter, r *http.Request) bool {
	secret := h.cfg.Reset.Secret
	if secret == "" {
		respondError(w, http.StatusForbidden, "password reset bridge is disabled")
		return false
	}
	provided := r.Header.Get("X-Reset-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
		respondError(w, http.StatusForbidden, "invalid reset secret")
		return false
	}
	return true
}

// HandleAdminResetPassword sets a new password for the account matching an
// email, without a recovery token.
// POST {email, newPassword} -> {success} | {error}
func (h *Handlers) HandleAdminResetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.checkResetSecret(w, r) {
		return
	}

	var body struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" || body.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "email and new password are required")
		return
	}

	user, err := h.idp.AdminFindUserByEmail(r.Context(), body.Email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[reset] user lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.idp.AdminUpdateUserPassword(r.Context(), user.ID, body.NewPassword); err != nil {
		log.Printf("[reset] password update failed for %s: %v", body.Email, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "password updated",
	})
}

// HandleGenerateResetLink asks the provider for a recovery link and returns
// it verbatim; the link itself is the credential.
// POST {email, redirectTo?} -> {success, resetLink} | {error}
func (h *Handlers) HandleGenerateResetLink(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email      string `json:"email"`
		RedirectTo string `json:"redirectTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	link, err := h.idp.AdminGenerateRecoveryLink(r.Context(), body.Email, body.RedirectTo)
	if err != nil {
		log.Printf("[reset] recovery link generation failed for %s: %v", body.Email, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"resetLink": link,
	})
}
