package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mifmarket/directory-api/internal/directory"
)

// HandleListDirectory returns the public directory. The visible set is
// fetched whole and filtered in memory; the directory holds hundreds of
// producers, not millions.
func (h *Handlers) HandleListDirectory(w http.ResponseWriter, r *http.Request) {
	producers, err := h.producers.ListVisible(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load directory")
		return
	}

	filter := directory.Filter{
		Search:   r.URL.Query().Get("search"),
		Region:   r.URL.Query().Get("region"),
		Category: r.URL.Query().Get("category"),
	}
	filtered := filter.Apply(producers)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"producers": filtered,
		"total":     len(filtered),
	})
}

// HandleDirectoryOptions returns the fixed region and category enumerations
func (h *Handlers) HandleDirectoryOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"regions":    directory.Regions,
		"categories": directory.ProductCategories,
	})
}

// HandleRegister runs producer self-registration
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input directory.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	producer, err := h.registration.Register(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrCharterNotAccepted),
			errors.Is(err, directory.ErrPasswordMismatch),
			errors.Is(err, directory.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, directory.ErrAlreadyRegistered):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, producer)
}

// HandleLogin signs an admin or producer in and returns the session with
// its role. A valid credential without a role row is rejected outright.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.idp.SignInWithPassword(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	role, err := h.roles.GetRole(r.Context(), session.User.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check role")
		return
	}
	if role == nil {
		// No role row means no access; drop the fresh session.
		_ = h.idp.SignOut(r.Context(), session.AccessToken)
		respondError(w, http.StatusForbidden, "account has no assigned role")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
		"role":    role.Role,
	})
}

// HandleLogout revokes the caller's session
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.idp.SignOut(r.Context(), token); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
