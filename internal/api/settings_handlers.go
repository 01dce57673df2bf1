package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mifmarket/directory-api/internal/settings"
)

// HandleGetLogo returns the shared site logo URL. Served through the
// settings cache, so the header and footer share one database fetch.
func (h *Handlers) HandleGetLogo(w http.ResponseWriter, r *http.Request) {
	url, err := h.settings.LogoURL(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load logo")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"logo_url": url})
}

// HandleUpdateSetting upserts a site setting
func (h *Handlers) HandleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Key == "" {
		respondError(w, http.StatusBadRequest, "key is required")
		return
	}

	updatedBy := ""
	if user := userFromContext(r.Context()); user != nil {
		updatedBy = user.Email
	}

	if err := h.settings.Set(r.Context(), body.Key, body.Value, updatedBy); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update setting")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleGetSetting returns one setting by key
func (h *Handlers) HandleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		key = settings.KeyLogoURL
	}

	value, err := h.settings.Get(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load setting")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}
