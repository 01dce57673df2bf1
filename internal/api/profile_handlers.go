package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mifmarket/directory-api/internal/directory"
)

// Producer self-service: a signed-in producer reads and edits the record tied
// to their own account. Visibility and blocking stay admin-only; the update
// path never touches those flags.

// HandleGetOwnProfile returns the producer record owned by the caller
func (h *Handlers) HandleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	producer, err := h.producers.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if producer == nil {
		respondError(w, http.StatusNotFound, "no producer profile for this account")
		return
	}
	respondJSON(w, http.StatusOK, producer)
}

// HandleUpdateOwnProfile rewrites the caller's own producer record. The row
// is resolved through the account, never from a client-supplied ID, so a
// producer cannot edit anyone else's record.
func (h *Handlers) HandleUpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	existing, err := h.producers.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "no producer profile for this account")
		return
	}

	var producer directory.Producer
	if err := json.NewDecoder(r.Body).Decode(&producer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	producer.ID = existing.ID
	producer.UserID = existing.UserID

	if err := h.producers.Update(r.Context(), &producer); err != nil {
		if errors.Is(err, directory.ErrDuplicateEmail) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, producer)
}
