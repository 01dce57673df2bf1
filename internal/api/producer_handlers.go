package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/mifmarket/directory-api/internal/directory"
	"github.com/mifmarket/directory-api/internal/storage"
)

// Admin producer management: direct form-to-table CRUD plus the visibility
// and blocked toggles.

// HandleAdminListProducers returns every producer, newest first
func (h *Handlers) HandleAdminListProducers(w http.ResponseWriter, r *http.Request) {
	producers, err := h.producers.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load producers")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"producers": producers,
		"total":     len(producers),
	})
}

// HandleAdminCreateProducer inserts a producer record
func (h *Handlers) HandleAdminCreateProducer(w http.ResponseWriter, r *http.Request) {
	var producer directory.Producer
	if err := json.NewDecoder(r.Body).Decode(&producer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	producer.IsVisible = true
	if err := h.producers.Create(r.Context(), &producer); err != nil {
		if errors.Is(err, directory.ErrDuplicateEmail) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create producer")
		return
	}
	respondJSON(w, http.StatusCreated, producer)
}

// HandleAdminUpdateProducer rewrites a producer by ID
func (h *Handlers) HandleAdminUpdateProducer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "producerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid producer ID")
		return
	}

	var producer directory.Producer
	if err := json.NewDecoder(r.Body).Decode(&producer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	producer.ID = id

	if err := h.producers.Update(r.Context(), &producer); err != nil {
		if errors.Is(err, directory.ErrDuplicateEmail) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update producer")
		return
	}
	respondJSON(w, http.StatusOK, producer)
}

// HandleAdminDeleteProducer removes a producer unconditionally
func (h *Handlers) HandleAdminDeleteProducer(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "producerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid producer ID")
		return
	}
	if err := h.producers.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete producer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleAdminToggleVisibility flips the public visibility flag
func (h *Handlers) HandleAdminToggleVisibility(w http.ResponseWriter, r *http.Request) {
	h.toggleFlag(w, r, h.producers.SetVisibility)
}

// HandleAdminToggleBlocked flips the blocked flag
func (h *Handlers) HandleAdminToggleBlocked(w http.ResponseWriter, r *http.Request) {
	h.toggleFlag(w, r, h.producers.SetBlocked)
}

func (h *Handlers) toggleFlag(w http.ResponseWriter, r *http.Request,
	set func(ctx context.Context, id uuid.UUID, value bool) error) {
	id, err := parseIDParam(r, "producerId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid producer ID")
		return
	}

	var body struct {
		Value bool `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := set(r.Context(), id, body.Value); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update producer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleUploadLogo validates and stores a producer logo, returning its
// public URL. Size and image format are re-checked server-side.
func (h *Handlers) HandleUploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(storage.MaxLogoSize + 1024); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxLogoSize+1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	key := "logos/" + uuid.New().String() + path.Ext(header.Filename)
	url, err := h.logos.Upload(r.Context(), key, data)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrLogoTooLarge), errors.Is(err, storage.ErrNotAnImage):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to store logo")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
