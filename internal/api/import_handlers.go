package api

import (
	"errors"
	"net/http"

	"github.com/mifmarket/directory-api/internal/directory"
)

const maxImportSize = 20 * 1024 * 1024

// HandleImportPreview parses the first rows of an uploaded CSV without
// writing anything, so the admin can check the column mapping.
func (h *Handlers) HandleImportPreview(w http.ResponseWriter, r *http.Request) {
	file, _, err := h.importFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	preview, err := h.importer.Preview(file)
	if err != nil {
		h.respondImportError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"preview": preview})
}

// HandleImport runs a full CSV import and records the attempt
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	file, filename, err := h.importFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	result, err := h.importer.Import(r.Context(), filename, file)
	if err != nil {
		h.respondImportError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleImportHistory returns the ten most recent import attempts
func (h *Handlers) HandleImportHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.producers.ListImportHistory(r.Context(), 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load import history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}

func (h *Handlers) importFile(w http.ResponseWriter, r *http.Request) (multipartFile, string, error) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "CSV file is required")
		return nil, "", err
	}
	return file, header.Filename, nil
}

type multipartFile interface {
	Read(p []byte) (int, error)
	Close() error
}

func (h *Handlers) respondImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrEmptyFile), errors.Is(err, directory.ErrNoHeaders):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "import failed")
	}
}
