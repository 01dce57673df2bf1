package api

import (
	"encoding/json"
	"net/http"

	"github.com/mifmarket/directory-api/internal/campaign"
)

// HandleListTemplates returns all email templates
func (h *Handlers) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.campaigns.ListTemplates(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"total":     len(templates),
	})
}

// HandleCreateTemplate inserts a template
func (h *Handlers) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl campaign.EmailTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if tpl.Name == "" || tpl.Subject == "" {
		respondError(w, http.StatusBadRequest, "name and subject are required")
		return
	}

	if err := h.campaigns.CreateTemplate(r.Context(), &tpl); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}

// HandleUpdateTemplate rewrites a template by ID
func (h *Handlers) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "templateId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template ID")
		return
	}

	var tpl campaign.EmailTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tpl.ID = id

	if err := h.campaigns.UpdateTemplate(r.Context(), &tpl); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update template")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

// HandleDeleteTemplate removes a template by ID
func (h *Handlers) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "templateId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template ID")
		return
	}
	if err := h.campaigns.DeleteTemplate(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandlePreviewTemplate renders a template against caller-provided variables
func (h *Handlers) HandlePreviewTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "templateId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template ID")
		return
	}

	tpl, err := h.campaigns.GetTemplate(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load template")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}

	var vars map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&vars); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.renderer.Render(tpl, vars)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}
