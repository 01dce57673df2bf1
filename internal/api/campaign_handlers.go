package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mifmarket/directory-api/internal/campaign"
)

// HandleListCampaigns returns all campaigns with resolved template names
func (h *Handlers) HandleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.ListCampaigns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load campaigns")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaigns": campaigns,
		"total":     len(campaigns),
	})
}

// HandleCreateCampaign materializes a campaign from the selected producers
func (h *Handlers) HandleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.materializer.Create(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrNoProducersSelected),
			errors.Is(err, campaign.ErrNoTemplateSelected),
			errors.Is(err, campaign.ErrScheduledAtRequired),
			errors.Is(err, campaign.ErrTemplateNotFound):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to create campaign")
		}
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// HandleGetCampaign returns one campaign with its materialized recipients
func (h *Handlers) HandleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "campaignId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	c, err := h.campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}

	recipients, err := h.campaigns.ListRecipients(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load recipients")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaign":   c,
		"recipients": recipients,
	})
}

// HandlePreviewRecipient renders the campaign template against one
// recipient's snapshot, so the admin sees the exact personalization that
// recipient would get.
func (h *Handlers) HandlePreviewRecipient(w http.ResponseWriter, r *http.Request) {
	campaignID, err := parseIDParam(r, "campaignId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}
	recipientID, err := parseIDParam(r, "recipientId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid recipient ID")
		return
	}

	c, err := h.campaigns.GetCampaign(r.Context(), campaignID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load campaign")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}

	tpl, err := h.campaigns.GetTemplate(r.Context(), c.TemplateID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load template")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "campaign template no longer exists")
		return
	}

	recipients, err := h.campaigns.ListRecipients(r.Context(), campaignID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load recipients")
		return
	}

	var recipient *campaign.Recipient
	for _, candidate := range recipients {
		if candidate.ID == recipientID {
			recipient = candidate
			break
		}
	}
	if recipient == nil {
		respondError(w, http.StatusNotFound, "recipient not found in this campaign")
		return
	}

	result, err := h.renderer.RenderForRecipient(tpl, recipient)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleDeleteCampaign removes a campaign and its recipients
func (h *Handlers) HandleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "campaignId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}
	if err := h.campaigns.DeleteCampaign(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleListRecipients returns the materialized recipients of a campaign
func (h *Handlers) HandleListRecipients(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "campaignId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign ID")
		return
	}

	recipients, err := h.campaigns.ListRecipients(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load recipients")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recipients": recipients,
		"total":      len(recipients),
	})
}
