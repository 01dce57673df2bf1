package api

import "net/http"

// HandleAdminStats returns the back-office dashboard counters
func (h *Handlers) HandleAdminStats(w http.ResponseWriter, r *http.Request) {
	total, visible, err := h.producers.CountProducers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count producers")
		return
	}

	campaignCount, err := h.campaigns.CountCampaigns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count campaigns")
		return
	}

	templateCount, err := h.campaigns.CountTemplates(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count templates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"producers": map[string]int{
			"total":   total,
			"visible": visible,
		},
		"campaigns": campaignCount,
		"templates": templateCount,
	})
}
