// internal/handler/action_log_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/repository"
)

const defaultHistoryLimit = 50

// ActionLogHandler serves the stored action history of a campaign.
type ActionLogHandler struct {
	Repo repository.ActionLogRepositoryInterface
}

func NewActionLogHandler(repo repository.ActionLogRepositoryInterface) *ActionLogHandler {
	return &ActionLogHandler{Repo: repo}
}

// ListActionsHandler returns the most recent actions, newest first.
func (h *ActionLogHandler) ListActionsHandler(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		http.Error(w, "action log not configured", http.StatusServiceUnavailable)
		return
	}

	campaignID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}

	events, err := h.Repo.ListByCampaign(campaignID, limit)
	if err != nil {
		logger.WithField("campaign_id", campaignID).WithError(err).Error("Failed to list action log")
		http.Error(w, "failed to fetch action log: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": events,
	})
}
