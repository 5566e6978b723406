package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// SyncRequest carries optional hints for a manual sync
type SyncRequest struct {
	Direction string `json:"direction"`
}

// Sync triggers a manual sync of an integration.
//
//	@Summary      Sync integration
//	@Description  Run a data sync now. If a sync is already in flight the call returns a skipped outcome instead of starting a second one.
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        request body SyncRequest false "Sync options"
//	@Success      200 {object} SyncOutcome "Sync outcome"
//	@Failure      400 {string} string "Integration type does not support sync"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id}/sync [post]
func (h *IntegrationsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	integrationID, err := integrationIDFromPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var data SyncRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&data)
	}

	outcome, err := h.Service.SyncIntegration(integrationID, user.ID, SyncOptions{
		Direction: data.Direction,
		Scheduled: false,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}
