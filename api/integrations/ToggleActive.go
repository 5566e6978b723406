package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

type ToggleActiveRequest struct {
	Active bool `json:"active"`
}

// ToggleActive activates or deactivates an integration by ID for the
// authenticated user. A deactivated integration is excluded from both the
// scheduler and event fan-out.
//
//	@Summary      Toggle integration active status
//	@Description  Activate or deactivate an integration by its ID for the authenticated user
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        request body ToggleActiveRequest true "Toggle request"
//	@Success      200 {object} ListedIntegration "Updated integration details"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id}/toggle-active [post]
func (h *IntegrationsHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
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

	var req ToggleActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	integration, err := h.Service.ToggleIntegration(integrationID, user.ID, req.Active)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integration)
}
