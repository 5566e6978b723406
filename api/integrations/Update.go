package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// Update applies a partial update to an integration of the authenticated user.
//
//	@Summary      Update integration
//	@Description  Update name, configuration or sync interval of an integration. The scheduler registration follows the stored definition.
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        request body UpdateIntegrationRequest true "Fields to update"
//	@Success      200 {object} ListedIntegration "Updated integration"
//	@Failure      400 {string} string "Invalid request"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id}/update [post]
func (h *IntegrationsHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var data UpdateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	integration, err := h.Service.UpdateIntegration(integrationID, user.ID, data)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integration)
}
