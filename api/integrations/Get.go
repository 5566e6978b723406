package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// Get returns one integration of the authenticated user by ID.
//
//	@Summary      Get integration
//	@Description  Retrieve a single integration by its ID with masked configuration
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Success      200 {object} ListedIntegration "Integration details"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id} [get]
func (h *IntegrationsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	integration, err := h.Service.GetIntegration(integrationID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(integration)
}
