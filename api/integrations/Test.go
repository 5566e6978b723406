package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// Test runs a live connection check against the provider.
//
//	@Summary      Test integration connection
//	@Description  Run the provider's read-only connection check. The integration status moves to connected or error depending on the result.
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Success      200 {object} TestResult "Connection check result"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id}/test [post]
func (h *IntegrationsHandler) Test(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.Service.TestConnection(integrationID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
