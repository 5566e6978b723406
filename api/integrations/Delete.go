package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// Delete removes an integration of the authenticated user together with its
// audit logs and any scheduler registration.
//
//	@Summary      Delete integration
//	@Description  Delete an integration by its ID, cascading its logs and cancelling its timer
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Success      200 {object} map[string]string "Deletion confirmation"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id} [delete]
func (h *IntegrationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Service.DeleteIntegration(integrationID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "integration deleted successfully",
	})
}
