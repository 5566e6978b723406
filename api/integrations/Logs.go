package integrations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"backend/server/util"
)

// Logs returns the newest audit rows of one integration.
//
//	@Summary      Get integration logs
//	@Description  Retrieve the audit trail of one integration, newest first
//	@Tags         integrations
//	@Produce      json
//	@Param        id path int true "Integration ID"
//	@Param        limit query int false "Maximum number of rows" default(50)
//	@Success      200 {array} database.IntegrationLog "Audit rows"
//	@Failure      404 {string} string "Integration not found"
//	@Router       /api/v1/integrations/{id}/logs [get]
func (h *IntegrationsHandler) Logs(w http.ResponseWriter, r *http.Request) {
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

	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.Service.GetLogs(integrationID, user.ID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logs": logs,
	})
}
