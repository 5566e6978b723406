package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// List returns all integrations of the authenticated user.
//
//	@Summary      Get user integrations
//	@Description  Retrieve all integrations of the authenticated user with masked configuration
//	@Tags         integrations
//	@Produce      json
//	@Success      200 {array} ListedIntegration "List of integrations"
//	@Failure      400 {string} string "Unable to get database or user"
//	@Failure      500 {string} string "Internal server error"
//	@Router       /api/v1/integrations/list [get]
func (h *IntegrationsHandler) List(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	integrations, err := h.Service.ListUserIntegrations(user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"integrations": integrations,
	})
}
