package integrations

import (
	"encoding/json"
	"net/http"
)

// ListTypes returns the fixed enumeration of available integration types.
//
//	@Summary      List available integration types
//	@Description  Retrieve the catalog of integration types that can be attached to an account
//	@Tags         integrations
//	@Produce      json
//	@Success      200 {array} IntegrationType "Available types"
//	@Router       /api/v1/integrations/types [get]
func (h *IntegrationsHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types := h.Service.ListAvailableTypes()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"types": types,
	})
}
