package integrations

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// CreateIntegrationResponse represents the response for creating a new integration
type CreateIntegrationResponse struct {
	Message     string            `json:"message"`
	Integration ListedIntegration `json:"integration"`
}

// Create handles the creation of new integrations.
//
//	@Summary      Create integration
//	@Description  Create a new integration for the authenticated user. The type must be one of the registered integration types; the new integration starts in status pending.
//	@Tags         integrations
//	@Accept       json
//	@Produce      json
//	@Param        request body CreateIntegrationRequest true "Integration creation request"
//	@Success      201 {object} CreateIntegrationResponse "Integration created successfully"
//	@Failure      400 {string} string "Invalid request or missing required fields"
//	@Router       /api/v1/integrations/create [post]
func (h *IntegrationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	var data CreateIntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	integration, err := h.Service.CreateIntegration(user.ID, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateIntegrationResponse{
		Message:     "integration created successfully",
		Integration: *integration,
	})
}
