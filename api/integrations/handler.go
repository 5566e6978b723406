package integrations

import (
	"errors"
	"net/http"
	"strconv"
)

// IntegrationsHandler handles integration-related API requests
type IntegrationsHandler struct {
	Service *IntegrationService
}

// integrationIDFromPath parses the {id} path segment
func integrationIDFromPath(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.New("integration ID is required")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid integration ID")
	}
	return uint(id), nil
}

// respondServiceError maps service failures onto HTTP statuses without leaking
// whether a foreign integration exists
func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Integration not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
