package admin

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

type ForceSyncRequest struct {
	UserID *uint `json:"user_id"`
}

// ForceSync runs a sync for every registered integration, optionally scoped to
// one user.
//
//	@Summary      Force sync all registered integrations
//	@Description  Synchronously run a sync for every integration with an active timer. With a user_id, ownership is re-verified per integration and foreign ids are skipped.
//	@Tags         admin
//	@Accept       json
//	@Produce      json
//	@Param        request body ForceSyncRequest false "Optional user scope"
//	@Success      200 {object} map[string]int "Number of syncs attempted"
//	@Failure      403 {string} string "User is not an admin"
//	@Router       /api/v1/admin/scheduler/force-sync [post]
func (h *AdminHandler) ForceSync(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	if !user.IsAdmin {
		http.Error(w, "User is not an admin", http.StatusForbidden)
		return
	}

	var data ForceSyncRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&data)
	}

	attempted := h.Scheduler.ForceSyncAll(data.UserID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"attempted": attempted,
	})
}
