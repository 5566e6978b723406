package admin

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// SchedulerStatus returns the scheduler's registration snapshot.
//
//	@Summary      Get scheduler status
//	@Description  Retrieve whether the scheduler is running and which integration ids carry timers
//	@Tags         admin
//	@Produce      json
//	@Success      200 {object} scheduler.SchedulerStatus "Scheduler status"
//	@Failure      403 {string} string "User is not an admin"
//	@Router       /api/v1/admin/scheduler/status [get]
func (h *AdminHandler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	if !user.IsAdmin {
		http.Error(w, "User is not an admin", http.StatusForbidden)
		return
	}

	status := h.Scheduler.GetStatus()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
