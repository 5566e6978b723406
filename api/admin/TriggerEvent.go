package admin

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

type TriggerEventRequest struct {
	Event  string                 `json:"event"`
	Data   map[string]interface{} `json:"data"`
	UserID *uint                  `json:"user_id"`
}

// TriggerEvent fans a platform event out to subscribed notification
// integrations. Other platform components call the service directly; this
// endpoint exists for operational use and testing.
//
//	@Summary      Trigger platform event
//	@Description  Deliver an event to every subscribed, connected notification integration, optionally scoped to one user
//	@Tags         admin
//	@Accept       json
//	@Produce      json
//	@Param        request body TriggerEventRequest true "Event to deliver"
//	@Success      200 {object} map[string]string "Delivery started"
//	@Failure      403 {string} string "User is not an admin"
//	@Router       /api/v1/admin/events/trigger [post]
func (h *AdminHandler) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	if !user.IsAdmin {
		http.Error(w, "User is not an admin", http.StatusForbidden)
		return
	}

	var data TriggerEventRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if data.Event == "" {
		http.Error(w, "Event name is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.TriggerEvent(data.Event, data.Data, data.UserID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "event delivered to subscribed integrations",
	})
}
