package user

import (
	"encoding/json"
	"net/http"

	"backend/server/util"
)

// Self returns the authenticated user.
//
//	@Summary      Get own user
//	@Description  Retrieve the authenticated user's profile
//	@Tags         user
//	@Produce      json
//	@Success      200 {object} database.User "User profile"
//	@Failure      400 {string} string "Unable to get database or user"
//	@Router       /api/v1/user/self [get]
func (h *UserHandler) Self(w http.ResponseWriter, r *http.Request) {
	_, user, err := util.GetDBAndUser(r)
	if err != nil {
		http.Error(w, "Unable to get database or user", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
