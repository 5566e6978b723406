package user

import (
	"encoding/json"
	"net/http"

	"backend/database"
	"backend/server/util"
)

type UserRegister struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user account.
//
//	@Summary      Register user
//	@Description  Create a new user account with a bcrypt-hashed password
//	@Tags         user
//	@Accept       json
//	@Produce      json
//	@Param        request body UserRegister true "Registration request"
//	@Success      201 {object} database.User "Created user"
//	@Failure      400 {string} string "Invalid request"
//	@Router       /api/v1/user/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	var data UserRegister
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if data.Name == "" || data.Email == "" {
		http.Error(w, "Name and email are required", http.StatusBadRequest)
		return
	}

	if len(data.Password) < 8 || len(data.Password) > 72 {
		http.Error(w, "Password must be between 8 and 72 characters", http.StatusBadRequest)
		return
	}

	user, err := database.RegisterUser(DB, data.Name, data.Email, []byte(data.Password))
	if err != nil {
		http.Error(w, "Failed to register user", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}
