package user

import (
	"encoding/json"
	"net/http"
	"time"

	"backend/database"
	"backend/server/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles user-related API requests
type UserHandler struct{}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	SessionID string    `json:"session_id"`
	Expiry    time.Time `json:"expiry"`
}

const sessionLifetime = 7 * 24 * time.Hour

// Login authenticates a user and creates a session.
//
//	@Summary      Login
//	@Description  Authenticate with email and password, receive a session token usable as cookie or bearer token
//	@Tags         user
//	@Accept       json
//	@Produce      json
//	@Param        request body UserLogin true "Login request"
//	@Success      200 {object} LoginResponse "Session token"
//	@Failure      401 {string} string "Invalid credentials"
//	@Router       /api/v1/user/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	DB, err := util.GetDB(r)
	if err != nil {
		http.Error(w, "Unable to get database", http.StatusBadRequest)
		return
	}

	var data UserLogin
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var user database.User
	q := DB.First(&user, "email = ?", data.Email)
	if q.Error != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(data.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	session := database.Session{
		UserId: user.ID,
		Token:  uuid.New().String(),
		Expiry: time.Now().Add(sessionLifetime),
	}
	if err := DB.Create(&session).Error; err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Expiry,
		HttpOnly: true,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		SessionID: session.Token,
		Expiry:    session.Expiry,
	})
}
