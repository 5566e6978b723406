package server

import (
	"fmt"
	"log"
	"net/http"

	"backend/api/integrations"
	"backend/database"
	"backend/scheduler"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ServerStatus string = "unknown"

// CreateUser creates a user if it does not exist yet. Used to bootstrap the
// admin account at startup.
func CreateUser(
	DB *gorm.DB,
	username string,
	email string,
	password string,
	isAdminUser bool,
) (*database.User, error) {
	var user database.User
	q := DB.First(&user, "email = ?", email)

	if q.Error == nil {
		log.Printf("User %s already exists", email)
		return &user, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user = database.User{
		Name:         username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdminUser,
	}

	if q := DB.Create(&user); q.Error != nil {
		return nil, fmt.Errorf("error writing user to db: %v", q.Error)
	}

	return &user, nil
}

func CreateRootUser(DB *gorm.DB, username string, password string) (*database.User, error) {
	return CreateUser(DB, username, username, password, true)
}

// BackendServer wires the routing onto an http.Server
func BackendServer(
	DB *gorm.DB,
	service *integrations.IntegrationService,
	integrationScheduler *scheduler.IntegrationScheduler,
	host string,
	port int64,
) (*http.Server, string) {
	mux := BackendRouting(DB, service, integrationScheduler)

	fullHost := fmt.Sprintf("%s:%d", host, port)
	server := &http.Server{
		Addr:    fullHost,
		Handler: mux,
	}

	ServerStatus = "running"
	return server, fullHost
}
