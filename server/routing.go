package server

import (
	"net/http"

	"backend/api/admin"
	"backend/api/integrations"
	"backend/api/user"
	"backend/scheduler"

	"gorm.io/gorm"
)

func BackendRouting(
	DB *gorm.DB,
	service *integrations.IntegrationService,
	integrationScheduler *scheduler.IntegrationScheduler,
) *http.ServeMux {
	mux := http.NewServeMux()
	v1PrivateApis := http.NewServeMux()

	userHandler := &user.UserHandler{}
	integrationsHandler := &integrations.IntegrationsHandler{Service: service}
	adminHandler := &admin.AdminHandler{Service: service, Scheduler: integrationScheduler}

	v1PrivateApis.HandleFunc("GET /integrations/types", integrationsHandler.ListTypes)
	v1PrivateApis.HandleFunc("GET /integrations/list", integrationsHandler.List)
	v1PrivateApis.HandleFunc("POST /integrations/create", integrationsHandler.Create)
	v1PrivateApis.HandleFunc("GET /integrations/{id}", integrationsHandler.Get)
	v1PrivateApis.HandleFunc("POST /integrations/{id}/update", integrationsHandler.Update)
	v1PrivateApis.HandleFunc("DELETE /integrations/{id}", integrationsHandler.Delete)
	v1PrivateApis.HandleFunc("POST /integrations/{id}/test", integrationsHandler.Test)
	v1PrivateApis.HandleFunc("POST /integrations/{id}/sync", integrationsHandler.Sync)
	v1PrivateApis.HandleFunc("POST /integrations/{id}/toggle-active", integrationsHandler.ToggleActive)
	v1PrivateApis.HandleFunc("GET /integrations/{id}/logs", integrationsHandler.Logs)

	v1PrivateApis.HandleFunc("GET /user/self", userHandler.Self)

	v1PrivateApis.HandleFunc("GET /admin/scheduler/status", adminHandler.SchedulerStatus)
	v1PrivateApis.HandleFunc("POST /admin/scheduler/force-sync", adminHandler.ForceSync)
	v1PrivateApis.HandleFunc("POST /admin/events/trigger", adminHandler.TriggerEvent)

	mux.Handle("POST /api/v1/user/login", DBMiddleware(DB)(http.HandlerFunc(userHandler.Login)))
	mux.Handle("POST /api/v1/user/register", DBMiddleware(DB)(http.HandlerFunc(userHandler.Register)))
	mux.HandleFunc("GET /api/v1/version", VersionHandler)
	mux.HandleFunc("GET /_health", func(w http.ResponseWriter, r *http.Request) {
		if ServerStatus != "running" {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Server is not running, status: " + ServerStatus))
		} else {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Server is running"))
		}
	})
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", Logging(AuthMiddleware(DB)(v1PrivateApis))))

	return mux
}
