package admin

import (
	"backend/api/integrations"
	"backend/scheduler"
)

// AdminHandler handles admin-only API requests for the scheduler and event
// fan-out
type AdminHandler struct {
	Service   *integrations.IntegrationService
	Scheduler *scheduler.IntegrationScheduler
}
