package integrations

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/database"

	"gorm.io/gorm"
)

// ErrNotFound covers both missing and foreign integrations. Ownership failures
// deliberately look identical to missing rows so ids cannot be probed.
var ErrNotFound = errors.New("integration not found")

const defaultEventDelay = 100 * time.Millisecond

// ScheduleNotifier is how the service keeps the scheduler's in-memory timer map
// consistent on every relevant CRUD mutation. The store stays authoritative, the
// notifier only maintains the process-local cache.
type ScheduleNotifier interface {
	RegisterIntegration(integration database.Integration)
	UnregisterIntegration(integrationID uint)
	UpdateSchedule(integrationID uint, newInterval *int)
}

// IntegrationService owns the integration lifecycle, the sync-lock protocol and
// event fan-out
type IntegrationService struct {
	DB *gorm.DB

	// EventDelay paces fan-out deliveries to bound load on third-party rate
	// limits. Tests set it to zero.
	EventDelay time.Duration

	schedule ScheduleNotifier
}

func NewIntegrationService(DB *gorm.DB) *IntegrationService {
	return &IntegrationService{
		DB:         DB,
		EventDelay: defaultEventDelay,
	}
}

// BindScheduler attaches the scheduler. Must be called before serving traffic;
// a nil notifier is tolerated so the service works standalone in tests.
func (s *IntegrationService) BindScheduler(notifier ScheduleNotifier) {
	s.schedule = notifier
}

// ListedIntegration is the outward representation of an integration. Config is
// always the masked variant.
type ListedIntegration struct {
	ID              uint                   `json:"id"`
	UUID            string                 `json:"uuid"`
	Name            string                 `json:"name"`
	IntegrationType string                 `json:"integration_type"`
	Category        string                 `json:"category"`
	Status          string                 `json:"status"`
	Active          bool                   `json:"is_active"`
	SyncInterval    *int                   `json:"sync_interval"`
	LastSyncAt      *time.Time             `json:"last_sync_at"`
	SyncCount       int                    `json:"sync_count"`
	ErrorMessage    *string                `json:"error_message"`
	UserID          uint                   `json:"user_id"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Config          map[string]interface{} `json:"config,omitempty"`
}

type CreateIntegrationRequest struct {
	Name            string                 `json:"name"`
	IntegrationType string                 `json:"integration_type"`
	Config          map[string]interface{} `json:"config"`
	SyncInterval    *int                   `json:"sync_interval"`
}

type UpdateIntegrationRequest struct {
	Name              *string                `json:"name"`
	Config            map[string]interface{} `json:"config"`
	SyncInterval      *int                   `json:"sync_interval"`
	ClearSyncInterval bool                   `json:"clear_sync_interval"`
}

// SyncOutcome is the result of one sync attempt, including lock contention
// ("skipped"), which is a normal outcome and not an error.
type SyncOutcome struct {
	Status       string `json:"status"` // success, failed or skipped
	Reason       string `json:"reason,omitempty"`
	RecordsCount int    `json:"records_count"`
	Duration     int64  `json:"duration"` // milliseconds
}

func convertIntegrationToListedIntegration(integration database.Integration) ListedIntegration {
	listed := ListedIntegration{
		ID:              integration.ID,
		UUID:            integration.UUID,
		Name:            integration.Name,
		IntegrationType: integration.IntegrationType,
		Category:        integration.Category,
		Status:          integration.Status,
		Active:          integration.Active,
		SyncInterval:    integration.SyncInterval,
		LastSyncAt:      integration.LastSyncAt,
		SyncCount:       integration.SyncCount,
		ErrorMessage:    integration.ErrorMessage,
		UserID:          integration.UserID,
		CreatedAt:       integration.CreatedAt,
		UpdatedAt:       integration.UpdatedAt,
	}

	if len(integration.Config) > 0 {
		var config map[string]interface{}
		if err := json.Unmarshal(integration.Config, &config); err == nil {
			listed.Config = MaskConfig(config)
		}
	}

	return listed
}

// findOwned loads an integration scoped to its owner. A foreign id comes back
// as ErrNotFound, never as a distinguishable "exists but not yours".
func (s *IntegrationService) findOwned(integrationID uint, userID uint) (*database.Integration, error) {
	var integration database.Integration
	q := s.DB.Where("id = ? AND user_id = ?", integrationID, userID).First(&integration)
	if q.Error != nil {
		if errors.Is(q.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, q.Error
	}
	return &integration, nil
}

// ListAvailableTypes returns the fixed provider enumeration
func (s *IntegrationService) ListAvailableTypes() []IntegrationType {
	return AvailableTypes()
}

// ListUserIntegrations returns all integrations of one user, config masked
func (s *IntegrationService) ListUserIntegrations(userID uint) ([]ListedIntegration, error) {
	var integrations []database.Integration
	q := s.DB.Where("user_id = ?", userID).Order("id asc").Find(&integrations)
	if q.Error != nil {
		return nil, q.Error
	}

	listed := make([]ListedIntegration, len(integrations))
	for i, integration := range integrations {
		listed[i] = convertIntegrationToListedIntegration(integration)
	}
	return listed, nil
}

// GetIntegration returns one integration of one user, config masked
func (s *IntegrationService) GetIntegration(integrationID uint, userID uint) (*ListedIntegration, error) {
	integration, err := s.findOwned(integrationID, userID)
	if err != nil {
		return nil, err
	}
	listed := convertIntegrationToListedIntegration(*integration)
	return &listed, nil
}

// CreateIntegration validates the request against the type enumeration and
// persists a new integration in status pending
func (s *IntegrationService) CreateIntegration(userID uint, data CreateIntegrationRequest) (*ListedIntegration, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("integration name is required")
	}

	typeInfo, ok := GetType(data.IntegrationType)
	if !ok {
		return nil, fmt.Errorf("unsupported integration type: %s", data.IntegrationType)
	}

	if data.SyncInterval != nil && *data.SyncInterval <= 0 {
		return nil, fmt.Errorf("sync_interval must be a positive number of minutes")
	}

	configBytes, err := json.Marshal(data.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize configuration: %v", err)
	}

	integration := database.Integration{
		UserID:          userID,
		Name:            data.Name,
		IntegrationType: data.IntegrationType,
		Category:        typeInfo.Category,
		Config:          configBytes,
		Status:          database.IntegrationStatusPending,
		Active:          true,
		SyncInterval:    data.SyncInterval,
	}

	if err := s.DB.Create(&integration).Error; err != nil {
		return nil, fmt.Errorf("failed to save integration: %v", err)
	}

	s.writeLog(integration.ID, "create", "internal", database.LogStatusSuccess, 0, nil,
		fmt.Sprintf("created %s integration", data.IntegrationType))

	if s.schedule != nil {
		s.schedule.RegisterIntegration(integration)
	}

	listed := convertIntegrationToListedIntegration(integration)
	return &listed, nil
}

// UpdateIntegration applies a partial update and re-derives the schedule
func (s *IntegrationService) UpdateIntegration(integrationID uint, userID uint, data UpdateIntegrationRequest) (*ListedIntegration, error) {
	integration, err := s.findOwned(integrationID, userID)
	if err != nil {
		return nil, err
	}

	if data.Name != nil {
		if *data.Name == "" {
			return nil, fmt.Errorf("integration name is required")
		}
		integration.Name = *data.Name
	}

	if data.Config != nil {
		configBytes, err := json.Marshal(data.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize configuration: %v", err)
		}
		integration.Config = configBytes
	}

	if data.ClearSyncInterval {
		integration.SyncInterval = nil
	} else if data.SyncInterval != nil {
		if *data.SyncInterval <= 0 {
			return nil, fmt.Errorf("sync_interval must be a positive number of minutes")
		}
		integration.SyncInterval = data.SyncInterval
	}

	if err := s.DB.Save(integration).Error; err != nil {
		return nil, fmt.Errorf("failed to update integration: %v", err)
	}

	s.writeLog(integration.ID, "update", "internal", database.LogStatusSuccess, 0, nil, "integration updated")

	if s.schedule != nil {
		s.schedule.UpdateSchedule(integration.ID, integration.SyncInterval)
	}

	listed := convertIntegrationToListedIntegration(*integration)
	return &listed, nil
}

// DeleteIntegration removes an integration, its audit logs and any timer
func (s *IntegrationService) DeleteIntegration(integrationID uint, userID uint) error {
	integration, err := s.findOwned(integrationID, userID)
	if err != nil {
		return err
	}

	if err := s.DB.Unscoped().Where("integration_id = ?", integration.ID).Delete(&database.IntegrationLog{}).Error; err != nil {
		return fmt.Errorf("failed to delete integration logs: %v", err)
	}

	if err := s.DB.Unscoped().Delete(integration).Error; err != nil {
		return fmt.Errorf("failed to delete integration: %v", err)
	}

	if s.schedule != nil {
		s.schedule.UnregisterIntegration(integration.ID)
	}

	return nil
}

// TestConnection runs the handler's live check and moves the integration into
// connected or error depending on the outcome
func (s *IntegrationService) TestConnection(integrationID uint, userID uint) (*TestResult, error) {
	integration, err := s.findOwned(integrationID, userID)
	if err != nil {
		return nil, err
	}

	typeInfo, ok := GetType(integration.IntegrationType)
	if !ok {
		return nil, fmt.Errorf("unsupported integration type: %s", integration.IntegrationType)
	}

	config := map[string]interface{}{}
	if len(integration.Config) > 0 {
		if err := json.Unmarshal(integration.Config, &config); err != nil {
			return nil, fmt.Errorf("failed to parse integration config: %v", err)
		}
	}

	start := time.Now()
	result, err := typeInfo.Handler.TestConnection(config)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		// Transport errors count as a soft failure
		result = &TestResult{Success: false, Message: err.Error()}
	}

	updates := map[string]interface{}{}
	logStatus := database.LogStatusSuccess
	if result.Success {
		updates["status"] = database.IntegrationStatusConnected
		updates["error_message"] = nil
	} else {
		updates["status"] = database.IntegrationStatusError
		updates["error_message"] = result.Message
		logStatus = database.LogStatusFailed
	}

	if err := s.DB.Model(&database.Integration{}).Where("id = ?", integration.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update integration status: %v", err)
	}

	s.writeLog(integration.ID, "test", "internal", logStatus, 0, &duration, result.Message)

	return result, nil
}

// SyncIntegration runs a sync on behalf of the owning user
func (s *IntegrationService) SyncIntegration(integrationID uint, userID uint, options SyncOptions) (*SyncOutcome, error) {
	if _, err := s.findOwned(integrationID, userID); err != nil {
		return nil, err
	}
	return s.Sync(integrationID, options)
}

// Sync runs one sync attempt under the sync lock. This is the scheduler-facing
// entry point; ownership checks belong to SyncIntegration.
func (s *IntegrationService) Sync(integrationID uint, options SyncOptions) (*SyncOutcome, error) {
	var integration database.Integration
	q := s.DB.First(&integration, "id = ?", integrationID)
	if q.Error != nil {
		if errors.Is(q.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, q.Error
	}

	typeInfo, ok := GetType(integration.IntegrationType)
	if !ok {
		return nil, fmt.Errorf("unsupported integration type: %s", integration.IntegrationType)
	}

	syncHandler, ok := typeInfo.Handler.(SyncHandler)
	if !ok {
		return nil, fmt.Errorf("integration type %s does not support data sync", integration.IntegrationType)
	}

	if options.Direction == "" {
		options.Direction = "pull"
	}

	acquired, err := database.TryAcquireSyncLock(s.DB, integration.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %v", err)
	}
	if !acquired {
		s.writeLog(integration.ID, "sync", options.Direction, database.LogStatusSkipped, 0, nil, "already syncing")
		return &SyncOutcome{Status: "skipped", Reason: "already syncing"}, nil
	}

	config := map[string]interface{}{}
	var result *SyncResult
	var syncErr error

	if len(integration.Config) > 0 {
		syncErr = json.Unmarshal(integration.Config, &config)
	}

	start := time.Now()
	if syncErr == nil {
		result, syncErr = syncHandler.Sync(config, options, integration.UserID)
	}
	duration := time.Since(start).Milliseconds()

	if syncErr != nil || !result.Success {
		message := "sync failed"
		if syncErr != nil {
			message = syncErr.Error()
		} else if result.Message != "" {
			message = result.Message
		}

		if err := s.DB.Model(&database.Integration{}).Where("id = ?", integration.ID).Updates(map[string]interface{}{
			"status":        database.IntegrationStatusError,
			"error_message": message,
		}).Error; err != nil {
			log.Printf("Failed to record sync failure for integration %d: %v", integration.ID, err)
		}

		s.writeLog(integration.ID, "sync", options.Direction, database.LogStatusFailed, 0, &duration, message)
		return &SyncOutcome{Status: "failed", Reason: message, Duration: duration}, nil
	}

	if err := s.DB.Model(&database.Integration{}).Where("id = ?", integration.ID).Updates(map[string]interface{}{
		"status":        database.IntegrationStatusConnected,
		"last_sync_at":  time.Now(),
		"sync_count":    gorm.Expr("sync_count + ?", 1),
		"error_message": nil,
	}).Error; err != nil {
		log.Printf("Failed to record sync success for integration %d: %v", integration.ID, err)
	}

	s.writeLog(integration.ID, "sync", options.Direction, database.LogStatusSuccess, result.RecordsCount, &duration, result.Message)
	return &SyncOutcome{Status: "success", RecordsCount: result.RecordsCount, Duration: duration}, nil
}

// ToggleIntegration activates or deactivates an integration and keeps the
// scheduler registration in step
func (s *IntegrationService) ToggleIntegration(integrationID uint, userID uint, active bool) (*ListedIntegration, error) {
	integration, err := s.findOwned(integrationID, userID)
	if err != nil {
		return nil, err
	}

	integration.Active = active
	if err := s.DB.Model(&database.Integration{}).Where("id = ?", integration.ID).Update("active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update integration: %v", err)
	}

	details := "integration deactivated"
	if active {
		details = "integration activated"
	}
	s.writeLog(integration.ID, "update", "internal", database.LogStatusSuccess, 0, nil, details)

	if s.schedule != nil {
		if active {
			s.schedule.RegisterIntegration(*integration)
		} else {
			s.schedule.UnregisterIntegration(integration.ID)
		}
	}

	listed := convertIntegrationToListedIntegration(*integration)
	return &listed, nil
}

// GetLogs returns the newest audit rows of one integration
func (s *IntegrationService) GetLogs(integrationID uint, userID uint, limit int) ([]database.IntegrationLog, error) {
	if _, err := s.findOwned(integrationID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	var logs []database.IntegrationLog
	q := s.DB.Where("integration_id = ?", integrationID).Order("id desc").Limit(limit).Find(&logs)
	if q.Error != nil {
		return nil, q.Error
	}
	return logs, nil
}

// writeLog appends one audit row. Audit failures must never block the primary
// operation, so they are only reported diagnostically.
func (s *IntegrationService) writeLog(integrationID uint, action string, direction string, status string, recordsCount int, duration *int64, details string) {
	row := database.IntegrationLog{
		IntegrationID: integrationID,
		Action:        action,
		Direction:     direction,
		Status:        status,
		RecordsCount:  recordsCount,
		Duration:      duration,
		Details:       details,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		log.Printf("Failed to write integration log (integration=%d action=%s): %v", integrationID, action, err)
	}
}
