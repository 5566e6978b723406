package scheduler

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"backend/api/integrations"
	"backend/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// countingHandler is a sync-capable handler counting invocations per config
// label
type countingHandler struct {
	mu    sync.Mutex
	calls map[string]int
}

func (h *countingHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = map[string]int{}
}

func (h *countingHandler) callCount(label string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[label]
}

func (h *countingHandler) TestConnection(config map[string]interface{}) (*integrations.TestResult, error) {
	return &integrations.TestResult{Success: true, Message: "ok"}, nil
}

func (h *countingHandler) Sync(config map[string]interface{}, options integrations.SyncOptions, userID uint) (*integrations.SyncResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	label, _ := config["label"].(string)
	h.calls[label]++
	return &integrations.SyncResult{Success: true, RecordsCount: 1, Message: "synced"}, nil
}

var schedHandler = &countingHandler{}

func init() {
	integrations.RegisterType(integrations.IntegrationType{
		Type:     "sched_store",
		Name:     "Scheduler Test Store",
		Category: database.CategorySpreadsheet,
		Handler:  schedHandler,
	})
}

func setupScheduler(t *testing.T) (*IntegrationScheduler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	for _, table := range database.Tabels {
		if err := db.AutoMigrate(table); err != nil {
			t.Fatalf("Failed to migrate table: %v", err)
		}
	}

	schedHandler.reset()

	service := integrations.NewIntegrationService(db)
	service.EventDelay = 0
	return NewIntegrationScheduler(db, service), db
}

func seedIntegration(t *testing.T, db *gorm.DB, userID uint, label string, category string, interval *int, lastSyncAt *time.Time) database.Integration {
	t.Helper()

	config, _ := json.Marshal(map[string]interface{}{"label": label})
	integration := database.Integration{
		UserID:          userID,
		Name:            label,
		IntegrationType: "sched_store",
		Category:        category,
		Config:          config,
		Status:          database.IntegrationStatusConnected,
		Active:          true,
		SyncInterval:    interval,
		LastSyncAt:      lastSyncAt,
	}
	if err := db.Create(&integration).Error; err != nil {
		t.Fatalf("Failed to seed integration: %v", err)
	}
	return integration
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func Test_RegisterIntegrationIsIdempotent(t *testing.T) {
	scheduler, db := setupScheduler(t)

	integration := seedIntegration(t, db, 1, "a", database.CategorySpreadsheet, intPtr(5), nil)

	scheduler.RegisterIntegration(integration)
	scheduler.RegisterIntegration(integration)

	if len(scheduler.registered) != 1 {
		t.Fatalf("Expected exactly one registration, got %d", len(scheduler.registered))
	}
	if scheduler.scheduler.Len() != 1 {
		t.Fatalf("Expected exactly one timer, got %d", scheduler.scheduler.Len())
	}
	if scheduler.registered[integration.ID] != 5 {
		t.Fatalf("Expected registered interval 5, got %d", scheduler.registered[integration.ID])
	}
}

func Test_RegisterIntegrationGating(t *testing.T) {
	scheduler, db := setupScheduler(t)

	// Notification integrations never get timers even with an interval
	notification := seedIntegration(t, db, 1, "n", database.CategoryNotification, intPtr(5), nil)
	scheduler.RegisterIntegration(notification)

	// No interval means no timer
	manual := seedIntegration(t, db, 1, "m", database.CategorySpreadsheet, nil, nil)
	scheduler.RegisterIntegration(manual)

	// Inactive integrations are skipped
	inactive := seedIntegration(t, db, 1, "i", database.CategorySpreadsheet, intPtr(5), nil)
	inactive.Active = false
	scheduler.RegisterIntegration(inactive)

	if len(scheduler.registered) != 0 {
		t.Fatalf("Expected no registrations, got %v", scheduler.registered)
	}
}

func Test_UnregisterIntegration(t *testing.T) {
	scheduler, db := setupScheduler(t)

	integration := seedIntegration(t, db, 1, "a", database.CategorySpreadsheet, intPtr(5), nil)
	scheduler.RegisterIntegration(integration)

	scheduler.UnregisterIntegration(integration.ID)
	if len(scheduler.registered) != 0 {
		t.Fatalf("Expected registration to be removed")
	}
	if scheduler.scheduler.Len() != 0 {
		t.Fatalf("Expected timer to be removed, %d left", scheduler.scheduler.Len())
	}

	// Unregistering twice is harmless
	scheduler.UnregisterIntegration(integration.ID)
}

func Test_UpdateScheduleRereadsStoredRow(t *testing.T) {
	scheduler, db := setupScheduler(t)

	integration := seedIntegration(t, db, 1, "a", database.CategorySpreadsheet, intPtr(7), nil)
	scheduler.RegisterIntegration(integration)

	// The stored row says 7; a caller-supplied 5 must not win
	scheduler.UpdateSchedule(integration.ID, intPtr(5))
	if scheduler.registered[integration.ID] != 7 {
		t.Fatalf("Expected interval from the stored row, got %d", scheduler.registered[integration.ID])
	}

	// Nil interval unschedules without touching the store
	scheduler.UpdateSchedule(integration.ID, nil)
	if len(scheduler.registered) != 0 {
		t.Fatalf("Expected nil interval to unschedule")
	}
}

func Test_GetStatus(t *testing.T) {
	scheduler, db := setupScheduler(t)

	second := seedIntegration(t, db, 1, "b", database.CategorySpreadsheet, intPtr(5), nil)
	first := seedIntegration(t, db, 1, "a", database.CategorySpreadsheet, intPtr(5), nil)
	scheduler.RegisterIntegration(second)
	scheduler.RegisterIntegration(first)

	status := scheduler.GetStatus()
	if status.IsRunning {
		t.Fatalf("Expected scheduler to report not running before Initialize")
	}
	if status.RegisteredCount != 2 {
		t.Fatalf("Expected 2 registrations, got %d", status.RegisteredCount)
	}
	if len(status.IntegrationIDs) != 2 || status.IntegrationIDs[0] >= status.IntegrationIDs[1] {
		t.Fatalf("Expected sorted integration ids, got %v", status.IntegrationIDs)
	}
}

func Test_NextSyncTime(t *testing.T) {
	scheduler, _ := setupScheduler(t)

	if next := scheduler.NextSyncTime(database.Integration{}); next != nil {
		t.Fatalf("Expected nil next sync without interval, got %v", next)
	}

	lastSync := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	integration := database.Integration{SyncInterval: intPtr(10), LastSyncAt: timePtr(lastSync)}
	next := scheduler.NextSyncTime(integration)
	if next == nil || !next.Equal(lastSync.Add(10*time.Minute)) {
		t.Fatalf("Expected next sync ten minutes after last, got %v", next)
	}

	// Never synced means due immediately, expressed as nil
	integration.LastSyncAt = nil
	if next := scheduler.NextSyncTime(integration); next != nil {
		t.Fatalf("Expected nil next sync for never-synced integration, got %v", next)
	}
}

func Test_IsDue(t *testing.T) {
	scheduler, _ := setupScheduler(t)

	lastSync := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	integration := database.Integration{SyncInterval: intPtr(10), LastSyncAt: timePtr(lastSync)}

	if scheduler.isDue(integration, lastSync.Add(9*time.Minute+59*time.Second)) {
		t.Fatalf("Expected integration not due before the interval elapses")
	}
	if !scheduler.isDue(integration, lastSync.Add(10*time.Minute)) {
		t.Fatalf("Expected integration due exactly when the interval elapses")
	}
	if !scheduler.isDue(database.Integration{SyncInterval: intPtr(10)}, lastSync) {
		t.Fatalf("Expected never-synced integration to be due")
	}
	if scheduler.isDue(database.Integration{LastSyncAt: timePtr(lastSync)}, lastSync.Add(time.Hour)) {
		t.Fatalf("Expected integration without interval never due")
	}
}

func Test_ForceSyncAllRespectsOwnership(t *testing.T) {
	scheduler, db := setupScheduler(t)

	alice := seedIntegration(t, db, 1, "alice", database.CategorySpreadsheet, intPtr(5), nil)
	bob := seedIntegration(t, db, 2, "bob", database.CategorySpreadsheet, intPtr(5), nil)
	scheduler.RegisterIntegration(alice)
	scheduler.RegisterIntegration(bob)

	userID := uint(1)
	attempted := scheduler.ForceSyncAll(&userID)
	if attempted != 1 {
		t.Fatalf("Expected one attempted sync under user scope, got %d", attempted)
	}
	if schedHandler.callCount("alice") != 1 {
		t.Fatalf("Expected the scoped user's integration to sync")
	}
	if schedHandler.callCount("bob") != 0 {
		t.Fatalf("Expected the other user's integration to be skipped")
	}

	attempted = scheduler.ForceSyncAll(nil)
	if attempted != 2 {
		t.Fatalf("Expected two attempted syncs without scope, got %d", attempted)
	}
	if schedHandler.callCount("bob") != 1 {
		t.Fatalf("Expected unscoped force sync to reach every registration")
	}
}

func Test_SweepSyncsDueIntegrations(t *testing.T) {
	scheduler, db := setupScheduler(t)

	aged := time.Now().Add(-20 * time.Minute)
	recent := time.Now().Add(-time.Minute)
	seedIntegration(t, db, 1, "due", database.CategorySpreadsheet, intPtr(5), timePtr(aged))
	seedIntegration(t, db, 1, "fresh", database.CategorySpreadsheet, intPtr(5), timePtr(recent))

	scheduler.sweep()

	// The sweep launches syncs in detached goroutines
	deadline := time.Now().Add(5 * time.Second)
	for schedHandler.callCount("due") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Due integration was never synced by the sweep")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if schedHandler.callCount("fresh") != 0 {
		t.Fatalf("Expected fresh integration to be left alone")
	}
}

func Test_SweepReapsStaleSyncs(t *testing.T) {
	scheduler, db := setupScheduler(t)

	stuck := seedIntegration(t, db, 1, "stuck", database.CategorySpreadsheet, nil, nil)
	if err := db.Model(&database.Integration{}).Where("id = ?", stuck.ID).
		Update("status", database.IntegrationStatusSyncing).Error; err != nil {
		t.Fatalf("Failed to mark integration syncing: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := db.Model(&database.Integration{}).Where("id = ?", stuck.ID).
		UpdateColumn("updated_at", past).Error; err != nil {
		t.Fatalf("Failed to age integration: %v", err)
	}

	scheduler.sweep()

	var reloaded database.Integration
	if err := db.First(&reloaded, stuck.ID).Error; err != nil {
		t.Fatalf("Failed to reload integration: %v", err)
	}
	if reloaded.Status != database.IntegrationStatusError {
		t.Fatalf("Expected stuck integration reset to error, got %s", reloaded.Status)
	}
}

func Test_ScheduledLifecycle(t *testing.T) {
	scheduler, db := setupScheduler(t)
	service := scheduler.service
	service.BindScheduler(scheduler)

	interval := 5
	created, err := service.CreateIntegration(1, integrations.CreateIntegrationRequest{
		Name:            "sheet",
		IntegrationType: "sched_store",
		Config:          map[string]interface{}{"label": "lifecycle"},
		SyncInterval:    &interval,
	})
	if err != nil {
		t.Fatalf("Failed to create integration: %v", err)
	}

	if scheduler.registered[created.ID] != 5 {
		t.Fatalf("Expected creation to register a timer")
	}

	// Age the last sync so the sweep considers it due
	aged := time.Now().Add(-20 * time.Minute)
	if err := db.Model(&database.Integration{}).Where("id = ?", created.ID).
		Updates(map[string]interface{}{
			"status":       database.IntegrationStatusConnected,
			"last_sync_at": aged,
		}).Error; err != nil {
		t.Fatalf("Failed to age integration: %v", err)
	}

	scheduler.sweep()

	deadline := time.Now().Add(5 * time.Second)
	for schedHandler.callCount("lifecycle") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Sweep never synced the due integration")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var reloaded database.Integration
	deadline = time.Now().Add(5 * time.Second)
	for {
		if err := db.First(&reloaded, created.ID).Error; err != nil {
			t.Fatalf("Failed to reload integration: %v", err)
		}
		if reloaded.Status == database.IntegrationStatusConnected && reloaded.SyncCount == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Sync result never landed, status %s count %d", reloaded.Status, reloaded.SyncCount)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Pulling the interval drops the timer
	if _, err := service.UpdateIntegration(created.ID, 1, integrations.UpdateIntegrationRequest{ClearSyncInterval: true}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, exists := scheduler.registered[created.ID]; exists {
		t.Fatalf("Expected cleared interval to unschedule")
	}
}
