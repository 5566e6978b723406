package scheduler

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"backend/api/integrations"
	"backend/database"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// staleSyncTimeout is how long an integration may sit in status syncing before
// the sweep resets it to error. Covers process crashes mid-sync; a live sync
// longer than this is treated as dead.
const staleSyncTimeout = 30 * time.Minute

// IntegrationScheduler drives periodic data syncs. It keeps a process-local
// timer per registered integration plus a one-minute sweep that catches
// everything the timers miss. The store's fields stay authoritative; the timer
// map is just a cache rebuilt from the store on startup.
type IntegrationScheduler struct {
	DB        *gorm.DB
	service   *integrations.IntegrationService
	scheduler *gocron.Scheduler

	mu         sync.Mutex
	registered map[uint]int // integration id -> interval minutes
	running    bool
}

// SchedulerStatus is the introspection snapshot returned by GetStatus
type SchedulerStatus struct {
	IsRunning       bool   `json:"is_running"`
	RegisteredCount int    `json:"registered_count"`
	IntegrationIDs  []uint `json:"integration_ids"`
}

func NewIntegrationScheduler(DB *gorm.DB, service *integrations.IntegrationService) *IntegrationScheduler {
	return &IntegrationScheduler{
		DB:         DB,
		service:    service,
		scheduler:  gocron.NewScheduler(time.UTC),
		registered: map[uint]int{},
	}
}

// Initialize rebuilds the timer map from the store, starts the sweep job and
// begins running
func (s *IntegrationScheduler) Initialize() error {
	pollable, err := database.FindPollableIntegrations(s.DB)
	if err != nil {
		return fmt.Errorf("failed to load schedulable integrations: %v", err)
	}

	for _, integration := range pollable {
		s.RegisterIntegration(integration)
	}

	if _, err := s.scheduler.Every(1).Minute().Tag("sweep").Do(s.sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %v", err)
	}

	s.scheduler.StartAsync()

	s.mu.Lock()
	s.running = true
	count := len(s.registered)
	s.mu.Unlock()

	log.Printf("Integration scheduler started with %d registered integrations", count)
	return nil
}

func integrationTag(integrationID uint) string {
	return fmt.Sprintf("integration-%d", integrationID)
}

// RegisterIntegration sets up the recurring timer for one integration.
// Registering an already registered integration replaces its timer, so double
// registration leaves exactly one.
func (s *IntegrationScheduler) RegisterIntegration(integration database.Integration) {
	if !integration.Active || integration.SyncInterval == nil || !database.IsPollable(integration.Category) {
		return
	}

	interval := *integration.SyncInterval
	if interval <= 0 {
		return
	}

	tag := integrationTag(integration.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registered[integration.ID]; exists {
		s.scheduler.RemoveByTag(tag)
	}

	integrationID := integration.ID
	_, err := s.scheduler.Every(interval).Minutes().Tag(tag).Do(func() {
		s.runSync(integrationID)
	})
	if err != nil {
		log.Printf("Failed to register timer for integration %d: %v", integrationID, err)
		return
	}

	s.registered[integration.ID] = interval
}

// UnregisterIntegration drops the timer of one integration, if any
func (s *IntegrationScheduler) UnregisterIntegration(integrationID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registered[integrationID]; !exists {
		return
	}
	s.scheduler.RemoveByTag(integrationTag(integrationID))
	delete(s.registered, integrationID)
}

// UpdateSchedule re-derives the timer of one integration from its stored row.
// Caller-supplied fields are never trusted; only the nil check on newInterval
// short-circuits the re-read.
func (s *IntegrationScheduler) UpdateSchedule(integrationID uint, newInterval *int) {
	s.UnregisterIntegration(integrationID)

	if newInterval == nil {
		return
	}

	var integration database.Integration
	if err := s.DB.First(&integration, "id = ?", integrationID).Error; err != nil {
		log.Printf("Failed to reload integration %d for rescheduling: %v", integrationID, err)
		return
	}

	s.RegisterIntegration(integration)
}

// GetStatus returns a snapshot of the timer map
func (s *IntegrationScheduler) GetStatus() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, 0, len(s.registered))
	for id := range s.registered {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return SchedulerStatus{
		IsRunning:       s.running,
		RegisteredCount: len(s.registered),
		IntegrationIDs:  ids,
	}
}

// NextSyncTime computes when an integration is next due. Nil when unscheduled
// or never synced (never synced means due immediately).
func (s *IntegrationScheduler) NextSyncTime(integration database.Integration) *time.Time {
	if integration.SyncInterval == nil || integration.LastSyncAt == nil {
		return nil
	}
	next := integration.LastSyncAt.Add(time.Duration(*integration.SyncInterval) * time.Minute)
	return &next
}

// isDue decides whether the sweep should sync an integration now
func (s *IntegrationScheduler) isDue(integration database.Integration, now time.Time) bool {
	if integration.SyncInterval == nil {
		return false
	}
	if integration.LastSyncAt == nil {
		return true
	}
	next := integration.LastSyncAt.Add(time.Duration(*integration.SyncInterval) * time.Minute)
	return !now.Before(next)
}

// ForceSyncAll synchronously runs a sync for every registered integration. With
// a userID the ownership of every id is re-verified against the store and
// non-owned ids are silently skipped, so guessed ids have no cross-tenant
// effect. Returns the number of syncs attempted.
func (s *IntegrationScheduler) ForceSyncAll(userID *uint) int {
	s.mu.Lock()
	ids := make([]uint, 0, len(s.registered))
	for id := range s.registered {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	attempted := 0
	for _, id := range ids {
		if userID != nil {
			var count int64
			if err := s.DB.Model(&database.Integration{}).
				Where("id = ? AND user_id = ?", id, *userID).
				Count(&count).Error; err != nil || count == 0 {
				continue
			}
		}
		s.runSync(id)
		attempted++
	}
	return attempted
}

// Stop halts all timers and the sweep
func (s *IntegrationScheduler) Stop() {
	s.scheduler.Stop()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	log.Println("Integration scheduler stopped")
}

// sweep is the source of truth for due-ness. It survives lost in-memory timers
// after a restart: every active, poll-eligible, non-syncing integration with an
// interval is checked and every due one synced in a detached goroutine whose
// failure is only logged, never propagated to the sweep loop.
func (s *IntegrationScheduler) sweep() {
	if reaped, err := database.ReapStaleSyncs(s.DB, staleSyncTimeout); err != nil {
		log.Printf("Failed to reap stale syncs: %v", err)
	} else if reaped > 0 {
		log.Printf("Reset %d integrations stuck in syncing", reaped)
	}

	candidates, err := database.FindPollableIntegrations(s.DB)
	if err != nil {
		log.Printf("Sweep failed to list integrations: %v", err)
		return
	}

	now := time.Now()
	for _, integration := range candidates {
		if !s.isDue(integration, now) {
			continue
		}
		integrationID := integration.ID
		go s.runSync(integrationID)
	}
}

// runSync executes one sync attempt and only logs the result. Lock contention
// surfaces as a skipped outcome and is not an error.
func (s *IntegrationScheduler) runSync(integrationID uint) {
	outcome, err := s.service.Sync(integrationID, integrations.SyncOptions{Direction: "pull", Scheduled: true})
	if err != nil {
		log.Printf("Scheduled sync of integration %d failed: %v", integrationID, err)
		return
	}

	switch outcome.Status {
	case "skipped":
		log.Printf("Scheduled sync of integration %d skipped: %s", integrationID, outcome.Reason)
	case "failed":
		log.Printf("Scheduled sync of integration %d failed: %s", integrationID, outcome.Reason)
	default:
		log.Printf("Scheduled sync of integration %d completed: %d records in %dms",
			integrationID, outcome.RecordsCount, outcome.Duration)
	}
}
