package database

import (
	"time"

	"gorm.io/gorm"
)

// Integration statuses
const (
	IntegrationStatusPending   = "pending"
	IntegrationStatusConnected = "connected"
	IntegrationStatusError     = "error"
	IntegrationStatusSyncing   = "syncing"
)

// Integration categories
const (
	CategorySpreadsheet  = "spreadsheet"
	CategoryDatabase     = "database"
	CategoryNotification = "notification"
	CategoryAutomation   = "automation"
)

// Log statuses
const (
	LogStatusSuccess = "success"
	LogStatusFailed  = "failed"
	LogStatusSkipped = "skipped"
)

// PollableCategories are the categories eligible for scheduled data syncs.
var PollableCategories = []string{CategorySpreadsheet, CategoryDatabase}

// EventCategories are the categories eligible for event fan-out.
var EventCategories = []string{CategoryNotification, CategoryAutomation}

// IsPollable reports whether a category is eligible for scheduled data syncs
func IsPollable(category string) bool {
	for _, c := range PollableCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Integration represents a user-configured connection to a third-party service
type Integration struct {
	Model
	UserID          uint       `json:"user_id" gorm:"index"`
	User            User       `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:NO ACTION;"`
	Name            string     `json:"name" gorm:"index"`
	IntegrationType string     `json:"integration_type" gorm:"index"`
	Category        string     `json:"category" gorm:"index"`
	Config          []byte     `json:"-"` // Serialized credentials, only ever returned masked
	Status          string     `json:"status" gorm:"index;default:'pending'"`
	Active          bool       `json:"is_active"`
	SyncInterval    *int       `json:"sync_interval"` // minutes, nil = unscheduled
	LastSyncAt      *time.Time `json:"last_sync_at"`
	SyncCount       int        `json:"sync_count"`
	ErrorMessage    *string    `json:"error_message"`
}

// IntegrationLog is an append-only audit row for one integration action
type IntegrationLog struct {
	Model
	IntegrationID uint        `json:"integration_id" gorm:"index"`
	Integration   Integration `json:"-" gorm:"foreignKey:IntegrationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:NO ACTION;"`
	Action        string      `json:"action" gorm:"index"`
	Direction     string      `json:"direction"`
	Status        string      `json:"status"`
	RecordsCount  int         `json:"records_count"`
	Duration      *int64      `json:"duration"` // milliseconds
	Details       string      `json:"details"`
}

// TryAcquireSyncLock attempts to move an integration into the syncing status with a
// single conditional update. The affected-row count decides the race: exactly one
// caller observes 1 row changed, everyone else sees a sync already in flight. This
// is the only concurrency primitive guarding syncs, there is never a read-then-write
// pair around the status field.
func TryAcquireSyncLock(DB *gorm.DB, integrationID uint) (bool, error) {
	q := DB.Model(&Integration{}).
		Where("id = ? AND status <> ?", integrationID, IntegrationStatusSyncing).
		Update("status", IntegrationStatusSyncing)
	if q.Error != nil {
		return false, q.Error
	}
	return q.RowsAffected == 1, nil
}

// FindPollableIntegrations returns all active integrations in poll-eligible
// categories that carry a sync interval, excluding those currently syncing.
func FindPollableIntegrations(DB *gorm.DB) ([]Integration, error) {
	var integrations []Integration
	q := DB.Where("active = ?", true).
		Where("category IN ?", PollableCategories).
		Where("sync_interval IS NOT NULL").
		Where("status <> ?", IntegrationStatusSyncing).
		Order("id asc").
		Find(&integrations)
	if q.Error != nil {
		return nil, q.Error
	}
	return integrations, nil
}

// FindEventIntegrations returns the fan-out candidates: active, connected
// integrations in event-eligible categories, optionally scoped to one user.
// The order is deterministic so delivery pacing is stable.
func FindEventIntegrations(DB *gorm.DB, userID *uint) ([]Integration, error) {
	query := DB.Where("active = ?", true).
		Where("status = ?", IntegrationStatusConnected).
		Where("category IN ?", EventCategories)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var integrations []Integration
	q := query.Order("id asc").Find(&integrations)
	if q.Error != nil {
		return nil, q.Error
	}
	return integrations, nil
}

// ReapStaleSyncs resets integrations stuck in syncing longer than maxAge, e.g.
// after a process crash mid-sync, so the scheduler can pick them up again.
func ReapStaleSyncs(DB *gorm.DB, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	q := DB.Model(&Integration{}).
		Where("status = ? AND updated_at < ?", IntegrationStatusSyncing, cutoff).
		Updates(map[string]interface{}{
			"status":        IntegrationStatusError,
			"error_message": "sync timed out",
		})
	return q.RowsAffected, q.Error
}
