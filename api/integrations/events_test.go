package integrations

import (
	"testing"

	"backend/database"

	"gorm.io/gorm"
)

func createNotifyIntegration(t *testing.T, service *IntegrationService, db *gorm.DB, userID uint, label string, config map[string]interface{}) *ListedIntegration {
	t.Helper()

	if config == nil {
		config = map[string]interface{}{}
	}
	config["label"] = label

	integration := mustCreate(t, service, userID, CreateIntegrationRequest{
		Name:            label,
		IntegrationType: "fake_notify",
		Config:          config,
	})

	// Event delivery only reaches connected integrations
	if err := db.Model(&database.Integration{}).Where("id = ?", integration.ID).
		Update("status", database.IntegrationStatusConnected).Error; err != nil {
		t.Fatalf("Failed to mark integration connected: %v", err)
	}
	return integration
}

func Test_TriggerEventFanOut(t *testing.T) {
	service, db := setupService(t)

	createNotifyIntegration(t, service, db, 1, "first", nil)
	createNotifyIntegration(t, service, db, 1, "second", nil)
	createNotifyIntegration(t, service, db, 1, "third", nil)

	if err := service.TriggerEvent("message.received", map[string]interface{}{"from": "+4915112345678"}, nil); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}

	for _, label := range []string{"first", "second", "third"} {
		events := notifyHandler.events(label)
		if len(events) != 1 || events[0] != "message.received" {
			t.Fatalf("Expected %s to receive the event once, got %v", label, events)
		}
	}
}

func Test_TriggerEventFailureDoesNotAbortFanOut(t *testing.T) {
	service, db := setupService(t)

	first := createNotifyIntegration(t, service, db, 1, "first", nil)
	second := createNotifyIntegration(t, service, db, 1, "second", nil)
	third := createNotifyIntegration(t, service, db, 1, "third", nil)

	notifyHandler.mu.Lock()
	notifyHandler.failLabels["second"] = true
	notifyHandler.mu.Unlock()

	if err := service.TriggerEvent("message.received", nil, nil); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}

	if len(notifyHandler.events("first")) != 1 {
		t.Fatalf("Expected first integration to receive the event")
	}
	if len(notifyHandler.events("third")) != 1 {
		t.Fatalf("Expected third integration to receive the event despite the failure before it")
	}

	logStatus := func(integrationID uint) string {
		var row database.IntegrationLog
		if err := db.Where("integration_id = ? AND action = ?", integrationID, "message.received").
			First(&row).Error; err != nil {
			t.Fatalf("Failed to load event log for integration %d: %v", integrationID, err)
		}
		return row.Status
	}

	if logStatus(first.ID) != database.LogStatusSuccess {
		t.Fatalf("Expected success log for first integration")
	}
	if logStatus(second.ID) != database.LogStatusFailed {
		t.Fatalf("Expected failed log for second integration")
	}
	if logStatus(third.ID) != database.LogStatusSuccess {
		t.Fatalf("Expected success log for third integration")
	}
}

func Test_TriggerEventSubscriptionFilter(t *testing.T) {
	service, db := setupService(t)

	createNotifyIntegration(t, service, db, 1, "filtered", map[string]interface{}{
		"events": []interface{}{"message.received"},
	})
	createNotifyIntegration(t, service, db, 1, "open", nil)

	if err := service.TriggerEvent("device.connected", nil, nil); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}
	if len(notifyHandler.events("filtered")) != 0 {
		t.Fatalf("Expected filtered integration to skip unsubscribed event")
	}
	if len(notifyHandler.events("open")) != 1 {
		t.Fatalf("Expected integration without allow-list to receive every event")
	}

	if err := service.TriggerEvent("message.received", nil, nil); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}
	if events := notifyHandler.events("filtered"); len(events) != 1 || events[0] != "message.received" {
		t.Fatalf("Expected filtered integration to receive subscribed event, got %v", events)
	}
}

func Test_TriggerEventSkipsInactiveAndPending(t *testing.T) {
	service, db := setupService(t)

	inactive := createNotifyIntegration(t, service, db, 1, "inactive", nil)
	if _, err := service.ToggleIntegration(inactive.ID, 1, false); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	// Stays pending, never marked connected
	pending := mustCreate(t, service, 1, CreateIntegrationRequest{
		Name:            "pending",
		IntegrationType: "fake_notify",
		Config:          map[string]interface{}{"label": "pending"},
	})
	_ = pending

	if err := service.TriggerEvent("message.received", nil, nil); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}
	if len(notifyHandler.events("inactive")) != 0 {
		t.Fatalf("Expected deactivated integration to be skipped")
	}
	if len(notifyHandler.events("pending")) != 0 {
		t.Fatalf("Expected pending integration to be skipped")
	}
}

func Test_TriggerEventUserScope(t *testing.T) {
	service, db := setupService(t)

	createNotifyIntegration(t, service, db, 1, "alice", nil)
	createNotifyIntegration(t, service, db, 2, "bob", nil)

	userID := uint(1)
	if err := service.TriggerEvent("message.received", nil, &userID); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}
	if len(notifyHandler.events("alice")) != 1 {
		t.Fatalf("Expected scoped user's integration to receive the event")
	}
	if len(notifyHandler.events("bob")) != 0 {
		t.Fatalf("Expected other user's integration to be skipped under user scope")
	}

	if err := service.TriggerEvent("message.received", nil, nil); err != nil {
		t.Fatalf("TriggerEvent failed: %v", err)
	}
	if len(notifyHandler.events("bob")) != 1 {
		t.Fatalf("Expected unscoped event to reach every user")
	}
}
