package integrations

// TestResult is the outcome of a live connection check against a provider
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SyncOptions carries hints for a sync run
type SyncOptions struct {
	Direction string `json:"direction"` // "pull", "push" or "bidirectional"
	Scheduled bool   `json:"scheduled"` // true when triggered by the scheduler
}

// SyncResult is what a provider handler reports back after a data exchange
type SyncResult struct {
	Success      bool   `json:"success"`
	RecordsCount int    `json:"records_count"`
	Message      string `json:"message"`
}

// IntegrationHandler is the capability every provider adapter must implement.
// Handlers are stateless and shared, one instance per integration type; per-tenant
// state only ever arrives through the call arguments.
type IntegrationHandler interface {
	TestConnection(config map[string]interface{}) (*TestResult, error)
}

// SyncHandler is the optional data-sync capability. The service guarantees no
// concurrent invocation per integration; it does not guarantee provider-side
// idempotence on retry.
type SyncHandler interface {
	Sync(config map[string]interface{}, options SyncOptions, userID uint) (*SyncResult, error)
}

// EventHandler is the optional event-delivery capability. A returned error is
// fatal to this call only, the caller logs it and moves on.
type EventHandler interface {
	HandleEvent(eventName string, data map[string]interface{}, config map[string]interface{}) error
}
