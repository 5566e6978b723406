package integrations

import (
	"sort"
	"sync"

	"backend/database"
)

// IntegrationType describes one entry of the fixed provider enumeration
type IntegrationType struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	Handler     IntegrationHandler `json:"-"`
}

var (
	typeMu       sync.RWMutex
	typeRegistry = map[string]IntegrationType{}
)

// RegisterType adds a provider type to the enumeration. Built-in types register
// from init; tests register their own fakes.
func RegisterType(t IntegrationType) {
	typeMu.Lock()
	defer typeMu.Unlock()
	typeRegistry[t.Type] = t
}

// GetType resolves an integration type string to its registry entry
func GetType(integrationType string) (IntegrationType, bool) {
	typeMu.RLock()
	defer typeMu.RUnlock()
	t, ok := typeRegistry[integrationType]
	return t, ok
}

// AvailableTypes returns the full enumeration, sorted by type string
func AvailableTypes() []IntegrationType {
	typeMu.RLock()
	defer typeMu.RUnlock()
	out := make([]IntegrationType, 0, len(typeRegistry))
	for _, t := range typeRegistry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func init() {
	RegisterType(IntegrationType{
		Type:        "google_sheets",
		Name:        "Google Sheets",
		Category:    database.CategorySpreadsheet,
		Description: "Sync rows from a Google Sheets spreadsheet",
		Handler:     &GoogleSheetsHandler{},
	})
	RegisterType(IntegrationType{
		Type:        "airtable",
		Name:        "Airtable",
		Category:    database.CategoryDatabase,
		Description: "Sync records from an Airtable base",
		Handler:     &AirtableHandler{},
	})
	RegisterType(IntegrationType{
		Type:        "custom_webhook",
		Name:        "Custom Webhook",
		Category:    database.CategoryNotification,
		Description: "Deliver platform events to a custom HTTP endpoint",
		Handler:     &WebhookHandler{},
	})
	RegisterType(IntegrationType{
		Type:        "slack_webhook",
		Name:        "Slack",
		Category:    database.CategoryNotification,
		Description: "Deliver platform events to a Slack incoming webhook",
		Handler:     &SlackWebhookHandler{},
	})
	RegisterType(IntegrationType{
		Type:        "zapier",
		Name:        "Zapier",
		Category:    database.CategoryAutomation,
		Description: "Trigger Zapier automations from platform events",
		Handler:     &WebhookHandler{},
	})
}
