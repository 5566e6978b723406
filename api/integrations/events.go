package integrations

import (
	"encoding/json"
	"log"
	"time"

	"backend/database"
)

// TriggerEvent fans one platform event out to every subscribed notification or
// automation integration, optionally scoped to one user. Event names are opaque
// free-form strings owned by the emitting component. Delivery is sequential
// with a pacing delay between calls; one integration's failure never aborts
// delivery to the rest.
func (s *IntegrationService) TriggerEvent(eventName string, data map[string]interface{}, userID *uint) error {
	candidates, err := database.FindEventIntegrations(s.DB, userID)
	if err != nil {
		return err
	}

	delivered := false
	for _, integration := range candidates {
		typeInfo, ok := GetType(integration.IntegrationType)
		if !ok {
			log.Printf("Skipping integration %d with unknown type %s", integration.ID, integration.IntegrationType)
			continue
		}

		eventHandler, ok := typeInfo.Handler.(EventHandler)
		if !ok {
			continue
		}

		config := map[string]interface{}{}
		if len(integration.Config) > 0 {
			if err := json.Unmarshal(integration.Config, &config); err != nil {
				log.Printf("Skipping integration %d with unparsable config: %v", integration.ID, err)
				continue
			}
		}

		if !subscribedTo(config, eventName) {
			continue
		}

		// Pace deliveries; the delay is skipped before the first call and
		// therefore also after the last one.
		if delivered && s.EventDelay > 0 {
			time.Sleep(s.EventDelay)
		}
		delivered = true

		start := time.Now()
		err := eventHandler.HandleEvent(eventName, data, config)
		duration := time.Since(start).Milliseconds()

		if err != nil {
			log.Printf("Event %s delivery to integration %d failed: %v", eventName, integration.ID, err)
			s.writeLog(integration.ID, eventName, "outbound", database.LogStatusFailed, 0, &duration, err.Error())
			continue
		}

		s.writeLog(integration.ID, eventName, "outbound", database.LogStatusSuccess, 1, &duration, "event delivered")
	}

	return nil
}

// subscribedTo checks the optional events allow-list in an integration config.
// An absent or malformed list means subscribed to everything.
func subscribedTo(config map[string]interface{}, eventName string) bool {
	raw, ok := config["events"]
	if !ok {
		return true
	}

	events, ok := raw.([]interface{})
	if !ok {
		return true
	}

	for _, entry := range events {
		if name, ok := entry.(string); ok && name == eventName {
			return true
		}
	}
	return false
}
