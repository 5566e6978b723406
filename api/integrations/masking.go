package integrations

import "strings"

// Config keys whose values must never leave the service unmasked. Matching is a
// case-insensitive substring check so "apiKey", "access_token", "webhook_url"
// and friends are all caught.
var sensitiveKeyMarkers = []string{
	"key",
	"token",
	"secret",
	"password",
	"credential",
	"webhook",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveKeyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// maskValue keeps the first and last four characters of a secret for
// recognizability and redacts the middle. Short secrets are fully redacted.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + "****" + value[len(value)-4:]
}

// MaskConfig returns a copy of the config with all sensitive values redacted.
// Masking is presentation-only, the stored config is never touched. Nested maps
// are masked recursively.
func MaskConfig(config map[string]interface{}) map[string]interface{} {
	if config == nil {
		return nil
	}
	masked := make(map[string]interface{}, len(config))
	for key, value := range config {
		switch v := value.(type) {
		case map[string]interface{}:
			masked[key] = MaskConfig(v)
		case string:
			if isSensitiveKey(key) {
				masked[key] = maskValue(v)
			} else {
				masked[key] = v
			}
		default:
			if isSensitiveKey(key) {
				masked[key] = "********"
			} else {
				masked[key] = v
			}
		}
	}
	return masked
}
