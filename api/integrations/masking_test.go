package integrations

import "testing"

func Test_MaskConfig(t *testing.T) {
	config := map[string]interface{}{
		"apiKey":        "abcd1234efgh",
		"webhook_url":   "https://hooks.example.com/T000/B000/XXXX",
		"secret":        "shhh",
		"spreadsheetId": "1BxiMVs0XRA5nFMdKvBdBZjgmUts",
		"label":         "a",
	}

	masked := MaskConfig(config)

	if masked["apiKey"] != "abcd****efgh" {
		t.Fatalf("Expected long sensitive value to keep first and last four characters, got %v", masked["apiKey"])
	}
	if masked["secret"] != "********" {
		t.Fatalf("Expected short sensitive value to be fully redacted, got %v", masked["secret"])
	}
	url, _ := masked["webhook_url"].(string)
	if url == config["webhook_url"] {
		t.Fatalf("Expected webhook url to be masked")
	}
	if masked["spreadsheetId"] != "1BxiMVs0XRA5nFMdKvBdBZjgmUts" {
		t.Fatalf("Expected non-sensitive value to pass through, got %v", masked["spreadsheetId"])
	}
	if masked["label"] != "a" {
		t.Fatalf("Expected non-sensitive value to pass through, got %v", masked["label"])
	}

	// Source map stays untouched
	if config["apiKey"] != "abcd1234efgh" {
		t.Fatalf("Expected masking to copy, not mutate")
	}
}

func Test_MaskConfigNested(t *testing.T) {
	config := map[string]interface{}{
		"auth": map[string]interface{}{
			"access_token": "tok_1234567890abcdef",
			"region":       "eu-west-1",
		},
	}

	masked := MaskConfig(config)

	auth, ok := masked["auth"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected nested map in masked config, got %T", masked["auth"])
	}
	if auth["access_token"] != "tok_****cdef" {
		t.Fatalf("Expected nested token to be masked, got %v", auth["access_token"])
	}
	if auth["region"] != "eu-west-1" {
		t.Fatalf("Expected nested non-sensitive value to pass through, got %v", auth["region"])
	}
}

func Test_MaskConfigNonStringSensitive(t *testing.T) {
	config := map[string]interface{}{
		"token_ttl": 3600,
	}

	masked := MaskConfig(config)
	if masked["token_ttl"] != "********" {
		t.Fatalf("Expected non-string sensitive value to be fully redacted, got %v", masked["token_ttl"])
	}
}

func Test_MaskConfigNil(t *testing.T) {
	if masked := MaskConfig(nil); masked != nil {
		t.Fatalf("Expected nil for nil config, got %v", masked)
	}
}
