package integrations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var webhookClient = &http.Client{Timeout: 10 * time.Second}

// WebhookHandler delivers platform events to an arbitrary HTTP endpoint as JSON
// POSTs. It backs both the custom_webhook and the zapier integration types.
type WebhookHandler struct{}

func webhookURLFromConfig(config map[string]interface{}) (string, error) {
	url, ok := config["webhook_url"].(string)
	if !ok || url == "" {
		return "", fmt.Errorf("webhook_url is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("webhook_url must be an http(s) URL")
	}
	return url, nil
}

func postJSON(url string, payload interface{}, headers map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := webhookClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint responded with status %d", resp.StatusCode)
	}
	return nil
}

func (h *WebhookHandler) TestConnection(config map[string]interface{}) (*TestResult, error) {
	url, err := webhookURLFromConfig(config)
	if err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}

	payload := map[string]interface{}{
		"event":     "connection.test",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := postJSON(url, payload, extraHeaders(config)); err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}
	return &TestResult{Success: true, Message: "webhook endpoint reachable"}, nil
}

func (h *WebhookHandler) HandleEvent(eventName string, data map[string]interface{}, config map[string]interface{}) error {
	url, err := webhookURLFromConfig(config)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"event":     eventName,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return postJSON(url, payload, extraHeaders(config))
}

// extraHeaders reads an optional headers map from the config, e.g. for shared
// secrets the receiving end verifies.
func extraHeaders(config map[string]interface{}) map[string]string {
	raw, ok := config["headers"].(map[string]interface{})
	if !ok {
		return nil
	}
	headers := make(map[string]string, len(raw))
	for key, value := range raw {
		if s, ok := value.(string); ok {
			headers[key] = s
		}
	}
	return headers
}

// SlackWebhookHandler delivers platform events to a Slack incoming webhook,
// formatted as a simple text message.
type SlackWebhookHandler struct{}

func (h *SlackWebhookHandler) TestConnection(config map[string]interface{}) (*TestResult, error) {
	url, err := webhookURLFromConfig(config)
	if err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}

	payload := map[string]interface{}{"text": "Connection test from the messaging platform"}
	if err := postJSON(url, payload, nil); err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}
	return &TestResult{Success: true, Message: "Slack webhook reachable"}, nil
}

func (h *SlackWebhookHandler) HandleEvent(eventName string, data map[string]interface{}, config map[string]interface{}) error {
	url, err := webhookURLFromConfig(config)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("*%s*", eventName)
	if pretty, err := json.MarshalIndent(data, "", "  "); err == nil && len(data) > 0 {
		text = fmt.Sprintf("*%s*\n```%s```", eventName, string(pretty))
	}

	return postJSON(url, map[string]interface{}{"text": text}, nil)
}
