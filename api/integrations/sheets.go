package integrations

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var dataClient = &http.Client{Timeout: 30 * time.Second}

func getJSON(requestURL string, bearerToken string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return err
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := dataClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider responded with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GoogleSheetsHandler syncs rows from a Google Sheets spreadsheet over the
// Sheets v4 REST API.
type GoogleSheetsHandler struct{}

func sheetsConfig(config map[string]interface{}) (spreadsheetID string, accessToken string, sheetRange string, err error) {
	spreadsheetID, _ = config["spreadsheet_id"].(string)
	if spreadsheetID == "" {
		return "", "", "", fmt.Errorf("spreadsheet_id is required")
	}
	accessToken, _ = config["access_token"].(string)
	if accessToken == "" {
		return "", "", "", fmt.Errorf("access_token is required")
	}
	sheetRange, _ = config["range"].(string)
	if sheetRange == "" {
		sheetRange = "A:Z"
	}
	return spreadsheetID, accessToken, sheetRange, nil
}

func (h *GoogleSheetsHandler) TestConnection(config map[string]interface{}) (*TestResult, error) {
	spreadsheetID, accessToken, _, err := sheetsConfig(config)
	if err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}

	var meta struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	}
	requestURL := fmt.Sprintf("https://sheets.googleapis.com/v4/spreadsheets/%s?fields=properties.title",
		url.PathEscape(spreadsheetID))
	if err := getJSON(requestURL, accessToken, &meta); err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}

	return &TestResult{Success: true, Message: fmt.Sprintf("connected to spreadsheet %q", meta.Properties.Title)}, nil
}

func (h *GoogleSheetsHandler) Sync(config map[string]interface{}, options SyncOptions, userID uint) (*SyncResult, error) {
	spreadsheetID, accessToken, sheetRange, err := sheetsConfig(config)
	if err != nil {
		return nil, err
	}

	var values struct {
		Values [][]interface{} `json:"values"`
	}
	requestURL := fmt.Sprintf("https://sheets.googleapis.com/v4/spreadsheets/%s/values/%s",
		url.PathEscape(spreadsheetID), url.PathEscape(sheetRange))
	if err := getJSON(requestURL, accessToken, &values); err != nil {
		return nil, err
	}

	return &SyncResult{
		Success:      true,
		RecordsCount: len(values.Values),
		Message:      fmt.Sprintf("fetched %d rows", len(values.Values)),
	}, nil
}

// AirtableHandler syncs records from an Airtable base table
type AirtableHandler struct{}

func airtableConfig(config map[string]interface{}) (baseID string, table string, apiKey string, err error) {
	baseID, _ = config["base_id"].(string)
	if baseID == "" {
		return "", "", "", fmt.Errorf("base_id is required")
	}
	table, _ = config["table"].(string)
	if table == "" {
		return "", "", "", fmt.Errorf("table is required")
	}
	apiKey, _ = config["api_key"].(string)
	if apiKey == "" {
		return "", "", "", fmt.Errorf("api_key is required")
	}
	return baseID, table, apiKey, nil
}

func (h *AirtableHandler) TestConnection(config map[string]interface{}) (*TestResult, error) {
	baseID, table, apiKey, err := airtableConfig(config)
	if err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}

	var records struct {
		Records []json.RawMessage `json:"records"`
	}
	requestURL := fmt.Sprintf("https://api.airtable.com/v0/%s/%s?maxRecords=1",
		url.PathEscape(baseID), url.PathEscape(table))
	if err := getJSON(requestURL, apiKey, &records); err != nil {
		return &TestResult{Success: false, Message: err.Error()}, nil
	}

	return &TestResult{Success: true, Message: "connected to Airtable base"}, nil
}

func (h *AirtableHandler) Sync(config map[string]interface{}, options SyncOptions, userID uint) (*SyncResult, error) {
	baseID, table, apiKey, err := airtableConfig(config)
	if err != nil {
		return nil, err
	}

	count := 0
	offset := ""
	for {
		requestURL := fmt.Sprintf("https://api.airtable.com/v0/%s/%s",
			url.PathEscape(baseID), url.PathEscape(table))
		if offset != "" {
			requestURL += "?offset=" + url.QueryEscape(offset)
		}

		var page struct {
			Records []json.RawMessage `json:"records"`
			Offset  string            `json:"offset"`
		}
		if err := getJSON(requestURL, apiKey, &page); err != nil {
			return nil, err
		}

		count += len(page.Records)
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	return &SyncResult{
		Success:      true,
		RecordsCount: count,
		Message:      fmt.Sprintf("fetched %d records", count),
	}, nil
}
