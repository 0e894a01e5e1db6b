package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// APIClient is a thin HTTP client for driving the consent API in tests
// without going through the SDK, so assertions can target the raw wire
// format the server emits.
type APIClient struct {
	BaseURL          string
	APIKey           string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
}

// NewAPIClient creates a client for the given server and key.
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewAPIClientFromEnv creates a client from ASSENT_BASE_URL and
// ASSENT_API_KEY, defaulting to the local dev server.
func NewAPIClientFromEnv() *APIClient {
	baseURL := os.Getenv("ASSENT_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8184"
	}
	return NewAPIClient(baseURL, os.Getenv("ASSENT_API_KEY"))
}

// GET sends a GET request with the API key attached and records the response.
func (c *APIClient) GET(path string) error {
	return c.GETWithHeaders(path, nil)
}

// GETWithHeaders sends a GET request with extra headers. The configured API
// key is attached first, so headers can override X-API-Key for negative
// auth cases.
func (c *APIClient) GETWithHeaders(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.LastResponse = resp
	c.LastResponseBody, err = io.ReadAll(resp.Body)
	return err
}

// DecodeJSON unmarshals the last response body into v.
func (c *APIClient) DecodeJSON(v any) error {
	if c.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	return json.Unmarshal(c.LastResponseBody, v)
}

// Header returns a header from the last response, or "" before any request.
func (c *APIClient) Header(name string) string {
	if c.LastResponse == nil {
		return ""
	}
	return c.LastResponse.Header.Get(name)
}
