package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

// Envelope is the error shape every non-2xx response carries.
type Envelope struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type"`
}

// AssertStatus verifies the HTTP status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// ParseJSON decodes the response body into the target
func ParseJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	defer resp.Body.Close()

	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

// AssertErrorType verifies the machine-readable error classification on
// a non-2xx response.
func AssertErrorType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	var env Envelope
	ParseJSON(t, resp, &env)
	if env.OK {
		t.Errorf("Expected an error envelope, got ok=true")
	}
	if env.Type != expected {
		t.Errorf("Expected error type %q, got %q (message: %s)", expected, env.Type, env.Message)
	}
}
