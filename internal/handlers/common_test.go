package handlers

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func respondStatusAndType(t *testing.T, err error) (int, string) {
	t.Helper()

	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})

	resp, reqErr := app.Test(httptest.NewRequest("GET", "/t", nil))
	if reqErr != nil {
		t.Fatalf("Failed to execute request: %v", reqErr)
	}
	defer resp.Body.Close()

	var env struct {
		Type string `json:"type"`
	}
	if decErr := json.NewDecoder(resp.Body).Decode(&env); decErr != nil {
		t.Fatalf("Failed to decode envelope: %v", decErr)
	}
	return resp.StatusCode, env.Type
}

func TestRespondErrorClassifiesConnectivityFailures(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"conn done", sql.ErrConnDone, fiber.StatusServiceUnavailable, "unavailable"},
		{"bad conn", driver.ErrBadConn, fiber.StatusServiceUnavailable, "unavailable"},
		{"wrapped conn done", fmt.Errorf("ping students: %w", sql.ErrConnDone), fiber.StatusServiceUnavailable, "unavailable"},
		{"dial failure", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, fiber.StatusServiceUnavailable, "unavailable"},
		{"semantic error stays opaque", errors.New("snapshot marshal failed"), fiber.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, kind := respondStatusAndType(t, tc.err)
			if status != tc.wantStatus {
				t.Errorf("status = %d, want %d", status, tc.wantStatus)
			}
			if kind != tc.wantType {
				t.Errorf("type = %q, want %q", kind, tc.wantType)
			}
		})
	}
}
