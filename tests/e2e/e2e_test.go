package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/vexcel-trust/recordsdb/tests/helpers"
)

// TestE2EWithFullStack boots the full container stack (MariaDB + the
// service image built from the Dockerfile, SEED_DATA=true) and drives
// the public HTTP surface end to end with the seeded accounts.
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	baseURL, err := tc.ServiceBaseURL(ctx)
	if err != nil {
		t.Fatalf("Failed to resolve service base URL: %v", err)
	}

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	t.Run("HealthCheck", func(t *testing.T) {
		testHealthEndpoint(t, baseURL)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("AnonymousAccessIsRejected", func(t *testing.T) {
		testAnonymousAccessIsRejected(t, baseURL)
	})

	t.Run("StaffRecordWorkflow", func(t *testing.T) {
		testStaffRecordWorkflow(t, baseURL)
	})

	t.Run("ParentScope", func(t *testing.T) {
		testParentScope(t, baseURL)
	})

	t.Run("EmergencyLink", func(t *testing.T) {
		testEmergencyLink(t, baseURL)
	})
}

func testHealthEndpoint(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		t.Fatalf("Failed to get health: %v", err)
	}
	helpers.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	helpers.ParseJSON(t, resp, &result)
	if result.Status != "healthy" || result.Database != "ok" {
		t.Errorf("Unexpected health payload: %+v", result)
	}
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, string(body))
	}
	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(body))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testAnonymousAccessIsRejected(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/api/students")
	if err != nil {
		t.Fatalf("Failed to access API: %v", err)
	}
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
	helpers.AssertErrorType(t, resp, "unauthenticated")
}

// testStaffRecordWorkflow walks the seeded staff account through the
// everyday flow: create a student, write record versions, read history,
// check the dashboard.
func testStaffRecordWorkflow(t *testing.T, baseURL string) {
	staff := helpers.AcquireToken(t, baseURL, "staff@vexcel.org", "staff123")

	body, _ := json.Marshal(map[string]interface{}{
		"udid":       "UDID-E2E-001",
		"ipp_number": "IPP-E2E-001",
		"name":       "E2E Student",
	})
	resp := helpers.AuthorizedRequest(t, "POST", baseURL+"/api/students", staff, body)
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var student struct {
		ID uint `json:"id"`
	}
	helpers.ParseJSON(t, resp, &student)

	// Two versions of the same kind.
	for i, fields := range []map[string]interface{}{
		{"eating": "Needs assistance", "toileting": "Needs assistance"},
		{"eating": "Independent"},
	} {
		body, _ = json.Marshal(map[string]interface{}{
			"student_id":    student.ID,
			"entity_kind":   "adl",
			"fields":        fields,
			"change_reason": fmt.Sprintf("e2e write %d", i+1),
		})
		resp = helpers.AuthorizedRequest(t, "POST", baseURL+"/api/records", staff, body)
		helpers.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	resp = helpers.AuthorizedRequest(t, "GET", fmt.Sprintf("%s/api/records/adl/%d", baseURL, student.ID), staff, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var history []struct {
		VersionNumber uint                   `json:"version_number"`
		Snapshot      map[string]interface{} `json:"snapshot"`
	}
	helpers.ParseJSON(t, resp, &history)
	if len(history) != 2 {
		t.Fatalf("History length = %d, want 2", len(history))
	}
	if history[0].VersionNumber != 2 || history[0].Snapshot["toileting"] != "Needs assistance" {
		t.Errorf("Merged head version wrong: %+v", history[0])
	}

	// The profile projection carries the merged current state.
	resp = helpers.AuthorizedRequest(t, "GET", fmt.Sprintf("%s/api/students/%d", baseURL, student.ID), staff, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var profile struct {
		Records map[string]map[string]interface{} `json:"records"`
	}
	helpers.ParseJSON(t, resp, &profile)
	if profile.Records["adl"]["eating"] != "Independent" {
		t.Errorf("Projection eating = %v, want Independent", profile.Records["adl"]["eating"])
	}

	resp = helpers.AuthorizedRequest(t, "GET", baseURL+"/api/dashboard/stats", staff, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Staff cannot manage accounts or hard-delete.
	resp = helpers.AuthorizedRequest(t, "GET", baseURL+"/api/auth/users", staff, nil)
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	helpers.AssertErrorType(t, resp, "forbidden")

	resp = helpers.AuthorizedRequest(t, "DELETE", fmt.Sprintf("%s/api/students/%d", baseURL, student.ID), staff, nil)
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// The admin can.
	admin := helpers.AcquireToken(t, baseURL, "admin@vexcel.org", "admin123")
	resp = helpers.AuthorizedRequest(t, "DELETE", fmt.Sprintf("%s/api/students/%d", baseURL, student.ID), admin, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}

// testParentScope checks the seeded parent account only reaches its own
// linked student.
func testParentScope(t *testing.T, baseURL string) {
	parent := helpers.AcquireToken(t, baseURL, "parent@vexcel.org", "parent123")

	resp := helpers.AuthorizedRequest(t, "GET", baseURL+"/api/students/ipp/IPP-3211", parent, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var profile struct {
		Student struct {
			ID   uint   `json:"id"`
			UDID string `json:"udid"`
		} `json:"student"`
	}
	helpers.ParseJSON(t, resp, &profile)
	if profile.Student.UDID != "UDID-TN-00042" {
		t.Errorf("Parent resolved the wrong student: %+v", profile.Student)
	}

	resp = helpers.AuthorizedRequest(t, "GET", baseURL+"/api/students", parent, nil)
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	helpers.AssertErrorType(t, resp, "forbidden")

	resp = helpers.AuthorizedRequest(t, "GET", fmt.Sprintf("%s/api/reports/student/%d", baseURL, profile.Student.ID), parent, nil)
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func testEmergencyLink(t *testing.T, baseURL string) {
	admin := helpers.AcquireToken(t, baseURL, "admin@vexcel.org", "admin123")

	// Resolve the seeded student's id by IPP.
	resp := helpers.AuthorizedRequest(t, "GET", baseURL+"/api/students/ipp/IPP-3211", admin, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var profile struct {
		Student struct {
			ID uint `json:"id"`
		} `json:"student"`
	}
	helpers.ParseJSON(t, resp, &profile)

	resp = helpers.AuthorizedRequest(t, "POST", fmt.Sprintf("%s/api/students/%d/regenerate-public-link", baseURL, profile.Student.ID), admin, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var rotated struct {
		Token string `json:"token"`
	}
	helpers.ParseJSON(t, resp, &rotated)
	if rotated.Token == "" {
		t.Fatal("Rotation returned an empty token")
	}

	// Anonymous resolve with the live token.
	resp, err := http.Get(baseURL + "/api/emergency/" + rotated.Token)
	if err != nil {
		t.Fatalf("Failed to resolve emergency link: %v", err)
	}
	helpers.AssertStatus(t, resp, http.StatusOK)
	var view map[string]interface{}
	helpers.ParseJSON(t, resp, &view)
	if view["name"] == "" || view["name"] == nil {
		t.Errorf("Emergency view missing name: %v", view)
	}
	if _, leaked := view["udid"]; leaked {
		t.Errorf("Emergency view leaks udid: %v", view)
	}

	// A made-up token is not found.
	resp, err = http.Get(baseURL + "/api/emergency/not-a-real-token")
	if err != nil {
		t.Fatalf("Failed to probe bad token: %v", err)
	}
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	helpers.AssertErrorType(t, resp, "not_found")
}
