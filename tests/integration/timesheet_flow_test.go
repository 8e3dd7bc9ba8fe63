package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTimesheetFlow(t *testing.T) {
	app := setupApp(t)

	adminToken, _, _ := app.registerOrg(t, "Timesheet Org", "admin@time.test", "password123")
	app.createUser(t, adminToken, "member@time.test", "password123", "member")
	memberToken, _ := app.loginUser(t, "member@time.test", "password123")
	projectID := app.createProject(t, adminToken, "Field Study")

	var entryID string

	t.Run("member saves entries", func(t *testing.T) {
		body := fmt.Sprintf(`{"entries":[{"project_id":%q,"date":"2026-03-04","hours":6,"description":"Lab work","status":"pending"}]}`, projectID)
		rec := app.request("PUT", "/api/v1/timesheets", body, memberToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		entries := parseJSON(t, rec)["entries"].([]interface{})
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
	})

	t.Run("saving the same day overwrites", func(t *testing.T) {
		body := fmt.Sprintf(`{"entries":[{"project_id":%q,"date":"2026-03-04","hours":8,"description":"Lab work plus writeup","status":"pending"}]}`, projectID)
		rec := app.request("PUT", "/api/v1/timesheets", body, memberToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/timesheets?from=2026-03-01&to=2026-03-31", "", memberToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		entries := parseJSON(t, rec)["entries"].([]interface{})
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry after overwrite, got %d", len(entries))
		}
		entry := entries[0].(map[string]interface{})
		if entry["hours"].(float64) != 8 {
			t.Errorf("expected 8 hours, got %v", entry["hours"])
		}
		entryID = entry["id"].(string)
	})

	t.Run("rejects more than 24 hours", func(t *testing.T) {
		body := fmt.Sprintf(`{"entries":[{"project_id":%q,"date":"2026-03-05","hours":25}]}`, projectID)
		rec := app.request("PUT", "/api/v1/timesheets", body, memberToken)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("member cannot list approvals", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/timesheets/approvals", "", memberToken)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("manager sees pending entry", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/timesheets/approvals", "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 pending entry, got %d", len(data))
		}
	})

	t.Run("manager approves batch", func(t *testing.T) {
		body := fmt.Sprintf(`{"ids":[%q]}`, entryID)
		rec := app.request("POST", "/api/v1/timesheets/approve", body, adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		if approved := parseJSON(t, rec)["approved"].(float64); approved != 1 {
			t.Errorf("expected 1 approved, got %v", approved)
		}
	})

	t.Run("approved entry survives autosave", func(t *testing.T) {
		body := fmt.Sprintf(`{"entries":[{"project_id":%q,"date":"2026-03-04","hours":2,"status":"draft"}]}`, projectID)
		rec := app.request("PUT", "/api/v1/timesheets", body, memberToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/timesheets?from=2026-03-01&to=2026-03-31", "", memberToken)
		entries := parseJSON(t, rec)["entries"].([]interface{})
		entry := entries[0].(map[string]interface{})
		if entry["status"] != "approved" {
			t.Errorf("expected approved status preserved, got %v", entry["status"])
		}
		if entry["hours"].(float64) != 8 {
			t.Errorf("expected 8 hours preserved, got %v", entry["hours"])
		}
	})

	t.Run("cannot reject an approved entry", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/timesheets/"+entryID+"/reject", `{"reason":"Wrong project"}`, adminToken)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("reject a pending entry with reason", func(t *testing.T) {
		body := fmt.Sprintf(`{"entries":[{"project_id":%q,"date":"2026-03-06","hours":4,"status":"pending"}]}`, projectID)
		rec := app.request("PUT", "/api/v1/timesheets", body, memberToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		entries := parseJSON(t, rec)["entries"].([]interface{})
		pendingID := entries[0].(map[string]interface{})["id"].(string)

		rec = app.request("POST", "/api/v1/timesheets/"+pendingID+"/reject", `{"reason":"Missing description"}`, adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
		}
		entry := parseJSON(t, rec)["entry"].(map[string]interface{})
		if entry["status"] != "rejected" {
			t.Errorf("expected rejected, got %v", entry["status"])
		}
		if entry["rejection_reason"] != "Missing description" {
			t.Errorf("expected reason recorded, got %v", entry["rejection_reason"])
		}
	})
}
