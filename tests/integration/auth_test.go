package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	accessToken, _, userID := app.registerOrg(t, "Acme Research", "admin@acme.test", "password123")
	if accessToken == "" || userID == "" {
		t.Fatal("expected tokens and user id from registration")
	}

	// The registering user is the organization admin.
	rec := app.request("GET", "/api/v1/profile", "", accessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
	}
	profile := parseJSON(t, rec)["user"].(map[string]interface{})
	if profile["role"] != "admin" {
		t.Errorf("expected admin role, got %v", profile["role"])
	}

	// Login with the same credentials works.
	loginToken, _ := app.loginUser(t, "admin@acme.test", "password123")
	if loginToken == "" {
		t.Fatal("expected access token from login")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)

	app.registerOrg(t, "First Org", "dup@acme.test", "password123")

	body := `{"organization_name":"Second Org","email":"dup@acme.test","password":"password123"}`
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupApp(t)

	app.registerOrg(t, "Acme", "user@acme.test", "password123")

	body := `{"email":"user@acme.test","password":"wrongpassword"}`
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRefreshTokenFlow(t *testing.T) {
	app := setupApp(t)

	_, refreshToken, _ := app.registerOrg(t, "Acme", "refresh@acme.test", "password123")

	body := fmt.Sprintf(`{"refresh_token":%q}`, refreshToken)
	rec := app.request("POST", "/api/v1/auth/refresh", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["access_token"] == "" {
		t.Fatal("expected new access token")
	}

	// The old refresh token was rotated out and is now rejected.
	rec = app.request("POST", "/api/v1/auth/refresh", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for reused refresh token, got %d", rec.Code)
	}
}

func TestAccessTokenRequired(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/projects", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMemberCannotManage(t *testing.T) {
	app := setupApp(t)

	adminToken, _, _ := app.registerOrg(t, "Acme", "admin@acme.test", "password123")
	app.createUser(t, adminToken, "member@acme.test", "password123", "member")
	memberToken, _ := app.loginUser(t, "member@acme.test", "password123")

	rec := app.request("POST", "/api/v1/projects", `{"name":"Forbidden"}`, memberToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/admin/users", "", memberToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin route, got %d", rec.Code)
	}
}
