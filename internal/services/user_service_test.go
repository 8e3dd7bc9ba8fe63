package services

import (
	"testing"
	"time"

	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/testutil"
)

func TestRegisterOrganization(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.RegisterOrganization("Acme Research", "Admin@Example.com", "password123", "Ada Admin")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected non-empty user ID")
		}
		if user.Email != "admin@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Role != models.UserRoleAdmin {
			t.Errorf("expected admin role, got %s", user.Role)
		}
		if user.OrganizationID == "" {
			t.Fatal("expected user to belong to a new organization")
		}

		var org models.Organization
		if err := db.First(&org, "id = ?", user.OrganizationID).Error; err != nil {
			t.Fatalf("expected organization to exist: %v", err)
		}
		if org.Name != "Acme Research" {
			t.Errorf("expected organization name Acme Research, got %s", org.Name)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.RegisterOrganization("First", "dup@example.com", "password123", "One")
		testutil.AssertNoError(t, err)

		_, err = svc.RegisterOrganization("Second", "dup@example.com", "password123", "Two")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.RegisterOrganization("", "a@example.com", "password123", "A")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)

		user, err := svc.CreateUser(org.ID, "member@example.com", "password123", "Mo Member", models.UserRoleMember, 32)
		testutil.AssertNoError(t, err)

		if user.OrganizationID != org.ID {
			t.Errorf("expected organization %s, got %s", org.ID, user.OrganizationID)
		}
		if user.WeeklyCapacity != 32 {
			t.Errorf("expected capacity 32, got %f", user.WeeklyCapacity)
		}
	})

	t.Run("defaults_capacity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)

		user, err := svc.CreateUser(org.ID, "cap@example.com", "password123", "C", models.UserRoleMember, 0)
		testutil.AssertNoError(t, err)

		if user.WeeklyCapacity != models.DefaultWeeklyCapacity {
			t.Errorf("expected default capacity, got %f", user.WeeklyCapacity)
		}
	})

	t.Run("unknown_organization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("00000000-0000-0000-0000-000000000000", "x@example.com", "password123", "X", models.UserRoleMember, 40)
		testutil.AssertAppError(t, err, "ORGANIZATION_NOT_FOUND")
	})
}

func TestGetOrganizationUsers(t *testing.T) {
	t.Run("scoped_to_organization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org1 := testutil.CreateTestOrganization(t, db)
		org2 := testutil.CreateTestOrganization(t, db)
		testutil.CreateTestUser(t, db, org1.ID)
		testutil.CreateTestUser(t, db, org1.ID)
		testutil.CreateTestUser(t, db, org2.ID)

		page, err := svc.GetOrganizationUsers(org1.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 2 {
			t.Errorf("expected 2 users, got %d", page.TotalItems)
		}
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("role_and_capacity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)

		role := models.UserRoleManager
		capacity := 36.0
		_, err := svc.UpdateUser(org.ID, user.ID, &role, &capacity, nil)
		testutil.AssertNoError(t, err)

		updated, err := svc.GetUserByID(user.ID)
		testutil.AssertNoError(t, err)
		if updated.Role != models.UserRoleManager {
			t.Errorf("expected manager role, got %s", updated.Role)
		}
		if updated.WeeklyCapacity != 36 {
			t.Errorf("expected capacity 36, got %f", updated.WeeklyCapacity)
		}
	})

	t.Run("other_organization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org1 := testutil.CreateTestOrganization(t, db)
		org2 := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org2.ID)

		role := models.UserRoleAdmin
		_, err := svc.UpdateUser(org1.ID, user.ID, &role, nil, nil)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)

		loggedIn, err := svc.AttemptLogin(user.Email, "password123")
		testutil.AssertNoError(t, err)

		if loggedIn.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, loggedIn.ID)
		}
		if loggedIn.LastLoginAt == nil {
			t.Error("expected last login timestamp to be set")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)

		_, err := svc.AttemptLogin(user.Email, "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("locks_after_repeated_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)

		for i := 0; i < maxFailedLogins; i++ {
			_, err := svc.AttemptLogin(user.Email, "wrongpassword")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		_, err := svc.AttemptLogin(user.Email, "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("lockout_expires", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)

		past := time.Now().Add(-time.Minute)
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{"failed_login_attempts": maxFailedLogins, "locked_until": past}).Error; err != nil {
			t.Fatalf("failed to seed lockout: %v", err)
		}

		loggedIn, err := svc.AttemptLogin(user.Email, "password123")
		testutil.AssertNoError(t, err)
		if loggedIn.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, loggedIn.ID)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestRefreshTokenHash(t *testing.T) {
	t.Run("store_and_get", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)

		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "abc123"))

		hash, err := svc.GetRefreshTokenHash(user.ID)
		testutil.AssertNoError(t, err)
		if hash != "abc123" {
			t.Errorf("expected stored hash, got %s", hash)
		}
	})
}
