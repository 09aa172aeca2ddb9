package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/testutil"
)

// TestCreateUser_ReturnsRow tests that insertion returns the stored row
func TestCreateUser_ReturnsRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	username := testutil.UniqueName("alice")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "hunter2hunter2")

	if user.ID == 0 {
		t.Error("expected non-zero user id")
	}
	if user.Username != username {
		t.Errorf("Username = %q, want %q", user.Username, username)
	}

	got, err := env.DB.GetUserByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("looked-up id = %d, want %d", got.ID, user.ID)
	}
}

// TestCreateUser_DuplicateUsername tests the typed unique-violation error
func TestCreateUser_DuplicateUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	username := testutil.UniqueName("bob")
	testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	_, err := env.DB.CreateUser(context.Background(), username, "other@test.com", "hash")
	uv := db.AsUniqueViolation(err)
	if uv == nil {
		t.Fatalf("expected UniqueViolationError, got %v", err)
	}
	if uv.Column != "username" {
		t.Errorf("Column = %q, want username", uv.Column)
	}
}

// TestCreateUser_DuplicateEmail tests the email unique index mapping
func TestCreateUser_DuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	email := testutil.UniqueName("carol") + "@test.com"
	testutil.CreateTestUser(t, env, testutil.UniqueName("carol"), email, "password1")

	_, err := env.DB.CreateUser(context.Background(), testutil.UniqueName("carol"), email, "hash")
	uv := db.AsUniqueViolation(err)
	if uv == nil {
		t.Fatalf("expected UniqueViolationError, got %v", err)
	}
	if uv.Column != "email" {
		t.Errorf("Column = %q, want email", uv.Column)
	}
}

// TestAuthenticateUser_Success tests that signup credentials log in
func TestAuthenticateUser_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	username := testutil.UniqueName("dave")
	created := testutil.CreateTestUser(t, env, username, username+"@test.com", "correct-password")

	user, err := env.DB.AuthenticateUser(context.Background(), username, "correct-password")
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("authenticated id = %d, want %d", user.ID, created.ID)
	}
}

// TestAuthenticateUser_Failures tests that bad passwords and unknown
// users fail identically
func TestAuthenticateUser_Failures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	username := testutil.UniqueName("erin")
	testutil.CreateTestUser(t, env, username, username+"@test.com", "correct-password")

	_, err := env.DB.AuthenticateUser(context.Background(), username, "wrong-password")
	if !errors.Is(err, db.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}

	_, err = env.DB.AuthenticateUser(context.Background(), "no-such-user", "whatever")
	if !errors.Is(err, db.ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}
