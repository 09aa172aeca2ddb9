package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/testutil"
)

// TestSessionLifecycle tests create, clear and reuse: sign-out clears
// the logged-in user but never deletes the row, and a later login
// attaches to the same session.
func TestSessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)
	ctx := context.Background()

	username := testutil.UniqueName("frank")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	session, err := env.DB.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.LoggedInUser == nil || *session.LoggedInUser != user.ID {
		t.Fatalf("LoggedInUser = %v, want %d", session.LoggedInUser, user.ID)
	}

	// Sign out: user cleared, row persists
	if err := env.DB.ClearSessionUser(ctx, session.ID); err != nil {
		t.Fatalf("ClearSessionUser failed: %v", err)
	}
	got, err := env.DB.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("session row deleted on sign-out: %v", err)
	}
	if got.LoggedInUser != nil {
		t.Errorf("LoggedInUser = %v after sign-out, want nil", got.LoggedInUser)
	}

	// Later login reuses the same row
	other := testutil.CreateTestUser(t, env, testutil.UniqueName("grace"), testutil.UniqueName("grace")+"@test.com", "password2")
	if err := env.DB.SetSessionUser(ctx, session.ID, other.ID); err != nil {
		t.Fatalf("SetSessionUser failed: %v", err)
	}
	got, err = env.DB.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.LoggedInUser == nil || *got.LoggedInUser != other.ID {
		t.Errorf("LoggedInUser = %v after re-login, want %d", got.LoggedInUser, other.ID)
	}
}

// TestGetSession_NotFound tests the sentinel for stale session ids
func TestGetSession_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	_, err := env.DB.GetSession(context.Background(), 999999)
	if !errors.Is(err, db.ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}

	if err := env.DB.SetSessionUser(context.Background(), 999999, 1); !errors.Is(err, db.ErrSessionNotFound) {
		t.Errorf("SetSessionUser on missing row: got %v, want ErrSessionNotFound", err)
	}
}
