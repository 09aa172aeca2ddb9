package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/testutil"
)

// TestAddAppToRepo_AppendSemantics tests that members append in order
// and duplicates are permitted
func TestAddAppToRepo_AppendSemantics(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)
	ctx := context.Background()

	username := testutil.UniqueName("kim")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	first := testutil.CreateTestApp(t, env, user.ID, testutil.UniqueName("first"))
	second := testutil.CreateTestApp(t, env, user.ID, testutil.UniqueName("second"))
	repo := testutil.CreateTestRepo(t, env, user.ID, testutil.UniqueName("repo"))

	for _, id := range []int64{first.ID, second.ID, first.ID} {
		if err := env.DB.AddAppToRepo(ctx, repo.ID, id); err != nil {
			t.Fatalf("AddAppToRepo failed: %v", err)
		}
	}

	got, err := env.DB.GetRepoByTitle(ctx, repo.Title)
	if err != nil {
		t.Fatalf("GetRepoByTitle failed: %v", err)
	}
	want := []int64{first.ID, second.ID, first.ID}
	if len(got.Apps) != len(want) {
		t.Fatalf("apps = %v, want %v", got.Apps, want)
	}
	for i := range want {
		if got.Apps[i] != want[i] {
			t.Fatalf("apps = %v, want %v", got.Apps, want)
		}
	}

	// RepoApps resolves members in stored order, duplicates included
	apps, err := env.DB.RepoApps(ctx, got)
	if err != nil {
		t.Fatalf("RepoApps failed: %v", err)
	}
	if len(apps) != 3 || apps[0].ID != first.ID || apps[1].ID != second.ID || apps[2].ID != first.ID {
		t.Errorf("resolved members out of order: %+v", apps)
	}
}

// TestDeleteRepo_LeavesApps tests that deleting a repo never deletes
// its member apps
func TestDeleteRepo_LeavesApps(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)
	ctx := context.Background()

	username := testutil.UniqueName("liam")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	app := testutil.CreateTestApp(t, env, user.ID, testutil.UniqueName("app"))
	repo := testutil.CreateTestRepo(t, env, user.ID, testutil.UniqueName("repo"))
	if err := env.DB.AddAppToRepo(ctx, repo.ID, app.ID); err != nil {
		t.Fatalf("AddAppToRepo failed: %v", err)
	}

	if err := env.DB.DeleteRepo(ctx, repo.ID); err != nil {
		t.Fatalf("DeleteRepo failed: %v", err)
	}

	if _, err := env.DB.GetRepoByTitle(ctx, repo.Title); !errors.Is(err, db.ErrRepoNotFound) {
		t.Errorf("deleted repo lookup: got %v, want ErrRepoNotFound", err)
	}
	if _, err := env.DB.GetAppByID(ctx, app.ID); err != nil {
		t.Errorf("member app deleted with repo: %v", err)
	}
}

// TestCreateRepo_DuplicateTitle tests the repo title unique index mapping
func TestCreateRepo_DuplicateTitle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	username := testutil.UniqueName("mona")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	title := testutil.UniqueName("repo")
	testutil.CreateTestRepo(t, env, user.ID, title)

	_, err := env.DB.CreateRepo(context.Background(), user.ID, title, "")
	uv := db.AsUniqueViolation(err)
	if uv == nil {
		t.Fatalf("expected UniqueViolationError, got %v", err)
	}
	if uv.Column != "title" {
		t.Errorf("Column = %q, want title", uv.Column)
	}
}
