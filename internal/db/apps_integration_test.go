package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/testutil"
)

// TestCreateApp_DuplicateTitle tests the app title unique index mapping
func TestCreateApp_DuplicateTitle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	username := testutil.UniqueName("heidi")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	title := testutil.UniqueName("app")
	testutil.CreateTestApp(t, env, user.ID, title)

	_, err := env.DB.CreateApp(context.Background(), user.ID, title, "", "https://other.com", testutil.TestToken)
	uv := db.AsUniqueViolation(err)
	if uv == nil {
		t.Fatalf("expected UniqueViolationError, got %v", err)
	}
	if uv.Column != "title" {
		t.Errorf("Column = %q, want title", uv.Column)
	}
}

// TestDeleteApp_PrunesRepos tests that deleting an app removes every
// occurrence of its id from every repo before the row is dropped
func TestDeleteApp_PrunesRepos(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)
	ctx := context.Background()

	username := testutil.UniqueName("ivan")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")

	app := testutil.CreateTestApp(t, env, user.ID, testutil.UniqueName("app"))
	keeper := testutil.CreateTestApp(t, env, user.ID, testutil.UniqueName("keeper"))

	repo1 := testutil.CreateTestRepo(t, env, user.ID, testutil.UniqueName("repo"))
	repo2 := testutil.CreateTestRepo(t, env, user.ID, testutil.UniqueName("repo"))

	// repo1 references the app twice plus another app
	for _, id := range []int64{app.ID, keeper.ID, app.ID} {
		if err := env.DB.AddAppToRepo(ctx, repo1.ID, id); err != nil {
			t.Fatalf("AddAppToRepo failed: %v", err)
		}
	}
	if err := env.DB.AddAppToRepo(ctx, repo2.ID, app.ID); err != nil {
		t.Fatalf("AddAppToRepo failed: %v", err)
	}

	if err := env.DB.DeleteApp(ctx, app.ID); err != nil {
		t.Fatalf("DeleteApp failed: %v", err)
	}

	if _, err := env.DB.GetAppByID(ctx, app.ID); !errors.Is(err, db.ErrAppNotFound) {
		t.Errorf("deleted app lookup: got %v, want ErrAppNotFound", err)
	}

	got1, err := env.DB.GetRepoByTitle(ctx, repo1.Title)
	if err != nil {
		t.Fatalf("GetRepoByTitle failed: %v", err)
	}
	if len(got1.Apps) != 1 || got1.Apps[0] != keeper.ID {
		t.Errorf("repo1 apps = %v, want [%d]", got1.Apps, keeper.ID)
	}

	got2, err := env.DB.GetRepoByTitle(ctx, repo2.Title)
	if err != nil {
		t.Fatalf("GetRepoByTitle failed: %v", err)
	}
	if len(got2.Apps) != 0 {
		t.Errorf("repo2 apps = %v, want empty", got2.Apps)
	}

	// The surviving app is untouched
	if _, err := env.DB.GetAppByID(ctx, keeper.ID); err != nil {
		t.Errorf("surviving app lookup failed: %v", err)
	}
}

// TestDeleteApp_NotFound tests deleting a missing app id
func TestDeleteApp_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)

	if err := env.DB.DeleteApp(context.Background(), 999999); !errors.Is(err, db.ErrAppNotFound) {
		t.Errorf("got %v, want ErrAppNotFound", err)
	}
}

// TestReposContainingApp tests the containment query used by cascade
// deletion and detail pages
func TestReposContainingApp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := testutil.SetupTestEnvironment(t)
	env.CleanDB(t)
	ctx := context.Background()

	username := testutil.UniqueName("judy")
	user := testutil.CreateTestUser(t, env, username, username+"@test.com", "password1")
	app := testutil.CreateTestApp(t, env, user.ID, testutil.UniqueName("app"))

	inRepo := testutil.CreateTestRepo(t, env, user.ID, testutil.UniqueName("in"))
	testutil.CreateTestRepo(t, env, user.ID, testutil.UniqueName("out"))

	if err := env.DB.AddAppToRepo(ctx, inRepo.ID, app.ID); err != nil {
		t.Fatalf("AddAppToRepo failed: %v", err)
	}

	repos, err := env.DB.ReposContainingApp(ctx, app.ID)
	if err != nil {
		t.Fatalf("ReposContainingApp failed: %v", err)
	}
	if len(repos) != 1 || repos[0].ID != inRepo.ID {
		t.Errorf("got %d repos, want exactly the containing repo", len(repos))
	}
}
