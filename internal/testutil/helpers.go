package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/schoolthings/apphub/internal/auth"
	"github.com/schoolthings/apphub/internal/models"
	"github.com/schoolthings/apphub/internal/web"
)

// UniqueName returns prefix plus a short random suffix so fixtures never
// collide with each other across subtests sharing a database.
func UniqueName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	return prefix + suffix
}

// TestToken is a well-formed 60-character app token
var TestToken = strings.Repeat("t", 60)

// CreateTestUser creates a user with a bcrypt-hashed password
func CreateTestUser(t *testing.T, env *TestEnvironment, username, email, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	user, err := env.DB.CreateUser(env.Ctx, username, email, hash)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestApp creates an app owned by ownerID
func CreateTestApp(t *testing.T, env *TestEnvironment, ownerID int64, title string) *models.App {
	t.Helper()

	app, err := env.DB.CreateApp(env.Ctx, ownerID, title, "a test app", "https://example.com", TestToken)
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	return app
}

// CreateTestRepo creates a repo owned by ownerID
func CreateTestRepo(t *testing.T, env *TestEnvironment, ownerID int64, title string) *models.Repo {
	t.Helper()

	repo, err := env.DB.CreateRepo(env.Ctx, ownerID, title, "a test repo")
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	return repo
}

// SessionCookie creates a session row logged in as userID and returns
// the signed cookie for it, simulating a browser that logged in earlier.
func SessionCookie(t *testing.T, env *TestEnvironment, server *web.Server, userID int64) *http.Cookie {
	t.Helper()

	session, err := env.DB.CreateSession(env.Ctx, userID)
	if err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := server.Auth().Cookies().Write(rec, session.ID); err != nil {
		t.Fatalf("failed to encode session cookie: %v", err)
	}

	cookies := rec.Result().Cookies()
	for _, c := range cookies {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.SessionCookieName)
	return nil
}

// PostForm performs a form POST against handler, optionally with a
// session cookie, and returns the recorder.
func PostForm(handler http.Handler, path string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// Get performs a GET against handler, optionally with a session cookie
func Get(handler http.Handler, path string, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// AssertStatus checks the HTTP status code
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()

	if rec.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rec.Code, rec.Body.String())
	}
}

// AssertRedirect checks for a 303 redirect to the expected location
func AssertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d. Body: %s", http.StatusSeeOther, rec.Code, rec.Body.String())
		return
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}
