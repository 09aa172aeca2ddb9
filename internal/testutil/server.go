package testutil

import (
	"net/http"
	"testing"

	"github.com/schoolthings/apphub/internal/auth"
	"github.com/schoolthings/apphub/internal/web"
)

// Test cookie keys. Fixed values keep minted cookies decodable across
// helpers within a test run.
var (
	testHashKey  = []byte("test-hash-key-0123456789abcdef01")
	testBlockKey = []byte("test-block-key-0123456789abcdef0")
)

// TestSiteDomain is the canonical site URL used in test page rendering
const TestSiteDomain = "https://apphub.test"

// NewTestServer builds a web server against the test database.
// CSRF protection and otel instrumentation wrap the router in main, not
// here, so handler tests exercise routes without CSRF tokens.
func NewTestServer(t *testing.T, env *TestEnvironment) (*web.Server, http.Handler) {
	t.Helper()

	cookies := auth.NewCookieCodec(testHashKey, testBlockKey, false)
	resolver := auth.NewResolver(env.DB, cookies)
	server := web.NewServer(env.DB, resolver, TestSiteDomain)
	return server, server.SetupRoutes()
}
