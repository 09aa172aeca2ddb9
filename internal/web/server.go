// Package web is the server-rendered HTTP surface: route registration,
// template rendering and the page handlers for users, apps and repos.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schoolthings/apphub/internal/auth"
	"github.com/schoolthings/apphub/internal/clientip"
	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/ratelimit"
)

// Server holds dependencies for the page handlers
type Server struct {
	db         *db.DB
	auth       *auth.Resolver
	siteDomain string

	// credentialLimiter throttles login/signup attempts per client IP
	credentialLimiter ratelimit.RateLimiter
}

// NewServer creates a web server. siteDomain is the canonical site URL
// rendered into page metadata and the sitemap.
func NewServer(database *db.DB, resolver *auth.Resolver, siteDomain string) *Server {
	return &Server{
		db:                database,
		auth:              resolver,
		siteDomain:        siteDomain,
		credentialLimiter: ratelimit.NewInMemoryRateLimiter(1, 10),
	}
}

// Auth exposes the resolver (used by testutil to mint session cookies)
func (s *Server) Auth() *auth.Resolver {
	return s.auth
}

// SetupRoutes configures HTTP routes.
// CSRF protection and OpenTelemetry instrumentation wrap the returned
// handler in main, outside the router.
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(clientip.Middleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware)

	// Health check
	r.Get("/health", s.handleHealth)

	// Public pages
	r.Get("/", s.handleHome)
	r.Get("/favicon.ico", s.handleFavicon)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/users/{username}", s.handleUserProfile)

	// Credential endpoints; the POSTs are rate limited per client IP
	r.Get("/login", s.handleLogin)
	r.Get("/signup", s.handleSignup)
	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(s.credentialLimiter))
		r.Post("/login", s.handleLoginSubmit)
		r.Post("/signup", s.handleSignupSubmit)
	})
	r.Post("/signout", s.handleSignout)

	// Apps
	r.Get("/apps", s.handleApps)
	r.Get("/createApp", s.handleCreateApp)
	r.Post("/createApp", s.handleCreateAppSubmit)
	r.Get("/apps/{title}", s.handleApp)
	r.Post("/apps/{title}/delete", s.handleDeleteApp)

	// Repos
	r.Get("/repos", s.handleRepos)
	r.Get("/createRepo", s.handleCreateRepo)
	r.Post("/createRepo", s.handleCreateRepoSubmit)
	r.Get("/repos/{title}", s.handleRepo)
	r.Post("/repos/{title}/delete", s.handleDeleteRepo)
	r.Post("/repos/{title}/addApp", s.handleAddApp)

	return r
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
