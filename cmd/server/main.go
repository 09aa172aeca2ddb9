package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/schoolthings/apphub/internal/auth"
	"github.com/schoolthings/apphub/internal/db"
	"github.com/schoolthings/apphub/internal/logger"
	"github.com/schoolthings/apphub/internal/web"
)

var version string

func main() {
	// Start pprof debug server if enabled (for memory/CPU profiling)
	if os.Getenv("ENABLE_PPROF") == "true" {
		go startPprofServer()
	}

	// Initialize OpenTelemetry (sends traces to the configured collector)
	// Configured via env vars: OTEL_SERVICE_NAME, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		logger.Warn("failed to configure OpenTelemetry", "error", err)
		// Non-fatal: continue without tracing if OTEL env vars not set
	} else {
		defer otelShutdown()
	}

	// Load configuration from environment
	config := loadConfig()

	// Initialize database connection
	// Note: Migrations are run separately via CLI before starting the server
	// See: migrate -database "$DATABASE_URL" -path internal/db/migrations up
	database, err := db.Connect(config.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	// Session cookie codec and resolver
	cookies := auth.NewCookieCodec(config.SessionHashKey, config.SessionBlockKey, config.CookieSecure)
	resolver := auth.NewResolver(database, cookies)

	// Create web server
	server := web.NewServer(database, resolver, config.SiteDomain)
	router := server.SetupRoutes()

	// CSRF protection wraps the whole router so every POST form is checked
	protect := csrf.Protect(
		[]byte(config.CSRFSecretKey),
		csrf.Secure(config.CookieSecure),
		csrf.Path("/"),
	)

	// Wrap with OpenTelemetry HTTP instrumentation
	handler := otelhttp.NewHandler(protect(router), "apphub")

	// HTTP server configuration
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,  // Configurable via HTTP_READ_TIMEOUT (default: 30s)
		WriteTimeout: config.WriteTimeout, // Configurable via HTTP_WRITE_TIMEOUT (default: 30s)
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", config.Port, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

type Config struct {
	Port            int
	DatabaseURL     string
	SiteDomain      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	SessionHashKey  []byte
	SessionBlockKey []byte
	CSRFSecretKey   string
	CookieSecure    bool
}

func loadConfig() Config {
	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	// HTTP timeout configuration (defaults to 30s)
	readTimeout := 30 * time.Second
	if rt := os.Getenv("HTTP_READ_TIMEOUT"); rt != "" {
		if parsed, err := time.ParseDuration(rt); err == nil {
			readTimeout = parsed
		}
	}

	writeTimeout := 30 * time.Second
	if wt := os.Getenv("HTTP_WRITE_TIMEOUT"); wt != "" {
		if parsed, err := time.ParseDuration(wt); err == nil {
			writeTimeout = parsed
		}
	}

	// Validate required database configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("missing required env var", "var", "DATABASE_URL")
	}

	// Session cookie signing key
	sessionHashKey := os.Getenv("SESSION_HASH_KEY")
	if sessionHashKey == "" {
		logger.Fatal("missing required env var", "var", "SESSION_HASH_KEY", "hint", "must be at least 32 characters")
	}
	if len(sessionHashKey) < 32 {
		logger.Fatal("invalid env var", "var", "SESSION_HASH_KEY", "error", "must be at least 32 characters")
	}

	// Optional session cookie encryption key (16, 24 or 32 bytes)
	var sessionBlockKey []byte
	if bk := os.Getenv("SESSION_BLOCK_KEY"); bk != "" {
		switch len(bk) {
		case 16, 24, 32:
			sessionBlockKey = []byte(bk)
		default:
			logger.Fatal("invalid env var", "var", "SESSION_BLOCK_KEY", "error", "must be 16, 24 or 32 characters")
		}
	}

	// Validate required security configuration
	csrfSecretKey := os.Getenv("CSRF_SECRET_KEY")
	if csrfSecretKey == "" {
		logger.Fatal("missing required env var", "var", "CSRF_SECRET_KEY", "hint", "must be at least 32 characters")
	}
	if len(csrfSecretKey) < 32 {
		logger.Fatal("invalid env var", "var", "CSRF_SECRET_KEY", "error", "must be at least 32 characters")
	}

	siteDomain := os.Getenv("SITE_DOMAIN")
	if siteDomain == "" {
		siteDomain = "https://schoolthings.xyz"
	}

	// Secure cookies default on; disable only for local HTTP development
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	return Config{
		Port:            port,
		DatabaseURL:     databaseURL,
		SiteDomain:      siteDomain,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		SessionHashKey:  []byte(sessionHashKey),
		SessionBlockKey: sessionBlockKey,
		CSRFSecretKey:   csrfSecretKey,
		CookieSecure:    cookieSecure,
	}
}

// startPprofServer starts a pprof debug server on localhost:6060.
// Only accessible locally; proxy the port for remote debugging.
func startPprofServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
	mux.Handle("/debug/pprof/block", pprof.Handler("block"))
	mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))

	addr := "127.0.0.1:6060"
	logger.Info("pprof debug server starting", "addr", addr)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("pprof server failed", "error", err)
	}
}
