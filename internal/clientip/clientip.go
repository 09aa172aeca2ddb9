// Package clientip extracts real client IPs in a platform-agnostic way
// (Fly.io, Cloudflare, nginx) for logging and rate-limit keying.
package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// contextKey is unexported to prevent collisions
type contextKey struct{}

var clientIPKey = contextKey{}

// Info contains extracted client IP information
type Info struct {
	// Primary is the most trusted single IP (for logging, display)
	Primary string

	// RateLimitKey is a composite of all observed IPs; even if some
	// headers are spoofed, RemoteAddr anchors the key
	RateLimitKey string
}

// Middleware extracts client IPs from proxy headers, updates
// r.RemoteAddr to the primary IP and stores Info in context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := extract(r)
		r.RemoteAddr = info.Primary
		ctx := context.WithValue(r.Context(), clientIPKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromRequest retrieves Info from the request context.
// Falls back to RemoteAddr when the middleware did not run.
func FromRequest(r *http.Request) Info {
	if info, ok := r.Context().Value(clientIPKey).(Info); ok {
		return info
	}
	return Info{Primary: stripPort(r.RemoteAddr), RateLimitKey: stripPort(r.RemoteAddr)}
}

// trustedHeaders in priority order: edge-proxy headers first, generic
// reverse-proxy headers after
var trustedHeaders = []string{
	"Fly-Client-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
}

func extract(r *http.Request) Info {
	remote := stripPort(r.RemoteAddr)
	seen := []string{remote}

	primary := remote
	for i := len(trustedHeaders) - 1; i >= 0; i-- {
		if v := strings.TrimSpace(r.Header.Get(trustedHeaders[i])); v != "" {
			primary = v
			seen = append(seen, v)
		}
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			seen = append(seen, first)
			if primary == remote {
				primary = first
			}
		}
	}

	return Info{
		Primary:      primary,
		RateLimitKey: strings.Join(seen, "|"),
	}
}

func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
