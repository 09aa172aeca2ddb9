package ratelimit

import (
	"net/http"

	"github.com/schoolthings/apphub/internal/clientip"
	"github.com/schoolthings/apphub/internal/logger"
)

// Middleware creates an HTTP middleware that applies rate limiting keyed
// by client IP (extracted by clientip.Middleware).
func Middleware(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientip.FromRequest(r).RateLimitKey

			if !limiter.Allow(r.Context(), key) {
				logger.Ctx(r.Context()).Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
