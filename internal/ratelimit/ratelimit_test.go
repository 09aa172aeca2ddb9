package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInMemoryRateLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to burst then rejects", func(t *testing.T) {
		l := NewInMemoryRateLimiter(0.001, 3)
		defer l.Stop()

		for i := 0; i < 3; i++ {
			if !l.Allow(ctx, "1.2.3.4") {
				t.Fatalf("request %d within burst rejected", i+1)
			}
		}
		if l.Allow(ctx, "1.2.3.4") {
			t.Error("request over burst allowed")
		}
	})

	t.Run("keys are limited independently", func(t *testing.T) {
		l := NewInMemoryRateLimiter(0.001, 1)
		defer l.Stop()

		if !l.Allow(ctx, "1.2.3.4") {
			t.Fatal("first key's first request rejected")
		}
		if l.Allow(ctx, "1.2.3.4") {
			t.Error("first key's second request allowed")
		}
		if !l.Allow(ctx, "5.6.7.8") {
			t.Error("second key throttled by first key's usage")
		}
	})
}

func TestMiddleware(t *testing.T) {
	l := NewInMemoryRateLimiter(0.001, 1)
	defer l.Stop()

	var hits int
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", rec.Code)
	}
	if hits != 1 {
		t.Errorf("expected handler to run once, ran %d times", hits)
	}
}
