package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubLimiter struct {
	allow bool
	err   error
	key   string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.key = key
	return s.allow, s.err
}

func limiterCtx(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateLimit_UnderQuota(t *testing.T) {
	e := echo.New()
	limiter := &stubLimiter{allow: true}

	c, rec := limiterCtx(e)
	handler := RateLimit(limiter, zerolog.Nop())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if limiter.key != "203.0.113.9" {
		t.Fatalf("expected client IP as key, got %q", limiter.key)
	}
}

func TestRateLimit_OverQuota(t *testing.T) {
	e := echo.New()
	limiter := &stubLimiter{allow: false}

	c, _ := limiterCtx(e)
	handler := RateLimit(limiter, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
}

func TestRateLimit_StoreFailureFailsOpen(t *testing.T) {
	e := echo.New()
	limiter := &stubLimiter{err: errors.New("redis down")}

	c, rec := limiterCtx(e)
	handler := RateLimit(limiter, zerolog.Nop())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}
}
