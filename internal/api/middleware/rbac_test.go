package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

func restrictCtx(e *echo.Echo, role string) echo.Context {
	req := httptest.NewRequest(http.MethodDelete, "/tours/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(ContextKeyRole, role)
	}
	return c
}

func TestRestrictTo_AllowedRole(t *testing.T) {
	e := echo.New()

	for _, role := range []string{domain.RoleAdmin, domain.RoleLeadGuide} {
		called := false
		handler := RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusNoContent)
		})

		if err := handler(restrictCtx(e, role)); err != nil {
			t.Fatalf("role %s: handler error: %v", role, err)
		}
		if !called {
			t.Fatalf("role %s: next not called", role)
		}
	}
}

func TestRestrictTo_ForbiddenRole(t *testing.T) {
	e := echo.New()

	for _, role := range []string{domain.RoleUser, domain.RoleGuide} {
		handler := RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)(func(c echo.Context) error {
			t.Fatalf("role %s: should not reach next", role)
			return nil
		})

		if err := handler(restrictCtx(e, role)); err != domain.ErrForbidden {
			t.Fatalf("role %s: expected ErrForbidden, got %v", role, err)
		}
	}
}

func TestRestrictTo_MissingRole(t *testing.T) {
	e := echo.New()

	handler := RestrictTo(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(restrictCtx(e, "")); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
