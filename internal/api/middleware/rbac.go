package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/api/metrics"
	"github.com/wandertrails/tours-api/internal/core/domain"
)

// RestrictTo enforces a static role allow-list. It must run after Protect,
// which populates the role context key.
func RestrictTo(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			if _, ok := allowed[role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
