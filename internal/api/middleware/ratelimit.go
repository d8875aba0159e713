package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/api/metrics"
)

// Limiter abstracts the request-quota store (Redis).
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit caps requests per client IP. A limiter store failure fails open:
// availability of the API wins over strictness of the quota.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("ip", c.RealIP()).Msg("rate limit check failed, allowing request")
				return next(c)
			}
			if !ok {
				metrics.RateLimitRejectionsTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests from this IP, please try again later")
			}
			return next(c)
		}
	}
}
