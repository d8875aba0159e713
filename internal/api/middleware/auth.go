package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/api/metrics"
	"github.com/wandertrails/tours-api/internal/core/domain"
)

// Context keys set by Protect for downstream handlers.
const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// Authenticator resolves a bearer token to an active user, failing with
// domain.ErrInvalidToken, domain.ErrTokenUserGone or domain.ErrPasswordChanged.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Protect rejects requests without a valid bearer token. On success the
// authenticated user is attached to the request context; every rejection
// aborts the chain before any handler side effects.
//
// The per-request progression is: extract token, verify signature and expiry,
// load the active user, then compare the password-changed timestamp against
// the token's issue time.
func Protect(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return err
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyRole, user.Role)

			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrMissingToken
	}
	return parts[1], nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenUserGone):
		return "user_gone"
	case errors.Is(err, domain.ErrPasswordChanged):
		return "password_changed"
	default:
		return "invalid_token"
	}
}
