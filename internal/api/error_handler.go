package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to deterministic HTTP codes. All of these are
	// operational: safe to describe to the client.
	switch {
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrResetTokenInvalid),
		errors.Is(err, domain.ErrPasswordRouteMisuse):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrTokenUserGone),
		errors.Is(err, domain.ErrPasswordChanged),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"

	case errors.Is(err, domain.ErrTourNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDuplicateTour),
		errors.Is(err, domain.ErrDuplicateReview):
		return http.StatusConflict, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
