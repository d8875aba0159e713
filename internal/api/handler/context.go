package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/api/middleware"
	"github.com/wandertrails/tours-api/internal/core/domain"
)

// currentUser extracts the authenticated user injected by the Protect
// middleware. Its presence proves the middleware ran; a handler reached
// without it is a wiring bug and rejected outright.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextKeyUser).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return user, nil
}
