package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// UserHandler handles profile self-service and admin account management.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type updateMeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	// Present only to detect misuse; password changes go through
	// /updateMyPassword.
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type updateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type listUsersResponse struct {
	Items      []*domain.User `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// GetMe returns the authenticated user's own account.
//
// @Summary      Get own account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	me, err := h.userService.GetMe(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: me})
}

// UpdateMe changes the caller's name and/or email.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/updateMe [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Password != "" || req.PasswordConfirm != "" {
		return domain.ErrPasswordRouteMisuse
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.userService.UpdateMe(c.Request().Context(), user.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: updated})
}

// DeleteMe soft-deletes the caller's account.
//
// @Summary      Deactivate own account
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Router       /users/deleteMe [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteMe(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns a page of active users. Admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  listUsersResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.userService.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get returns a single user by id. Admin only.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Update changes a user's account fields. Admin only: this route bypasses
// password handling entirely.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.userService.UpdateUser(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: updated})
}

// Delete removes a user document. Admin only.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Create always fails: accounts are created through signup so the password
// hooks run.
//
// @Summary      Not implemented, use /signup
// @Tags         users
// @Security     BearerAuth
// @Failure      400  {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	return echo.NewHTTPError(http.StatusBadRequest, "this route is not defined, use /signup instead")
}
