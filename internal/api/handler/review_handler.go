package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/api/metrics"
	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// ReviewHandler handles HTTP requests for review operations, both on the
// top-level /reviews routes and nested under /tours/:tour_id/reviews.
type ReviewHandler struct {
	reviewService ports.ReviewService
}

func NewReviewHandler(reviewService ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type createReviewRequest struct {
	Text   string `json:"review" validate:"required"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	// TourID may come from the body or, on the nested route, from the path.
	TourID string `json:"tour_id"`
}

type updateReviewRequest struct {
	Text   *string `json:"review"`
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

type reviewResponse struct {
	Review *domain.Review `json:"review"`
}

type listReviewsResponse struct {
	Items      []*domain.Review `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// Create posts a review as the authenticated user. The tour id comes from
// the nested route when present.
//
// @Summary      Create a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReviewRequest  true  "Review"
// @Success      201   {object}  reviewResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if tourID := c.Param("tour_id"); tourID != "" {
		req.TourID = tourID
	}
	if req.TourID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tour_id is required")
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	review, err := h.reviewService.CreateReview(c.Request().Context(), ports.CreateReviewInput{
		TourID: req.TourID,
		UserID: user.ID,
		Text:   req.Text,
		Rating: req.Rating,
	})
	if err != nil {
		return err
	}

	metrics.ReviewsWrittenTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, reviewResponse{Review: review})
}

// Get returns a single review by id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Review id"
// @Success      200  {object}  reviewResponse
// @Failure      404  {object}  errorResponse
// @Router       /reviews/{id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	review, err := h.reviewService.GetReview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviewResponse{Review: review})
}

// List returns a page of reviews, scoped to a tour on the nested route.
//
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  listReviewsResponse
// @Router       /reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.reviewService.ListReviews(c.Request().Context(), ports.ListReviewsFilter{
		TourID: c.Param("tour_id"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listReviewsResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Update changes a review's text or rating. Author or admin only.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Review id"
// @Param        body  body      updateReviewRequest  true  "Fields to change"
// @Success      200   {object}  reviewResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /reviews/{id} [patch]
func (h *ReviewHandler) Update(c echo.Context) error {
	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	review, err := h.reviewService.UpdateReview(c.Request().Context(), ports.UpdateReviewInput{
		ReviewID:  c.Param("id"),
		ActorID:   user.ID,
		ActorRole: user.Role,
		Text:      req.Text,
		Rating:    req.Rating,
	})
	if err != nil {
		return err
	}

	metrics.ReviewsWrittenTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, reviewResponse{Review: review})
}

// Delete removes a review. Author or admin only.
//
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        id  path  string  true  "Review id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.reviewService.DeleteReview(c.Request().Context(), c.Param("id"), user.ID, user.Role); err != nil {
		return err
	}

	metrics.ReviewsWrittenTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
