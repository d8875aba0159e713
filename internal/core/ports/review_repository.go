package ports

import (
	"context"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// ListReviewsFilter carries query parameters for listing reviews.
type ListReviewsFilter struct {
	TourID string // optional: scope to a single tour (nested route)
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// Create inserts a new review. A second review for the same (tour, user)
	// pair yields domain.ErrDuplicateReview.
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, filter ListReviewsFilter) ([]*domain.Review, int64, error)
	// UpdateByID changes the text and/or rating of a review and returns the
	// updated document.
	UpdateByID(ctx context.Context, id string, text *string, rating *int) (*domain.Review, error)
	DeleteByID(ctx context.Context, id string) error

	// AggregateTourRatings computes {count, average} over all reviews that
	// currently reference the tour. Returns (0, 0, nil) when none exist.
	AggregateTourRatings(ctx context.Context, tourID string) (int, float64, error)
}
