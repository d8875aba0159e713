package ports

import (
	"context"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// CreateReviewInput carries the data for a new review. UserID comes from the
// authenticated context, TourID from the body or the nested route.
type CreateReviewInput struct {
	TourID string
	UserID string
	Text   string
	Rating int
}

// UpdateReviewInput carries the editable review fields. Nil pointers mean
// "leave unchanged". Actor identifies the caller for the author-or-admin check.
type UpdateReviewInput struct {
	ReviewID  string
	ActorID   string
	ActorRole string
	Text      *string
	Rating    *int
}

// ListReviewsResult is returned by ListReviews.
type ListReviewsResult struct {
	Items      []*domain.Review
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ReviewService defines use-case operations for reviews. Every mutation
// recomputes the owning tour's rating summary before returning.
type ReviewService interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error)
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	ListReviews(ctx context.Context, filter ListReviewsFilter) (*ListReviewsResult, error)
	UpdateReview(ctx context.Context, input UpdateReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, reviewID, actorID, actorRole string) error
}
