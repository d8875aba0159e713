package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// ReviewService implements review CRUD. Every mutation recomputes the owning
// tour's rating summary synchronously before the call returns, so a client
// reading immediately after a write never sees a stale summary.
type ReviewService struct {
	reviews ports.ReviewRepository
	tours   ports.TourRepository
	log     zerolog.Logger
}

func NewReviewService(reviews ports.ReviewRepository, tours ports.TourRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours, log: log}
}

func (s *ReviewService) CreateReview(ctx context.Context, input ports.CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	// The tour must exist before a review can reference it.
	if _, err := s.tours.FindByID(ctx, input.TourID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		Text:      input.Text,
		Rating:    input.Rating,
		TourID:    input.TourID,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	if err := s.syncRatings(ctx, input.TourID); err != nil {
		return nil, err
	}

	s.log.Info().Str("review_id", created.ID).Str("tour_id", input.TourID).Msg("review created")
	return created, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviews.FindByID(ctx, id)
}

func (s *ReviewService) ListReviews(ctx context.Context, filter ports.ListReviewsFilter) (*ports.ListReviewsResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.ListReviewsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, input ports.UpdateReviewInput) (*domain.Review, error) {
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, domain.ErrInvalidRating
	}

	// Snapshot before the mutation to learn which tour to recompute. Under
	// concurrent updates the snapshot can be stale; the summary is advisory
	// display data, so that race is accepted.
	snapshot, err := s.reviews.FindByID(ctx, input.ReviewID)
	if err != nil {
		return nil, err
	}
	if snapshot.UserID != input.ActorID && input.ActorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	updated, err := s.reviews.UpdateByID(ctx, input.ReviewID, input.Text, input.Rating)
	if err != nil {
		return nil, err
	}

	if err := s.syncRatings(ctx, snapshot.TourID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, actorID, actorRole string) error {
	snapshot, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if snapshot.UserID != actorID && actorRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if err := s.reviews.DeleteByID(ctx, reviewID); err != nil {
		return err
	}

	if err := s.syncRatings(ctx, snapshot.TourID); err != nil {
		return err
	}

	s.log.Info().Str("review_id", reviewID).Str("tour_id", snapshot.TourID).Msg("review deleted")
	return nil
}

// syncRatings recomputes the tour's rating summary from its current review
// set. A tour with no reviews gets the explicit {0, 4.5} default.
func (s *ReviewService) syncRatings(ctx context.Context, tourID string) error {
	count, average, err := s.reviews.AggregateTourRatings(ctx, tourID)
	if err != nil {
		return fmt.Errorf("aggregate ratings: %w", err)
	}

	summary := domain.RatingSummary{Quantity: count, Average: average}
	if count == 0 {
		summary.Average = domain.DefaultRatingsAverage
	}

	if err := s.tours.UpdateRatingSummary(ctx, tourID, summary); err != nil {
		return fmt.Errorf("update rating summary: %w", err)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
