package ports

import (
	"context"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// ListToursFilter carries all query parameters for listing tours.
type ListToursFilter struct {
	Difficulty string  // optional: filter by difficulty level
	MaxPrice   float64 // optional: price <= MaxPrice when > 0
	Sort       string  // comma-separated fields, "-" prefix for descending
	Page       int     // 1-based
	Limit      int     // max rows per page (capped at 100 by service)
}

// TourStats is one aggregation bucket of the tour statistics pipeline,
// grouped by difficulty.
type TourStats struct {
	Difficulty string  `json:"difficulty" bson:"_id"`
	NumTours   int     `json:"num_tours" bson:"num_tours"`
	NumRatings int     `json:"num_ratings" bson:"num_ratings"`
	AvgRating  float64 `json:"avg_rating" bson:"avg_rating"`
	AvgPrice   float64 `json:"avg_price" bson:"avg_price"`
	MinPrice   float64 `json:"min_price" bson:"min_price"`
	MaxPrice   float64 `json:"max_price" bson:"max_price"`
}

// TourDistance is one row of the distances aggregation: how far a tour's
// start location lies from a reference point, in the caller's unit.
type TourDistance struct {
	ID       string  `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	Distance float64 `json:"distance" bson:"distance"`
}

// MonthlyPlanEntry reports how many tours start in a given month of a year.
type MonthlyPlanEntry struct {
	Month     int      `json:"month" bson:"_id"`
	NumStarts int      `json:"num_starts" bson:"num_starts"`
	Tours     []string `json:"tours" bson:"tours"`
}

// TourRepository defines persistence operations for tours.
type TourRepository interface {
	// Create inserts a new tour. A duplicate name yields domain.ErrDuplicateTour.
	Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error)
	FindByID(ctx context.Context, id string) (*domain.Tour, error)
	List(ctx context.Context, filter ListToursFilter) ([]*domain.Tour, int64, error)
	UpdateByID(ctx context.Context, id string, update UpdateTourInput) (*domain.Tour, error)
	DeleteByID(ctx context.Context, id string) error

	// UpdateRatingSummary overwrites the derived review summary on a tour.
	UpdateRatingSummary(ctx context.Context, tourID string, summary domain.RatingSummary) error

	// Stats aggregates review and price statistics grouped by difficulty.
	Stats(ctx context.Context) ([]TourStats, error)
	// MonthlyPlan returns per-month start counts for the given year.
	MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error)
	// FindWithin returns tours whose start location lies within radius (in
	// radians) of the given center point.
	FindWithin(ctx context.Context, lat, lng, radiusRadians float64) ([]*domain.Tour, error)
	// DistancesFrom returns the distance from the given point to every
	// non-secret tour's start location, scaled by multiplier.
	DistancesFrom(ctx context.Context, lat, lng, multiplier float64) ([]TourDistance, error)
}

// UpdateTourInput carries the editable tour fields. Nil pointers mean
// "leave unchanged".
type UpdateTourInput struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *string
	Price         *float64
	PriceDiscount *float64
	Summary       *string
	Description   *string
	ImageCover    *string
	Secret        *bool
}
