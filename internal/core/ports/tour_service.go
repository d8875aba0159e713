package ports

import (
	"context"
	"time"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// CreateTourInput carries all data needed to create a new tour.
type CreateTourInput struct {
	Name          string
	Duration      int
	MaxGroupSize  int
	Difficulty    string
	Price         float64
	PriceDiscount float64
	Summary       string
	Description   string
	ImageCover    string
	StartDates    []time.Time
	StartLocation *domain.Location
	Locations     []domain.Location
}

// ToursWithinInput carries the parameters of a geospatial search.
type ToursWithinInput struct {
	Distance float64
	Lat      float64
	Lng      float64
	Unit     string // "mi" or "km"
}

// DistancesInput carries the reference point for a per-tour distance query.
type DistancesInput struct {
	Lat  float64
	Lng  float64
	Unit string // "mi" or "km"
}

// ListToursResult is returned by ListTours.
type ListToursResult struct {
	Items      []*domain.Tour
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TourService defines use-case operations for tours.
type TourService interface {
	CreateTour(ctx context.Context, input CreateTourInput) (*domain.Tour, error)
	GetTour(ctx context.Context, id string) (*domain.Tour, error)
	ListTours(ctx context.Context, filter ListToursFilter) (*ListToursResult, error)
	UpdateTour(ctx context.Context, id string, update UpdateTourInput) (*domain.Tour, error)
	DeleteTour(ctx context.Context, id string) error

	TourStats(ctx context.Context) ([]TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error)
	ToursWithin(ctx context.Context, input ToursWithinInput) ([]*domain.Tour, error)
	Distances(ctx context.Context, input DistancesInput) ([]TourDistance, error)
}
