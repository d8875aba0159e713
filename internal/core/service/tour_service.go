package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// Earth radii used to convert a distance to radians for $centerSphere.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

// $geoNear reports distances in meters; these scale them to the caller's unit.
const (
	metersToMiles = 0.000621371
	metersToKm    = 0.001
)

type TourService struct {
	repo ports.TourRepository
	log  zerolog.Logger
}

func NewTourService(repo ports.TourRepository, log zerolog.Logger) *TourService {
	return &TourService{repo: repo, log: log}
}

func (s *TourService) CreateTour(ctx context.Context, input ports.CreateTourInput) (*domain.Tour, error) {
	if !domain.ValidDifficulty(input.Difficulty) {
		return nil, domain.ErrInvalidDifficulty
	}

	now := time.Now().UTC()
	tour := &domain.Tour{
		Name:            input.Name,
		Duration:        input.Duration,
		MaxGroupSize:    input.MaxGroupSize,
		Difficulty:      input.Difficulty,
		RatingsAverage:  domain.DefaultRatingsAverage,
		RatingsQuantity: 0,
		Price:           input.Price,
		PriceDiscount:   input.PriceDiscount,
		Summary:         input.Summary,
		Description:     input.Description,
		ImageCover:      input.ImageCover,
		StartDates:      input.StartDates,
		StartLocation:   input.StartLocation,
		Locations:       input.Locations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, tour)
	if err != nil {
		s.log.Error().Err(err).Str("name", input.Name).Msg("failed to create tour")
		return nil, err
	}

	s.log.Info().Str("tour_id", created.ID).Str("name", created.Name).Msg("tour created")
	return created, nil
}

func (s *TourService) GetTour(ctx context.Context, id string) (*domain.Tour, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TourService) ListTours(ctx context.Context, filter ports.ListToursFilter) (*ports.ListToursResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.ListToursResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *TourService) UpdateTour(ctx context.Context, id string, update ports.UpdateTourInput) (*domain.Tour, error) {
	if update.Difficulty != nil && !domain.ValidDifficulty(*update.Difficulty) {
		return nil, domain.ErrInvalidDifficulty
	}
	return s.repo.UpdateByID(ctx, id, update)
}

func (s *TourService) DeleteTour(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *TourService) TourStats(ctx context.Context) ([]ports.TourStats, error) {
	return s.repo.Stats(ctx)
}

func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]ports.MonthlyPlanEntry, error) {
	return s.repo.MonthlyPlan(ctx, year)
}

// ToursWithin finds tours whose start location lies within the given distance
// of a center point. Distance is converted to radians using the earth radius
// for the requested unit.
func (s *TourService) ToursWithin(ctx context.Context, input ports.ToursWithinInput) ([]*domain.Tour, error) {
	if input.Distance <= 0 {
		return nil, domain.ErrInvalidCoordinates
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return nil, domain.ErrInvalidCoordinates
	}

	var radius float64
	switch input.Unit {
	case "mi":
		radius = input.Distance / earthRadiusMiles
	case "km":
		radius = input.Distance / earthRadiusKm
	default:
		return nil, domain.ErrInvalidCoordinates
	}

	return s.repo.FindWithin(ctx, input.Lat, input.Lng, radius)
}

// Distances returns how far each tour's start location lies from the given
// point, in the requested unit.
func (s *TourService) Distances(ctx context.Context, input ports.DistancesInput) ([]ports.TourDistance, error) {
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return nil, domain.ErrInvalidCoordinates
	}

	var multiplier float64
	switch input.Unit {
	case "mi":
		multiplier = metersToMiles
	case "km":
		multiplier = metersToKm
	default:
		return nil, domain.ErrInvalidCoordinates
	}

	return s.repo.DistancesFrom(ctx, input.Lat, input.Lng, multiplier)
}
