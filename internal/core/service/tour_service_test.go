package service

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// recordingTourRepo captures the arguments passed to the geo queries.
type recordingTourRepo struct {
	stubTourRepo
	lastLat        float64
	lastLng        float64
	lastRadius     float64
	lastMultiplier float64
}

func (r *recordingTourRepo) FindWithin(_ context.Context, lat, lng, radiusRadians float64) ([]*domain.Tour, error) {
	r.lastLat = lat
	r.lastLng = lng
	r.lastRadius = radiusRadians
	return nil, nil
}

func (r *recordingTourRepo) DistancesFrom(_ context.Context, lat, lng, multiplier float64) ([]ports.TourDistance, error) {
	r.lastLat = lat
	r.lastLng = lng
	r.lastMultiplier = multiplier
	return nil, nil
}

func TestTourService_CreateTour_Defaults(t *testing.T) {
	repo := newStubTourRepo()
	svc := NewTourService(repo, zerolog.Nop())

	created, err := svc.CreateTour(context.Background(), ports.CreateTourInput{
		Name:         "The Sea Explorer",
		Duration:     7,
		MaxGroupSize: 15,
		Difficulty:   domain.DifficultyMedium,
		Price:        497,
		Summary:      "Exploring the jaw-dropping US east coast",
	})
	if err != nil {
		t.Fatalf("create tour: %v", err)
	}
	if created.RatingsAverage != domain.DefaultRatingsAverage {
		t.Fatalf("expected default average, got %v", created.RatingsAverage)
	}
	if created.RatingsQuantity != 0 {
		t.Fatalf("expected zero ratings, got %d", created.RatingsQuantity)
	}
}

func TestTourService_CreateTour_InvalidDifficulty(t *testing.T) {
	svc := NewTourService(newStubTourRepo(), zerolog.Nop())

	_, err := svc.CreateTour(context.Background(), ports.CreateTourInput{
		Name:       "The Cliff Scrambler",
		Difficulty: "extreme",
	})
	if err != domain.ErrInvalidDifficulty {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestTourService_CreateTour_DuplicateName(t *testing.T) {
	repo := newStubTourRepo()
	svc := NewTourService(repo, zerolog.Nop())

	input := ports.CreateTourInput{Name: "The Forest Hiker", Difficulty: domain.DifficultyEasy}
	if _, err := svc.CreateTour(context.Background(), input); err != nil {
		t.Fatalf("create tour: %v", err)
	}
	if _, err := svc.CreateTour(context.Background(), input); err != domain.ErrDuplicateTour {
		t.Fatalf("expected ErrDuplicateTour, got %v", err)
	}
}

func TestTourService_ToursWithin_RadiusConversion(t *testing.T) {
	repo := &recordingTourRepo{stubTourRepo: *newStubTourRepo()}
	svc := NewTourService(repo, zerolog.Nop())

	if _, err := svc.ToursWithin(context.Background(), ports.ToursWithinInput{
		Distance: 400,
		Lat:      34.111745,
		Lng:      -118.113491,
		Unit:     "mi",
	}); err != nil {
		t.Fatalf("tours within (mi): %v", err)
	}
	if want := 400 / 3963.2; math.Abs(repo.lastRadius-want) > 1e-12 {
		t.Fatalf("expected radius %v, got %v", want, repo.lastRadius)
	}

	if _, err := svc.ToursWithin(context.Background(), ports.ToursWithinInput{
		Distance: 400,
		Lat:      34.111745,
		Lng:      -118.113491,
		Unit:     "km",
	}); err != nil {
		t.Fatalf("tours within (km): %v", err)
	}
	if want := 400 / 6378.1; math.Abs(repo.lastRadius-want) > 1e-12 {
		t.Fatalf("expected radius %v, got %v", want, repo.lastRadius)
	}
}

func TestTourService_ToursWithin_Validation(t *testing.T) {
	svc := NewTourService(newStubTourRepo(), zerolog.Nop())

	cases := []ports.ToursWithinInput{
		{Distance: 0, Lat: 10, Lng: 10, Unit: "mi"},
		{Distance: 100, Lat: 91, Lng: 10, Unit: "mi"},
		{Distance: 100, Lat: 10, Lng: 181, Unit: "km"},
		{Distance: 100, Lat: 10, Lng: 10, Unit: "furlongs"},
	}
	for i, input := range cases {
		if _, err := svc.ToursWithin(context.Background(), input); err != domain.ErrInvalidCoordinates {
			t.Fatalf("case %d: expected ErrInvalidCoordinates, got %v", i, err)
		}
	}
}

func TestTourService_Distances_MultiplierConversion(t *testing.T) {
	cases := []struct {
		unit string
		want float64
	}{
		{"mi", 0.000621371},
		{"km", 0.001},
	}

	for _, tc := range cases {
		repo := &recordingTourRepo{stubTourRepo: *newStubTourRepo()}
		svc := NewTourService(repo, zerolog.Nop())

		_, err := svc.Distances(context.Background(), ports.DistancesInput{
			Lat: 34.111745, Lng: -118.113491, Unit: tc.unit,
		})
		if err != nil {
			t.Fatalf("%s: distances: %v", tc.unit, err)
		}
		if repo.lastMultiplier != tc.want {
			t.Fatalf("%s: expected multiplier %v, got %v", tc.unit, tc.want, repo.lastMultiplier)
		}
		if repo.lastLat != 34.111745 || repo.lastLng != -118.113491 {
			t.Fatalf("%s: unexpected point: %v,%v", tc.unit, repo.lastLat, repo.lastLng)
		}
	}
}

func TestTourService_Distances_Validation(t *testing.T) {
	svc := NewTourService(newStubTourRepo(), zerolog.Nop())

	cases := []ports.DistancesInput{
		{Lat: 91, Lng: 10, Unit: "mi"},
		{Lat: 10, Lng: -181, Unit: "km"},
		{Lat: 10, Lng: 10, Unit: "leagues"},
	}
	for i, input := range cases {
		if _, err := svc.Distances(context.Background(), input); err != domain.ErrInvalidCoordinates {
			t.Fatalf("case %d: expected ErrInvalidCoordinates, got %v", i, err)
		}
	}
}

func TestTourService_ListTours_PageDefaults(t *testing.T) {
	repo := newStubTourRepo()
	svc := NewTourService(repo, zerolog.Nop())

	result, err := svc.ListTours(context.Background(), ports.ListToursFilter{Page: -3, Limit: 500})
	if err != nil {
		t.Fatalf("list tours: %v", err)
	}
	if result.Page != 1 {
		t.Fatalf("expected page 1, got %d", result.Page)
	}
	if result.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", result.Limit)
	}
}

func TestTourService_UpdateTour_InvalidDifficulty(t *testing.T) {
	repo := newStubTourRepo()
	svc := NewTourService(repo, zerolog.Nop())

	bad := "impossible"
	if _, err := svc.UpdateTour(context.Background(), "tour_1", ports.UpdateTourInput{Difficulty: &bad}); err != domain.ErrInvalidDifficulty {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}
