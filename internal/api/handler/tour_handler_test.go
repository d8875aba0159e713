package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

type stubTourService struct {
	listFn      func(ctx context.Context, filter ports.ListToursFilter) (*ports.ListToursResult, error)
	withinFn    func(ctx context.Context, input ports.ToursWithinInput) ([]*domain.Tour, error)
	distancesFn func(ctx context.Context, input ports.DistancesInput) ([]ports.TourDistance, error)
}

func (s *stubTourService) CreateTour(ctx context.Context, input ports.CreateTourInput) (*domain.Tour, error) {
	return nil, domain.ErrInvalidDifficulty
}

func (s *stubTourService) GetTour(ctx context.Context, id string) (*domain.Tour, error) {
	return nil, domain.ErrTourNotFound
}

func (s *stubTourService) ListTours(ctx context.Context, filter ports.ListToursFilter) (*ports.ListToursResult, error) {
	return s.listFn(ctx, filter)
}

func (s *stubTourService) UpdateTour(ctx context.Context, id string, update ports.UpdateTourInput) (*domain.Tour, error) {
	return nil, domain.ErrTourNotFound
}

func (s *stubTourService) DeleteTour(ctx context.Context, id string) error {
	return domain.ErrTourNotFound
}

func (s *stubTourService) TourStats(ctx context.Context) ([]ports.TourStats, error) {
	return nil, nil
}

func (s *stubTourService) MonthlyPlan(ctx context.Context, year int) ([]ports.MonthlyPlanEntry, error) {
	return nil, nil
}

func (s *stubTourService) ToursWithin(ctx context.Context, input ports.ToursWithinInput) ([]*domain.Tour, error) {
	return s.withinFn(ctx, input)
}

func (s *stubTourService) Distances(ctx context.Context, input ports.DistancesInput) ([]ports.TourDistance, error) {
	return s.distancesFn(ctx, input)
}

func TestTourHandler_TopCheap_PresetFilter(t *testing.T) {
	e := newTestEcho()
	handler := NewTourHandler(&stubTourService{
		listFn: func(ctx context.Context, filter ports.ListToursFilter) (*ports.ListToursResult, error) {
			if filter.Sort != "-ratingsAverage,price" {
				t.Fatalf("unexpected sort: %q", filter.Sort)
			}
			if filter.Limit != 5 {
				t.Fatalf("unexpected limit: %d", filter.Limit)
			}
			return &ports.ListToursResult{Items: []*domain.Tour{}, Page: 1, Limit: 5}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/top-5-cheap", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.TopCheap(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTourHandler_List_QueryFilters(t *testing.T) {
	e := newTestEcho()
	handler := NewTourHandler(&stubTourService{
		listFn: func(ctx context.Context, filter ports.ListToursFilter) (*ports.ListToursResult, error) {
			if filter.Difficulty != "easy" || filter.MaxPrice != 500 || filter.Page != 2 || filter.Limit != 10 {
				t.Fatalf("unexpected filter: %+v", filter)
			}
			return &ports.ListToursResult{Items: []*domain.Tour{}, Page: 2, Limit: 10}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours?difficulty=easy&max_price=500&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestTourHandler_Within_ParsesPath(t *testing.T) {
	e := newTestEcho()
	handler := NewTourHandler(&stubTourService{
		withinFn: func(ctx context.Context, input ports.ToursWithinInput) ([]*domain.Tour, error) {
			if input.Distance != 233 || input.Lat != 34.111745 || input.Lng != -118.113491 || input.Unit != "mi" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return []*domain.Tour{{ID: "tour_1"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/tours-within/233/center/34.111745,-118.113491/unit/mi", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("distance", "latlng", "unit")
	c.SetParamValues("233", "34.111745,-118.113491", "mi")

	if err := handler.Within(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTourHandler_Distances_ParsesPath(t *testing.T) {
	e := newTestEcho()
	handler := NewTourHandler(&stubTourService{
		distancesFn: func(ctx context.Context, input ports.DistancesInput) ([]ports.TourDistance, error) {
			if input.Lat != 34.111745 || input.Lng != -118.113491 || input.Unit != "km" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return []ports.TourDistance{{ID: "tour_1", Name: "The Forest Hiker", Distance: 42.5}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/distances/34.111745,-118.113491/unit/km", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("latlng", "unit")
	c.SetParamValues("34.111745,-118.113491", "km")

	if err := handler.Distances(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTourHandler_Distances_MalformedPoint(t *testing.T) {
	e := newTestEcho()
	handler := NewTourHandler(&stubTourService{
		distancesFn: func(ctx context.Context, input ports.DistancesInput) ([]ports.TourDistance, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/distances/34.111745/unit/km", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("latlng", "unit")
	c.SetParamValues("34.111745", "km")

	if err := handler.Distances(c); err != domain.ErrInvalidCoordinates {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestTourHandler_Within_MalformedCenter(t *testing.T) {
	e := newTestEcho()
	handler := NewTourHandler(&stubTourService{
		withinFn: func(ctx context.Context, input ports.ToursWithinInput) ([]*domain.Tour, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/tours-within/233/center/34.111745/unit/mi", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("distance", "latlng", "unit")
	c.SetParamValues("233", "34.111745", "mi")

	if err := handler.Within(c); err != domain.ErrInvalidCoordinates {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}
