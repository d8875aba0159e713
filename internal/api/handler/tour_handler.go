package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// TourHandler handles HTTP requests for tour operations.
type TourHandler struct {
	tourService ports.TourService
}

func NewTourHandler(tourService ports.TourService) *TourHandler {
	return &TourHandler{tourService: tourService}
}

type locationRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"` // [lng, lat]
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Day         int       `json:"day"`
}

type createTourRequest struct {
	Name          string            `json:"name" validate:"required,min=10,max=40"`
	Duration      int               `json:"duration" validate:"required,gte=1"`
	MaxGroupSize  int               `json:"max_group_size" validate:"required,gte=1"`
	Difficulty    string            `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         float64           `json:"price" validate:"required,gte=0"`
	PriceDiscount float64           `json:"price_discount" validate:"omitempty,gte=0,ltefield=Price"`
	Summary       string            `json:"summary" validate:"required"`
	Description   string            `json:"description"`
	ImageCover    string            `json:"image_cover"`
	StartDates    []time.Time       `json:"start_dates"`
	StartLocation *locationRequest  `json:"start_location"`
	Locations     []locationRequest `json:"locations"`
}

type updateTourRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int     `json:"duration" validate:"omitempty,gte=1"`
	MaxGroupSize  *int     `json:"max_group_size" validate:"omitempty,gte=1"`
	Difficulty    *string  `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	PriceDiscount *float64 `json:"price_discount" validate:"omitempty,gte=0"`
	Summary       *string  `json:"summary"`
	Description   *string  `json:"description"`
	ImageCover    *string  `json:"image_cover"`
	Secret        *bool    `json:"secret_tour"`
}

type tourResponse struct {
	Tour *domain.Tour `json:"tour"`
}

type listToursResponse struct {
	Items      []*domain.Tour `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

func toLocation(req *locationRequest) *domain.Location {
	if req == nil {
		return nil
	}
	return &domain.Location{
		GeoPoint:    domain.GeoPoint{Type: "Point", Coordinates: req.Coordinates},
		Address:     req.Address,
		Description: req.Description,
		Day:         req.Day,
	}
}

// Create registers a new tour. Restricted to admin and lead-guide.
//
// @Summary      Create a tour
// @Tags         tours
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTourRequest  true  "Tour details"
// @Success      201   {object}  tourResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /tours [post]
func (h *TourHandler) Create(c echo.Context) error {
	var req createTourRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	locations := make([]domain.Location, 0, len(req.Locations))
	for i := range req.Locations {
		locations = append(locations, *toLocation(&req.Locations[i]))
	}

	tour, err := h.tourService.CreateTour(c.Request().Context(), ports.CreateTourInput{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		StartDates:    req.StartDates,
		StartLocation: toLocation(req.StartLocation),
		Locations:     locations,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tourResponse{Tour: tour})
}

// Get returns a single tour by id.
//
// @Summary      Get a tour
// @Tags         tours
// @Produce      json
// @Param        id   path      string  true  "Tour id"
// @Success      200  {object}  tourResponse
// @Failure      404  {object}  errorResponse
// @Router       /tours/{id} [get]
func (h *TourHandler) Get(c echo.Context) error {
	tour, err := h.tourService.GetTour(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tourResponse{Tour: tour})
}

// List returns a filtered, sorted page of tours.
//
// @Summary      List tours
// @Tags         tours
// @Produce      json
// @Param        difficulty  query     string  false  "Filter by difficulty"
// @Param        max_price   query     number  false  "Maximum price"
// @Param        sort        query     string  false  "Sort expression, e.g. price,-ratingsAverage"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Success      200         {object}  listToursResponse
// @Router       /tours [get]
func (h *TourHandler) List(c echo.Context) error {
	return h.list(c, h.filterFromQuery(c))
}

// TopCheap is the /top-5-cheap alias: best-rated, cheapest-first, five rows.
//
// @Summary      List the five best cheap tours
// @Tags         tours
// @Produce      json
// @Success      200  {object}  listToursResponse
// @Router       /tours/top-5-cheap [get]
func (h *TourHandler) TopCheap(c echo.Context) error {
	return h.list(c, ports.ListToursFilter{
		Sort:  "-ratingsAverage,price",
		Limit: 5,
	})
}

func (h *TourHandler) filterFromQuery(c echo.Context) ports.ListToursFilter {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	maxPrice, _ := strconv.ParseFloat(c.QueryParam("max_price"), 64)

	return ports.ListToursFilter{
		Difficulty: c.QueryParam("difficulty"),
		MaxPrice:   maxPrice,
		Sort:       c.QueryParam("sort"),
		Page:       page,
		Limit:      limit,
	}
}

func (h *TourHandler) list(c echo.Context, filter ports.ListToursFilter) error {
	result, err := h.tourService.ListTours(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listToursResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Update changes tour fields. Restricted to admin and lead-guide.
//
// @Summary      Update a tour
// @Tags         tours
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Tour id"
// @Param        body  body      updateTourRequest  true  "Fields to change"
// @Success      200   {object}  tourResponse
// @Failure      404   {object}  errorResponse
// @Router       /tours/{id} [patch]
func (h *TourHandler) Update(c echo.Context) error {
	var req updateTourRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tour, err := h.tourService.UpdateTour(c.Request().Context(), c.Param("id"), ports.UpdateTourInput{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Secret:        req.Secret,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tourResponse{Tour: tour})
}

// Delete removes a tour. Restricted to admin and lead-guide.
//
// @Summary      Delete a tour
// @Tags         tours
// @Security     BearerAuth
// @Param        id  path  string  true  "Tour id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /tours/{id} [delete]
func (h *TourHandler) Delete(c echo.Context) error {
	if err := h.tourService.DeleteTour(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns rating and price aggregates grouped by difficulty.
//
// @Summary      Tour statistics
// @Tags         tours
// @Produce      json
// @Success      200  {array}  ports.TourStats
// @Router       /tours/tour-stats [get]
func (h *TourHandler) Stats(c echo.Context) error {
	stats, err := h.tourService.TourStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// MonthlyPlan returns per-month start counts for a year. Restricted to
// admin, lead-guide and guide.
//
// @Summary      Monthly tour plan
// @Tags         tours
// @Produce      json
// @Security     BearerAuth
// @Param        year  path      int  true  "Year, e.g. 2026"
// @Success      200   {array}   ports.MonthlyPlanEntry
// @Failure      400   {object}  errorResponse
// @Router       /tours/monthly-plan/{year} [get]
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be a number")
	}

	plan, err := h.tourService.MonthlyPlan(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

// Within returns tours starting within a distance of a center point.
// Path shape: /tours-within/:distance/center/:latlng/unit/:unit
//
// @Summary      Tours within a radius
// @Tags         tours
// @Produce      json
// @Param        distance  path      number  true  "Radius"
// @Param        latlng    path      string  true  "Center as lat,lng"
// @Param        unit      path      string  true  "mi or km"
// @Success      200       {object}  listToursResponse
// @Failure      400       {object}  errorResponse
// @Router       /tours/tours-within/{distance}/center/{latlng}/unit/{unit} [get]
func (h *TourHandler) Within(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		return domain.ErrInvalidCoordinates
	}

	parts := strings.Split(c.Param("latlng"), ",")
	if len(parts) != 2 {
		return domain.ErrInvalidCoordinates
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return domain.ErrInvalidCoordinates
	}

	tours, err := h.tourService.ToursWithin(c.Request().Context(), ports.ToursWithinInput{
		Distance: distance,
		Lat:      lat,
		Lng:      lng,
		Unit:     c.Param("unit"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listToursResponse{
		Items: tours,
		Total: int64(len(tours)),
	})
}

// Distances reports how far every tour starts from a reference point.
// Path shape: /distances/:latlng/unit/:unit
//
// @Summary      Distances to all tours from a point
// @Tags         tours
// @Produce      json
// @Param        latlng  path      string  true  "Point as lat,lng"
// @Param        unit    path      string  true  "mi or km"
// @Success      200     {array}   ports.TourDistance
// @Failure      400     {object}  errorResponse
// @Router       /tours/distances/{latlng}/unit/{unit} [get]
func (h *TourHandler) Distances(c echo.Context) error {
	parts := strings.Split(c.Param("latlng"), ",")
	if len(parts) != 2 {
		return domain.ErrInvalidCoordinates
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return domain.ErrInvalidCoordinates
	}

	distances, err := h.tourService.Distances(c.Request().Context(), ports.DistancesInput{
		Lat:  lat,
		Lng:  lng,
		Unit: c.Param("unit"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, distances)
}
