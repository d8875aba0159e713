package domain

import (
	"errors"
	"time"
)

// Difficulty levels a tour can be rated at.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// DefaultRatingsAverage is the rating summary shown for a tour with no reviews.
const DefaultRatingsAverage = 4.5

var ErrTourNotFound = errors.New("tour not found")
var ErrInvalidDifficulty = errors.New("difficulty must be easy, medium or difficult")
var ErrDuplicateTour = errors.New("tour name already in use")
var ErrInvalidID = errors.New("invalid object id")
var ErrInvalidCoordinates = errors.New("invalid coordinates, expected lat,lng")

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// Location is a stop on a tour itinerary.
type Location struct {
	GeoPoint    `bson:",inline"`
	Address     string `json:"address,omitempty" bson:"address,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Day         int    `json:"day,omitempty" bson:"day,omitempty"`
}

// Tour is the core aggregate root. RatingsQuantity and RatingsAverage are
// derived from the tour's reviews and kept in sync by the review service.
type Tour struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Duration        int         `json:"duration"`
	MaxGroupSize    int         `json:"max_group_size"`
	Difficulty      string      `json:"difficulty"`
	RatingsAverage  float64     `json:"ratings_average"`
	RatingsQuantity int         `json:"ratings_quantity"`
	Price           float64     `json:"price"`
	PriceDiscount   float64     `json:"price_discount,omitempty"`
	Summary         string      `json:"summary"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"image_cover,omitempty"`
	Images          []string    `json:"images,omitempty"`
	StartDates      []time.Time `json:"start_dates,omitempty"`
	StartLocation   *Location   `json:"start_location,omitempty"`
	Locations       []Location  `json:"locations,omitempty"`
	Secret          bool        `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ValidDifficulty reports whether d is a recognised difficulty level.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}
