package domain

import (
	"errors"
	"time"
)

var ErrReviewNotFound = errors.New("review not found")
var ErrDuplicateReview = errors.New("user has already reviewed this tour")
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Review is a rating left by a user on a tour. A (tour, user) pair may hold
// at most one review; the unique index on the collection enforces it.
type Review struct {
	ID        string    `json:"id"`
	Text      string    `json:"review"`
	Rating    int       `json:"rating"`
	TourID    string    `json:"tour_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingSummary is the derived {count, average} pair embedded in a tour.
type RatingSummary struct {
	Quantity int     `json:"quantity"`
	Average  float64 `json:"average"`
}
