package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

const toursCollection = "tours"

type TourRepository struct {
	crudRepository[mongoTour]
}

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{crudRepository[mongoTour]{
		coll:         db.Collection(toursCollection),
		notFoundErr:  domain.ErrTourNotFound,
		duplicateErr: domain.ErrDuplicateTour,
	}}
}

type mongoTour struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Duration        int                `bson:"duration"`
	MaxGroupSize    int                `bson:"maxGroupSize"`
	Difficulty      string             `bson:"difficulty"`
	RatingsAverage  float64            `bson:"ratingsAverage"`
	RatingsQuantity int                `bson:"ratingsQuantity"`
	Price           float64            `bson:"price"`
	PriceDiscount   float64            `bson:"priceDiscount,omitempty"`
	Summary         string             `bson:"summary"`
	Description     string             `bson:"description,omitempty"`
	ImageCover      string             `bson:"imageCover,omitempty"`
	Images          []string           `bson:"images,omitempty"`
	StartDates      []time.Time        `bson:"startDates,omitempty"`
	StartLocation   *domain.Location   `bson:"startLocation,omitempty"`
	Locations       []domain.Location  `bson:"locations,omitempty"`
	Secret          bool               `bson:"secretTour"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (m *mongoTour) toDomain() *domain.Tour {
	return &domain.Tour{
		ID:              m.ID.Hex(),
		Name:            m.Name,
		Duration:        m.Duration,
		MaxGroupSize:    m.MaxGroupSize,
		Difficulty:      m.Difficulty,
		RatingsAverage:  m.RatingsAverage,
		RatingsQuantity: m.RatingsQuantity,
		Price:           m.Price,
		PriceDiscount:   m.PriceDiscount,
		Summary:         m.Summary,
		Description:     m.Description,
		ImageCover:      m.ImageCover,
		Images:          m.Images,
		StartDates:      m.StartDates,
		StartLocation:   m.StartLocation,
		Locations:       m.Locations,
		Secret:          m.Secret,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *TourRepository) Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	doc := mongoTour{
		Name:            tour.Name,
		Duration:        tour.Duration,
		MaxGroupSize:    tour.MaxGroupSize,
		Difficulty:      tour.Difficulty,
		RatingsAverage:  tour.RatingsAverage,
		RatingsQuantity: tour.RatingsQuantity,
		Price:           tour.Price,
		PriceDiscount:   tour.PriceDiscount,
		Summary:         tour.Summary,
		Description:     tour.Description,
		ImageCover:      tour.ImageCover,
		Images:          tour.Images,
		StartDates:      tour.StartDates,
		StartLocation:   tour.StartLocation,
		Locations:       tour.Locations,
		Secret:          tour.Secret,
		CreatedAt:       tour.CreatedAt,
		UpdatedAt:       tour.UpdatedAt,
	}

	oid, err := r.insertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *tour
	created.ID = oid.Hex()
	return &created, nil
}

func (r *TourRepository) FindByID(ctx context.Context, id string) (*domain.Tour, error) {
	doc, err := r.findByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *TourRepository) List(ctx context.Context, filter ports.ListToursFilter) ([]*domain.Tour, int64, error) {
	query := bson.M{"secretTour": bson.M{"$ne": true}}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}
	if filter.MaxPrice > 0 {
		query["price"] = bson.M{"$lte": filter.MaxPrice}
	}

	docs, total, err := r.page(ctx, query, pageOpts(filter.Page, filter.Limit, parseSort(filter.Sort)))
	if err != nil {
		return nil, 0, err
	}

	tours := make([]*domain.Tour, 0, len(docs))
	for _, d := range docs {
		tours = append(tours, d.toDomain())
	}
	return tours, total, nil
}

// parseSort turns a comma-separated sort expression ("price,-ratingsAverage")
// into a mongo sort document. Defaults to newest first.
func parseSort(sort string) bson.D {
	if sort == "" {
		return bson.D{{Key: "createdAt", Value: -1}}
	}

	var d bson.D
	for _, field := range strings.Split(sort, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		d = append(d, bson.E{Key: field, Value: order})
	}
	return d
}

func (r *TourRepository) UpdateByID(ctx context.Context, id string, update ports.UpdateTourInput) (*domain.Tour, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Duration != nil {
		set["duration"] = *update.Duration
	}
	if update.MaxGroupSize != nil {
		set["maxGroupSize"] = *update.MaxGroupSize
	}
	if update.Difficulty != nil {
		set["difficulty"] = *update.Difficulty
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.PriceDiscount != nil {
		set["priceDiscount"] = *update.PriceDiscount
	}
	if update.Summary != nil {
		set["summary"] = *update.Summary
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.ImageCover != nil {
		set["imageCover"] = *update.ImageCover
	}
	if update.Secret != nil {
		set["secretTour"] = *update.Secret
	}

	doc, err := r.updateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *TourRepository) DeleteByID(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// UpdateRatingSummary overwrites the derived review summary fields.
func (r *TourRepository) UpdateRatingSummary(ctx context.Context, tourID string, summary domain.RatingSummary) error {
	oid, err := objectID(tourID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"ratingsQuantity": summary.Quantity, "ratingsAverage": summary.Average},
	})
	if err != nil {
		return fmt.Errorf("update rating summary: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTourNotFound
	}
	return nil
}

// Stats aggregates rating and price figures grouped by difficulty, over
// tours with an average rating of at least 4.5.
func (r *TourRepository) Stats(ctx context.Context) ([]ports.TourStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": 4.5}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$difficulty",
			"num_tours":   bson.M{"$sum": 1},
			"num_ratings": bson.M{"$sum": "$ratingsQuantity"},
			"avg_rating":  bson.M{"$avg": "$ratingsAverage"},
			"avg_price":   bson.M{"$avg": "$price"},
			"min_price":   bson.M{"$min": "$price"},
			"max_price":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avg_price": 1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tour stats: %w", err)
	}
	defer cur.Close(ctx)

	var stats []ports.TourStats
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("tour stats decode: %w", err)
	}
	return stats, nil
}

// MonthlyPlan unwinds start dates and counts how many tours begin in each
// month of the given year.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]ports.MonthlyPlanEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$month": "$startDates"},
			"num_starts": bson.M{"$sum": 1},
			"tours":      bson.M{"$push": "$name"},
		}}},
		{{Key: "$sort", Value: bson.M{"num_starts": -1}}},
		{{Key: "$limit", Value: 12}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("monthly plan: %w", err)
	}
	defer cur.Close(ctx)

	var plan []ports.MonthlyPlanEntry
	if err := cur.All(ctx, &plan); err != nil {
		return nil, fmt.Errorf("monthly plan decode: %w", err)
	}
	return plan, nil
}

// FindWithin returns non-secret tours starting within radius (radians) of the
// center point. Requires the 2dsphere index on startLocation.
func (r *TourRepository) FindWithin(ctx context.Context, lat, lng, radiusRadians float64) ([]*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"secretTour": bson.M{"$ne": true},
		"startLocation": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radiusRadians},
			},
		},
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("tours within: %w", err)
	}
	defer cur.Close(ctx)

	var docs []*mongoTour
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("tours within decode: %w", err)
	}

	tours := make([]*domain.Tour, 0, len(docs))
	for _, d := range docs {
		tours = append(tours, d.toDomain())
	}
	return tours, nil
}

// DistancesFrom computes the distance from the given point to every
// non-secret tour's start location. $geoNear yields meters; multiplier scales
// them to the caller's unit. Must be the first pipeline stage and requires
// the 2dsphere index on startLocation.
func (r *TourRepository) DistancesFrom(ctx context.Context, lat, lng, multiplier float64) ([]ports.TourDistance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              bson.M{"secretTour": bson.M{"$ne": true}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      bson.M{"$toString": "$_id"},
			"name":     1,
			"distance": 1,
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("tour distances: %w", err)
	}
	defer cur.Close(ctx)

	var distances []ports.TourDistance
	if err := cur.All(ctx, &distances); err != nil {
		return nil, fmt.Errorf("tour distances decode: %w", err)
	}
	return distances, nil
}

// EnsureIndexes creates the unique name index and the 2dsphere geo index.
func (r *TourRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: indexUnique()},
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
