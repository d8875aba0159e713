package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

const reviewsCollection = "reviews"

type ReviewRepository struct {
	crudRepository[mongoReview]
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{crudRepository[mongoReview]{
		coll:         db.Collection(reviewsCollection),
		notFoundErr:  domain.ErrReviewNotFound,
		duplicateErr: domain.ErrDuplicateReview,
	}}
}

type mongoReview struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"review"`
	Rating    int                `bson:"rating"`
	Tour      primitive.ObjectID `bson:"tour"`
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (m *mongoReview) toDomain() *domain.Review {
	return &domain.Review{
		ID:        m.ID.Hex(),
		Text:      m.Text,
		Rating:    m.Rating,
		TourID:    m.Tour.Hex(),
		UserID:    m.User.Hex(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	tourID, err := objectID(review.TourID)
	if err != nil {
		return nil, err
	}
	userID, err := objectID(review.UserID)
	if err != nil {
		return nil, err
	}

	doc := mongoReview{
		Text:      review.Text,
		Rating:    review.Rating,
		Tour:      tourID,
		User:      userID,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}

	oid, err := r.insertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *review
	created.ID = oid.Hex()
	return &created, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	doc, err := r.findByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) List(ctx context.Context, filter ports.ListReviewsFilter) ([]*domain.Review, int64, error) {
	query := bson.M{}
	if filter.TourID != "" {
		tourID, err := objectID(filter.TourID)
		if err != nil {
			return nil, 0, err
		}
		query["tour"] = tourID
	}

	docs, total, err := r.page(ctx, query, pageOpts(filter.Page, filter.Limit, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}

	reviews := make([]*domain.Review, 0, len(docs))
	for _, d := range docs {
		reviews = append(reviews, d.toDomain())
	}
	return reviews, total, nil
}

func (r *ReviewRepository) UpdateByID(ctx context.Context, id string, text *string, rating *int) (*domain.Review, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if text != nil {
		set["review"] = *text
	}
	if rating != nil {
		set["rating"] = *rating
	}

	doc, err := r.updateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) DeleteByID(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// AggregateTourRatings computes the review count and average rating for a
// tour in a single aggregation pass. (0, 0, nil) when the tour has none.
func (r *ReviewRepository) AggregateTourRatings(ctx context.Context, tourID string) (int, float64, error) {
	oid, err := objectID(tourID)
	if err != nil {
		return 0, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": oid}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$tour",
			"num_rating": bson.M{"$sum": 1},
			"avg_rating": bson.M{"$avg": "$rating"},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer cur.Close(ctx)

	var stats []struct {
		NumRating int     `bson:"num_rating"`
		AvgRating float64 `bson:"avg_rating"`
	}
	if err := cur.All(ctx, &stats); err != nil {
		return 0, 0, fmt.Errorf("aggregate ratings decode: %w", err)
	}

	if len(stats) == 0 {
		return 0, 0, nil
	}
	return stats[0].NumRating, stats[0].AvgRating, nil
}

// EnsureIndexes creates the unique (tour, user) index that enforces one
// review per user per tour.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}},
		Options: indexUnique(),
	})
	return err
}
