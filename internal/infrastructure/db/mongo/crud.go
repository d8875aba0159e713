package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// crudRepository bundles the document-level operations shared by every
// collection-backed repository: insert, lookup, find-and-update, delete and
// paged listing. T is the mongo document struct of the collection. Each
// repository embeds one instance and supplies its own sentinel errors.
type crudRepository[T any] struct {
	coll         *mongo.Collection
	notFoundErr  error
	duplicateErr error
}

// objectID parses a hex object id, mapping malformed input to a domain error
// so the API layer renders a 400 instead of a 404.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

func (r *crudRepository[T]) insertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && r.duplicateErr != nil {
			return primitive.NilObjectID, r.duplicateErr
		}
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", r.coll.Name(), err)
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid, nil
}

func (r *crudRepository[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc T
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFoundErr
		}
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	return &doc, nil
}

func (r *crudRepository[T]) findByID(ctx context.Context, id string, extra bson.M) (*T, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}
	return r.findOne(ctx, filter)
}

// findOneAndUpdate applies update and returns the post-mutation document.
func (r *crudRepository[T]) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFoundErr
		}
		if mongo.IsDuplicateKeyError(err) && r.duplicateErr != nil {
			return nil, r.duplicateErr
		}
		return nil, fmt.Errorf("update %s: %w", r.coll.Name(), err)
	}
	return &doc, nil
}

func (r *crudRepository[T]) updateByID(ctx context.Context, id string, update bson.M) (*T, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, update)
}

func (r *crudRepository[T]) deleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFoundErr
	}
	return nil
}

// page runs a filtered, paginated find plus a matching count.
func (r *crudRepository[T]) page(ctx context.Context, filter bson.M, findOpts *options.FindOptions) ([]*T, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.coll.Name(), err)
	}

	cur, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.coll.Name(), err)
	}
	defer cur.Close(ctx)

	var docs []*T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
	}
	return docs, total, nil
}

func indexUnique() *options.IndexOptions {
	return options.Index().SetUnique(true)
}

// pageOpts builds skip/limit/sort find options from 1-based paging parameters.
func pageOpts(page, limit int, sort bson.D) *options.FindOptions {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}
