package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

const usersCollection = "users"

type UserRepository struct {
	crudRepository[mongoUser]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{crudRepository[mongoUser]{
		coll:         db.Collection(usersCollection),
		notFoundErr:  domain.ErrUserNotFound,
		duplicateErr: domain.ErrEmailTaken,
	}}
}

type mongoUser struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Name                 string             `bson:"name"`
	Email                string             `bson:"email"`
	Role                 string             `bson:"role"`
	Password             string             `bson:"password"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty"`
	Active               bool               `bson:"active"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

func (m *mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:             m.ID.Hex(),
		Name:           m.Name,
		Email:          m.Email,
		Role:           m.Role,
		PasswordHash:   m.Password,
		ResetTokenHash: m.PasswordResetToken,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.PasswordChangedAt != nil {
		u.PasswordChangedAt = *m.PasswordChangedAt
	}
	if m.PasswordResetExpires != nil {
		u.ResetTokenExpires = *m.PasswordResetExpires
	}
	return u
}

// activeOnly appends the soft-delete predicate to a filter. Callers must opt
// in explicitly; there is no implicit query rewrite.
func activeOnly(filter bson.M) bson.M {
	filter["active"] = bson.M{"$ne": false}
	return filter
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Password:  user.PasswordHash,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	oid, err := r.insertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *user
	created.ID = oid.Hex()
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string, active bool) (*domain.User, error) {
	extra := bson.M{}
	if active {
		extra = activeOnly(extra)
	}
	doc, err := r.findByID(ctx, id, extra)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string, active bool) (*domain.User, error) {
	filter := bson.M{"email": email}
	if active {
		filter = activeOnly(filter)
	}
	doc, err := r.findOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	doc, err := r.findOne(ctx, activeOnly(bson.M{"passwordResetToken": hash}))
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdatePassword stores the new hash and changed-at timestamp and drops any
// pending reset token. The plaintext confirmation never reaches this layer.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"password":          passwordHash,
			"passwordChangedAt": changedAt,
			"updatedAt":         time.Now().UTC(),
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var update bson.M
	if tokenHash == "" {
		update = bson.M{"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""}}
	} else {
		update = bson.M{"$set": bson.M{"passwordResetToken": tokenHash, "passwordResetExpires": expires}}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if email != "" {
		set["email"] = email
	}

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	doc, err := r.findOneAndUpdate(ctx, activeOnly(bson.M{"_id": oid}), bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	docs, total, err := r.page(ctx, activeOnly(bson.M{}), pageOpts(page, limit, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, total, nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, update ports.UpdateUserInput) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}

	doc, err := r.updateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	return r.deleteByID(ctx, id)
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: indexUnique(),
	})
	return err
}
