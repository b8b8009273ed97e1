package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// CollectionName is the MongoDB collection holding user documents.
const CollectionName = "users"

type mongoUser struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Name           string        `bson:"name"`
	Email          string        `bson:"email"`
	EmailValidated bool          `bson:"emailValidated"`
	Password       string        `bson:"password"`
	Roles          []string      `bson:"role"`
	Image          *string       `bson:"img,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

func (d mongoUser) toUser() *User {
	return &User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		EmailValidated: d.EmailValidated,
		PasswordHash:   d.Password,
		Roles:          stringsToRoles(d.Roles),
		Image:          d.Image,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// MongoRepository implements Store over a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoRepository binds the repository to the users collection of db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

// EnsureSchema creates the unique email index.
func (r *MongoRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("users: create email index: %w", err)
	}
	return nil
}

// FindByEmail fetches a user by exact email.
func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID fetches a user by its hex object id.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc.toUser(), nil
}

// Create inserts a new user document.
func (r *MongoRepository) Create(ctx context.Context, user *User) (*User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := mongoUser{
		ID:             bson.NewObjectID(),
		Name:           user.Name,
		Email:          user.Email,
		EmailValidated: user.EmailValidated,
		Password:       user.PasswordHash,
		Roles:          rolesToStrings(user.Roles),
		Image:          user.Image,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, err
	}
	return doc.toUser(), nil
}

// Update applies changes and returns the document as stored afterwards.
func (r *MongoRepository) Update(ctx context.Context, id string, changes Update) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	current, err := r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, err
	}
	next, err := changes.Apply(*current, r.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	set := bson.D{
		{Key: "name", Value: next.Name},
		{Key: "email", Value: next.Email},
		{Key: "emailValidated", Value: next.EmailValidated},
		{Key: "password", Value: next.PasswordHash},
		{Key: "role", Value: rolesToStrings(next.Roles)},
		{Key: "updatedAt", Value: next.UpdatedAt},
	}
	if next.Image != nil {
		set = append(set, bson.E{Key: "img", Value: *next.Image})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, shared.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, shared.ErrDuplicateEmail
		}
		return nil, err
	}
	return doc.toUser(), nil
}

// Delete removes the user document and reports whether one was removed.
func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

var _ Store = (*MongoRepository)(nil)
