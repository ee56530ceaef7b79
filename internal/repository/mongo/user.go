package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/model"
	"github.com/splatr/splatr/internal/repository"
)

// compile-time check that *DB implements the repository interfaces
var (
	_ repository.UserRepository   = (*DB)(nil)
	_ repository.ArtistRepository = (*DB)(nil)
)

// CreateUser validates and inserts a new user record. The record's ID is
// assigned here. A duplicate externalId maps to apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	_, err := db.users.InsertOne(ctx, user)
	if mongodrv.IsDuplicateKeyError(err) {
		return apperror.Conflict("user", user.ExternalID)
	}
	if err != nil {
		return fmt.Errorf("mongo: inserting user (externalId=%s): %w", user.ExternalID, err)
	}
	return nil
}

// GetUserByID retrieves a user by the hex form of their internal ID.
// A malformed id cannot name a record, so it reports not-found rather
// than an error — the session middleware relies on that collapse.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("user", id)
	}

	var u model.User
	err = db.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: getting user %s: %w", id, err)
	}
	return &u, nil
}

// FindUsersByExternalID returns every user whose externalId equals the
// given value. The unique index caps the result at one element, but the
// contract stays a slice.
func (db *DB) FindUsersByExternalID(ctx context.Context, externalID string) ([]model.User, error) {
	cur, err := db.users.Find(ctx, bson.M{"externalId": externalID})
	if err != nil {
		return nil, fmt.Errorf("mongo: finding users (externalId=%s): %w", externalID, err)
	}

	users := make([]model.User, 0, 1)
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo: decoding users (externalId=%s): %w", externalID, err)
	}
	return users, nil
}
