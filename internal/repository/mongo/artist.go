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
)

// GetArtistByID retrieves the artist a user's weak reference points at.
func (db *DB) GetArtistByID(ctx context.Context, id primitive.ObjectID) (*model.Artist, error) {
	var a model.Artist
	err := db.artists.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return nil, apperror.NotFound("artist", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: getting artist %s: %w", id.Hex(), err)
	}
	return &a, nil
}
