package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/splatr/splatr/internal/model"
)

// UserRepository is the persistence surface the rest of the app sees.
// Lookups by external id return a slice because the filter is arbitrary,
// but the unique index guarantees 0 or 1 elements — callers must not
// assume exactly 1.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	FindUsersByExternalID(ctx context.Context, externalID string) ([]model.User, error)
}

type ArtistRepository interface {
	GetArtistByID(ctx context.Context, id primitive.ObjectID) (*model.Artist, error)
}
