// Package mongo implements the repository interfaces on a MongoDB
// deployment.
//
// The driver's *mongo.Client is a connection pool and is safe for
// concurrent use, so one DB value is shared by every request. The
// at-most-one-user-per-externalId invariant is enforced here, by a unique
// index, not by application-level coordination.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultDatabase = "splatr"

// DB owns the Mongo client and the collection handles.
type DB struct {
	client  *mongodrv.Client
	users   *mongodrv.Collection
	artists *mongodrv.Collection
}

// New connects to the deployment named by uri, verifies the connection,
// and ensures the unique index on users.externalId. The database name
// comes from the connection string path, defaulting to "splatr".
func New(ctx context.Context, uri string) (*DB, error) {
	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: pinging deployment: %w", err)
	}

	database := client.Database(databaseName(uri))
	db := &DB{
		client:  client,
		users:   database.Collection("users"),
		artists: database.Collection("artists"),
	}

	// Unique index backs the externalId invariant. Concurrent first-login
	// inserts race; the loser gets a duplicate-key error, which CreateUser
	// maps to apperror.ErrConflict so the caller can re-fetch.
	_, err = db.users.Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "externalId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: creating externalId index: %w", err)
	}

	return db, nil
}

// Close disconnects the underlying client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func databaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return defaultDatabase
	}
	return name
}
