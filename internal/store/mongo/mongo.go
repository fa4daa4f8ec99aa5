// Package mongo implements store.Store on MongoDB. Live subscriptions are
// built on change streams: every event on the pings collection triggers a
// re-query so subscribers always receive a full, ordered snapshot.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const opTimeout = 5 * time.Second

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	groups *mongo.Collection
	pings  *mongo.Collection
	log    *zap.SugaredLogger
}

func Connect(ctx context.Context, uri, dbName string, log *zap.SugaredLogger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Errorf("MongoDB connection failed: %v", err)
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Errorf("MongoDB ping failed: %v", err)
		return nil, err
	}
	log.Info("MongoDB connected successfully")

	db := client.Database(dbName)
	return &Store{
		client: client,
		users:  db.Collection("users"),
		groups: db.Collection("groups"),
		pings:  db.Collection("pings"),
		log:    log,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
