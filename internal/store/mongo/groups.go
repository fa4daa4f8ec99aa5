package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skydentango/ping-social-app/internal/apperr"
	"github.com/skydentango/ping-social-app/internal/models"
)

func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	g.ID = primitive.NewObjectID().Hex()
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.groups.InsertOne(ctx, g)
	return err
}

func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var g models.Group
	err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *models.Group) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	g.UpdatedAt = time.Now().UTC()
	res, err := s.groups.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrGroupNotFound
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.groups.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrGroupNotFound
	}
	return nil
}

func (s *Store) ListGroupsFor(ctx context.Context, userID string) ([]models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.groups.Find(ctx, bson.M{"members": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, cur.Err()
}
