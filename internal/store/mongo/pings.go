package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skydentango/ping-social-app/internal/apperr"
	"github.com/skydentango/ping-social-app/internal/models"
)

func (s *Store) CreatePing(ctx context.Context, p *models.Ping) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p.ID = primitive.NewObjectID().Hex()
	_, err := s.pings.InsertOne(ctx, p)
	return err
}

func (s *Store) GetPing(ctx context.Context, id string) (*models.Ping, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p models.Ping
	err := s.pings.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.ErrPingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetResponses overwrites the response array in one document-level write.
// Two concurrent writers for the same ping are last-write-wins here; the
// engine serializes per (ping, user) within this process only.
func (s *Store) SetResponses(ctx context.Context, pingID string, responses []models.PingResponse) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if responses == nil {
		responses = []models.PingResponse{}
	}
	res, err := s.pings.UpdateOne(ctx,
		bson.M{"_id": pingID},
		bson.M{"$set": bson.M{"responses": responses}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrPingNotFound
	}
	return nil
}

func (s *Store) DeletePing(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.pings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrPingNotFound
	}
	return nil
}

func (s *Store) ListPings(ctx context.Context) ([]models.Ping, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := s.pings.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Ping
	for cur.Next(ctx) {
		var p models.Ping
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}
