package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skydentango/ping-social-app/internal/models"
)

// WatchPings opens a change stream on the pings collection and re-queries the
// ordered list after every event. Subscribers therefore see a total order of
// snapshots, each reflecting all writes acknowledged before it was taken.
func (s *Store) WatchPings(ctx context.Context) (<-chan []models.Ping, error) {
	stream, err := s.pings.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	out := make(chan []models.Ping, 16)

	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		// Initial snapshot before any event.
		if !s.sendSnapshot(ctx, out) {
			return
		}
		for stream.Next(ctx) {
			if !s.sendSnapshot(ctx, out) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.log.Errorw("ping change stream ended", "error", err)
		}
	}()
	return out, nil
}

func (s *Store) sendSnapshot(ctx context.Context, out chan<- []models.Ping) bool {
	snap, err := s.ListPings(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Errorw("ping snapshot query failed", "error", err)
		}
		return ctx.Err() == nil
	}
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}
