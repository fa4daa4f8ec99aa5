// Package store abstracts the document database holding users, groups and
// pings. The interface mirrors what the services need: point reads, filtered
// queries and a live watch that delivers a fresh snapshot after every change.
// Backends can be swapped (MongoDB in production, memory in tests) without
// touching the service layer.
package store

import (
	"context"

	"github.com/skydentango/ping-social-app/internal/models"
)

type UserStore interface {
	// CreateUser persists a user document. The ID comes from the identity
	// provider and must already be set.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUsers returns the users it finds; unknown IDs are skipped, not errors.
	GetUsers(ctx context.Context, ids []string) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type GroupStore interface {
	// CreateGroup persists a new group and populates its ID.
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	UpdateGroup(ctx context.Context, g *models.Group) error
	DeleteGroup(ctx context.Context, id string) error
	// ListGroupsFor returns groups whose members contain userID.
	ListGroupsFor(ctx context.Context, userID string) ([]models.Group, error)
}

type PingStore interface {
	// CreatePing persists a new ping and populates its ID.
	CreatePing(ctx context.Context, p *models.Ping) error
	GetPing(ctx context.Context, id string) (*models.Ping, error)
	// SetResponses replaces a ping's whole response array. This is the
	// document-level last-write-wins write the respond flow builds on.
	SetResponses(ctx context.Context, pingID string, responses []models.PingResponse) error
	DeletePing(ctx context.Context, id string) error
	// ListPings returns all pings ordered by sent time, newest first.
	ListPings(ctx context.Context) ([]models.Ping, error)
	// WatchPings delivers the current snapshot immediately, then a fresh
	// snapshot after every change, until ctx is cancelled. Snapshots on one
	// subscription are totally ordered.
	WatchPings(ctx context.Context) (<-chan []models.Ping, error)
}

type Store interface {
	UserStore
	GroupStore
	PingStore
	Close(ctx context.Context) error
}
