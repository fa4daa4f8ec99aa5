// Package ws serves the live ping feed. One subscription to the store's
// change feed drives every connected client: each snapshot is folded into the
// client's session read model and the client receives its own visible slice.
package ws

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/auth"
	"github.com/skydentango/ping-social-app/internal/cache"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/session"
	"github.com/skydentango/ping-social-app/internal/store"
)

// ViewBuilder renders the feed payload a viewer should see for a model. It is
// implemented by the handlers package so the hub stays free of lookup wiring.
type ViewBuilder interface {
	BuildFeed(ctx context.Context, viewerID string, pings []models.Ping) ([]byte, error)
}

type Client struct {
	UserID  string
	Conn    *websocket.Conn
	Send    chan []byte
	Session *session.Session
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	touch      chan string

	mu       sync.Mutex
	clients  map[*Client]bool
	lastSnap []models.Ping

	pings    store.PingStore
	builder  ViewBuilder
	presence *cache.Client
	jwt      *auth.JWTManager
	log      *zap.SugaredLogger
}

func NewHub(pings store.PingStore, builder ViewBuilder, presence *cache.Client, jwtManager *auth.JWTManager, log *zap.SugaredLogger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		touch:      make(chan string, 16),
		clients:    make(map[*Client]bool),
		pings:      pings,
		builder:    builder,
		presence:   presence,
		jwt:        jwtManager,
		log:        log,
	}
}

// Run drives the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	snapshots, err := h.pings.WatchPings(ctx)
	if err != nil {
		h.log.Errorw("ping watch failed, feed disabled", "error", err)
		snapshots = nil
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			client.Session.Fold(h.lastSnap)
			h.mu.Unlock()
			h.push(ctx, client)
			if h.presence != nil {
				if err := h.presence.MarkUserOnline(ctx, client.UserID); err != nil {
					h.log.Debugw("presence update failed", "user_id", client.UserID, "error", err)
				}
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			if h.presence != nil {
				_ = h.presence.MarkUserOffline(ctx, client.UserID)
			}

		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			h.mu.Lock()
			h.lastSnap = snap
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				c.Session.Fold(snap)
				targets = append(targets, c)
			}
			h.mu.Unlock()
			for _, c := range targets {
				h.push(ctx, c)
			}

		case userID := <-h.touch:
			h.mu.Lock()
			targets := make([]*Client, 0, 1)
			for c := range h.clients {
				if c.UserID == userID {
					targets = append(targets, c)
				}
			}
			h.mu.Unlock()
			for _, c := range targets {
				h.push(ctx, c)
			}
		}
	}
}

// Touch re-sends the current view to a user's connections, e.g. after an
// optimistic mutation through the REST surface.
func (h *Hub) Touch(userID string) {
	select {
	case h.touch <- userID:
	default:
	}
}

// SessionFor returns the read model of one of the user's live connections.
func (h *Hub) SessionFor(userID string) (*session.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.UserID == userID {
			return c.Session, true
		}
	}
	return nil, false
}

func (h *Hub) push(ctx context.Context, c *Client) {
	payload, err := h.builder.BuildFeed(ctx, c.UserID, c.Session.Current())
	if err != nil {
		h.log.Warnw("feed build failed", "user_id", c.UserID, "error", err)
		return
	}
	select {
	case c.Send <- payload:
	default:
		h.log.Debugw("client send buffer full, dropping frame", "user_id", c.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.Send)
		c.Conn.Close()
		delete(h.clients, c)
	}
}
