package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/skydentango/ping-social-app/internal/cache"
	"github.com/skydentango/ping-social-app/internal/engine"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/store"
)

// FeedItem is one entry of a viewer's feed.
type FeedItem struct {
	Ping       models.Ping    `json:"ping"`
	Summary    engine.Summary `json:"summary"`
	Recipients string         `json:"recipients"`
}

type feedPayload struct {
	Type  string     `json:"type"`
	Items []FeedItem `json:"items"`
}

// FeedBuilder turns a snapshot into the viewer's visible feed, resolving
// group and user names through the cache with a store fallback.
type FeedBuilder struct {
	users  store.UserStore
	groups store.GroupStore
	cache  *cache.Client
}

func NewFeedBuilder(users store.UserStore, groups store.GroupStore, c *cache.Client) *FeedBuilder {
	return &FeedBuilder{users: users, groups: groups, cache: c}
}

// Items filters, summarizes and labels a snapshot for the viewer.
func (b *FeedBuilder) Items(ctx context.Context, viewerID string, pings []models.Ping) []FeedItem {
	now := time.Now().UTC()
	visible := engine.VisibleTo(pings, viewerID, now)

	groupName := func(id string) (string, bool) {
		g, err := b.groups.GetGroup(ctx, id)
		if err != nil {
			return "", false
		}
		return g.Name, true
	}
	userName := func(id string) (string, bool) {
		if b.cache != nil {
			if u, ok := b.cache.GetUser(ctx, id); ok {
				return u.DisplayName, true
			}
		}
		u, err := b.users.GetUser(ctx, id)
		if err != nil {
			return "", false
		}
		if b.cache != nil {
			b.cache.SetUser(ctx, u)
		}
		return u.DisplayName, true
	}

	items := make([]FeedItem, 0, len(visible))
	for _, p := range visible {
		items = append(items, FeedItem{
			Ping:       p,
			Summary:    engine.Summarize(&p, viewerID, now),
			Recipients: engine.DescribeRecipients(&p, groupName, userName),
		})
	}
	return items
}

// BuildFeed implements ws.ViewBuilder.
func (b *FeedBuilder) BuildFeed(ctx context.Context, viewerID string, pings []models.Ping) ([]byte, error) {
	return json.Marshal(feedPayload{Type: "feed", Items: b.Items(ctx, viewerID, pings)})
}
