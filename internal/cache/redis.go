// Package cache wraps Redis for the hot lookups around the feed: user
// profiles for recipient labels, the online set, and per-user rate limiting.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/models"
)

const userTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewRedis(addr, password string, db int, log *zap.SugaredLogger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	log.Info("redis connected")
	return &Client{rdb: rdb, log: log}, nil
}

// -----------------------------
// User profile cache
// -----------------------------

func (c *Client) SetUser(ctx context.Context, u *models.User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, "user:"+u.ID, data, userTTL).Err(); err != nil {
		c.log.Debugw("user cache set failed", "user_id", u.ID, "error", err)
	}
}

func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, bool) {
	data, err := c.rdb.Get(ctx, "user:"+userID).Bytes()
	if err != nil {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (c *Client) InvalidateUser(ctx context.Context, userID string) {
	_ = c.rdb.Del(ctx, "user:"+userID).Err()
}

// -----------------------------
// Online users
// -----------------------------

func (c *Client) MarkUserOnline(ctx context.Context, userID string) error {
	if err := c.rdb.SAdd(ctx, "online_users", userID).Err(); err != nil {
		return err
	}
	c.rdb.Expire(ctx, "online_users", 24*time.Hour)
	return nil
}

func (c *Client) MarkUserOffline(ctx context.Context, userID string) error {
	return c.rdb.SRem(ctx, "online_users", userID).Err()
}

func (c *Client) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return c.rdb.SMembers(ctx, "online_users").Result()
}

// -----------------------------
// Rate limiting (mutations per minute)
// -----------------------------

const luaRateLimit = `
local current = redis.call("incr", KEYS[1])
if current == 1 then
  redis.call("expire", KEYS[1], ARGV[1])
end
return current
`

func (c *Client) AllowMutation(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	key := "rate:" + userID
	count, err := c.rdb.Eval(ctx, luaRateLimit, []string{key}, int(window.Seconds())).Int()
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
