// Package notify consumes ping events from Kafka and pushes a system
// notification to every recipient with a registered token. Failures here are
// logged and never reach the ping-send path.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/engine"
	"github.com/skydentango/ping-social-app/internal/store"
)

type Consumer struct {
	reader *kafka.Reader
	users  store.UserStore
	sender *PushSender
	log    *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, users store.UserStore, sender *PushSender, log *zap.SugaredLogger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, users: users, sender: sender, log: log}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warnw("kafka read error", "error", err)
			time.Sleep(time.Second)
			continue
		}
		c.handle(ctx, m.Value)
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var ev engine.PingCreated
	if err := json.Unmarshal(payload, &ev); err != nil {
		c.log.Warnw("bad ping event", "error", err)
		return
	}

	recipients, err := c.users.GetUsers(ctx, ev.Recipients)
	if err != nil {
		c.log.Warnw("recipient lookup failed", "ping_id", ev.PingID, "error", err)
		return
	}

	title := fmt.Sprintf("New Ping from %s", ev.SenderName)
	body := fmt.Sprintf("%s: %s", ev.Audience, ev.Message)
	data := map[string]any{
		"type":    "ping",
		"ping_id": ev.PingID,
	}

	for _, u := range recipients {
		if u.ID == ev.SenderID || u.PushToken == "" {
			continue
		}
		if err := c.sender.Send(ctx, u.PushToken, title, body, data); err != nil {
			c.log.Warnw("push delivery failed", "user_id", u.ID, "ping_id", ev.PingID, "error", err)
		}
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
