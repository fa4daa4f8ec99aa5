// Package engine mediates every state transition a ping can undergo:
// composing, responding, deleting, expiring, and the derived summaries the
// feed displays. All mutations go through the store; responds and deletes are
// applied optimistically to the caller's session first and rolled back if the
// store refuses the write.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/apperr"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/session"
	"github.com/skydentango/ping-social-app/internal/store"
)

// TTL bounds for ping expiration, in addition to the preset menu.
const (
	MinTTL = time.Minute
	MaxTTL = 7 * 24 * time.Hour // 10080 minutes
)

// PresetTTLs is the fixed expiration menu offered by clients.
var PresetTTLs = []time.Duration{
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

// Publisher fans a newly created ping out to the notification pipeline.
// Publishing is best-effort: errors are logged by the engine, never returned.
type Publisher interface {
	PublishPingCreated(ctx context.Context, ev PingCreated) error
}

// PingCreated is the event emitted after a successful Compose.
type PingCreated struct {
	PingID     string   `json:"ping_id"`
	SenderID   string   `json:"sender_id"`
	SenderName string   `json:"sender_name"`
	Message    string   `json:"message"`
	Audience   string   `json:"audience"`
	Recipients []string `json:"recipients"`
}

type Engine struct {
	store  store.Store
	events Publisher
	log    *zap.SugaredLogger

	// Serializes Respond calls per (ping, user) within this process. Two
	// devices for the same user can still race each other at the store;
	// that is a documented, accepted limitation of the replace-by-filter
	// response write.
	respondLocks sync.Map // key string -> *sync.Mutex
}

func New(st store.Store, events Publisher, log *zap.SugaredLogger) *Engine {
	return &Engine{store: st, events: events, log: log}
}

// ComposeCommand describes a ping to be sent.
type ComposeCommand struct {
	SenderID string
	Message  string
	Mode     models.PingMode
	GroupID  string        // required for ModeGroup
	Friends  []string      // required for ModeFriends
	TTL      time.Duration // 0 means the ping never expires
}

// Compose validates the command, snapshots the recipient set and persists the
// ping. The group's membership is copied into the ping at this moment; later
// group edits never change who can see an already-sent ping.
func (e *Engine) Compose(ctx context.Context, cmd ComposeCommand) (*models.Ping, error) {
	msg := strings.TrimSpace(cmd.Message)
	if msg == "" {
		return nil, apperr.ErrEmptyMessage
	}
	if len([]rune(msg)) > models.MaxPingMessageLen {
		return nil, apperr.ErrMessageTooLong
	}

	var expiresAt *time.Time
	now := time.Now().UTC()
	if cmd.TTL != 0 {
		if cmd.TTL < MinTTL || cmd.TTL > MaxTTL {
			return nil, apperr.ErrInvalidExpiration
		}
		t := now.Add(cmd.TTL)
		expiresAt = &t
	}

	ping := &models.Ping{
		Message:   msg,
		Mode:      cmd.Mode,
		SenderID:  cmd.SenderID,
		Responses: []models.PingResponse{},
		SentAt:    now,
		ExpiresAt: expiresAt,
	}

	var audience string
	switch cmd.Mode {
	case models.ModeGroup:
		if cmd.GroupID == "" {
			return nil, apperr.ErrNoGroupSelected
		}
		group, err := e.store.GetGroup(ctx, cmd.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(cmd.SenderID) {
			return nil, apperr.ErrNotRecipient
		}
		ping.GroupID = group.ID
		ping.Recipients = append([]string(nil), group.Members...)
		audience = group.Name
	case models.ModeFriends:
		if len(cmd.Friends) == 0 {
			return nil, apperr.ErrNoRecipients
		}
		ping.Recipients = dedupe(append([]string{cmd.SenderID}, cmd.Friends...))
		audience = "Friends"
	default:
		return nil, apperr.Validation("unknown ping mode")
	}

	if err := e.store.CreatePing(ctx, ping); err != nil {
		return nil, apperr.WriteSync(err)
	}

	e.publishCreated(ctx, ping, audience)
	return ping, nil
}

func (e *Engine) publishCreated(ctx context.Context, p *models.Ping, audience string) {
	if e.events == nil {
		return
	}
	senderName := "Someone"
	if sender, err := e.store.GetUser(ctx, p.SenderID); err == nil {
		senderName = sender.DisplayName
	}
	ev := PingCreated{
		PingID:     p.ID,
		SenderID:   p.SenderID,
		SenderName: senderName,
		Message:    p.Message,
		Audience:   audience,
		Recipients: append([]string(nil), p.Recipients...),
	}
	if err := e.events.PublishPingCreated(ctx, ev); err != nil {
		e.log.Warnw("ping event publish failed", "ping_id", p.ID, "error", err)
	}
}

// Respond applies the user's answer with toggle semantics: a different value
// replaces the current response, the same value withdraws it. The change is
// visible in the session immediately and rolled back if the store write fails.
func (e *Engine) Respond(ctx context.Context, sess *session.Session, pingID, userID string, value models.ResponseValue) error {
	if !models.ValidResponse(value) {
		return apperr.ErrBadResponse
	}

	lock := e.lockFor(pingID + "/" + userID)
	lock.Lock()
	defer lock.Unlock()

	ping, ok := sess.Ping(pingID)
	if !ok {
		return apperr.ErrPingNotFound
	}
	if !ping.HasRecipient(userID) {
		return apperr.ErrNotRecipient
	}

	next := make([]models.PingResponse, 0, len(ping.Responses))
	toggledOff := false
	for _, r := range ping.Responses {
		if r.UserID != userID {
			next = append(next, r)
			continue
		}
		toggledOff = r.Response == value
	}
	if !toggledOff {
		next = append(next, models.PingResponse{
			UserID:      userID,
			Response:    value,
			RespondedAt: time.Now().UTC(),
		})
	}

	tok := sess.Apply(session.SetResponses{PingID: pingID, Responses: next})
	if err := e.store.SetResponses(ctx, pingID, next); err != nil {
		sess.Rollback(tok)
		return apperr.ResponseSync(err)
	}
	sess.Confirm(tok)
	return nil
}

// Delete removes a ping. Only the sender may delete; the ping disappears from
// the session immediately and reappears if the store refuses the delete.
func (e *Engine) Delete(ctx context.Context, sess *session.Session, pingID, requesterID string) error {
	ping, ok := sess.Ping(pingID)
	if !ok {
		return apperr.ErrPingNotFound
	}
	if ping.SenderID != requesterID {
		return apperr.ErrNotSender
	}

	tok := sess.Apply(session.RemovePing{PingID: pingID})
	if err := e.store.DeletePing(ctx, pingID); err != nil {
		sess.Rollback(tok)
		return apperr.DeleteSync(err)
	}
	sess.Confirm(tok)
	return nil
}

func (e *Engine) lockFor(key string) *sync.Mutex {
	v, _ := e.respondLocks.LoadOrStore(key, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
