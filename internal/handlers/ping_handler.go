package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/engine"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/session"
	"github.com/skydentango/ping-social-app/internal/store"
	"github.com/skydentango/ping-social-app/internal/ws"
)

type PingHandler struct {
	engine  *engine.Engine
	pings   store.PingStore
	hub     *ws.Hub
	builder *FeedBuilder
	log     *zap.SugaredLogger
}

func NewPingHandler(eng *engine.Engine, pings store.PingStore, hub *ws.Hub, builder *FeedBuilder, log *zap.SugaredLogger) *PingHandler {
	return &PingHandler{engine: eng, pings: pings, hub: hub, builder: builder, log: log}
}

// Compose sends a new ping.
func (h *PingHandler) Compose(c *fiber.Ctx) error {
	type Req struct {
		Message    string   `json:"message"`
		Mode       string   `json:"mode"`
		GroupID    string   `json:"group_id"`
		Friends    []string `json:"friends"`
		TTLMinutes int      `json:"ttl_minutes"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	ping, err := h.engine.Compose(c.Context(), engine.ComposeCommand{
		SenderID: userID(c),
		Message:  req.Message,
		Mode:     models.PingMode(req.Mode),
		GroupID:  req.GroupID,
		Friends:  req.Friends,
		TTL:      time.Duration(req.TTLMinutes) * time.Minute,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ping": ping})
}

// Respond records, replaces or withdraws the caller's answer.
func (h *PingHandler) Respond(c *fiber.Ctx) error {
	type Req struct {
		Response string `json:"response"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	uid := userID(c)
	sess, live := h.sessionFor(c, uid)
	err := h.engine.Respond(c.Context(), sess, c.Params("ping_id"), uid, models.ResponseValue(req.Response))
	if live {
		h.hub.Touch(uid)
	}
	if err != nil {
		return fail(c, err)
	}

	ping, _ := sess.Ping(c.Params("ping_id"))
	return c.JSON(fiber.Map{
		"summary": engine.Summarize(&ping, uid, time.Now().UTC()),
	})
}

// Delete removes one of the caller's own pings.
func (h *PingHandler) Delete(c *fiber.Ctx) error {
	uid := userID(c)
	sess, live := h.sessionFor(c, uid)
	err := h.engine.Delete(c.Context(), sess, c.Params("ping_id"), uid)
	if live {
		h.hub.Touch(uid)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "ping deleted"})
}

// Feed returns the caller's current visible feed as a one-shot snapshot.
func (h *PingHandler) Feed(c *fiber.Ctx) error {
	snap, err := h.pings.ListPings(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"items": h.builder.Items(c.Context(), userID(c), snap)})
}

// sessionFor prefers the live websocket session so optimistic mutations show
// up in the open feed; otherwise it seeds a one-shot session from the store.
func (h *PingHandler) sessionFor(c *fiber.Ctx, uid string) (*session.Session, bool) {
	if sess, ok := h.hub.SessionFor(uid); ok {
		return sess, true
	}
	sess := session.New()
	if snap, err := h.pings.ListPings(c.Context()); err == nil {
		sess.Fold(snap)
	} else {
		h.log.Warnw("feed seed failed", "user_id", uid, "error", err)
	}
	return sess, false
}
