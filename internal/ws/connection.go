package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/skydentango/ping-social-app/internal/session"
)

// NewFeedHandler upgrades a connection and attaches it to the hub. The token
// travels in the query string because browsers cannot set headers on
// websocket upgrades.
func NewFeedHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		hub.handleConn(conn)
	})
}

func (h *Hub) handleConn(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		conn.Close()
		return
	}
	claims, err := h.jwt.GetClaims(tokenStr)
	if err != nil {
		conn.Close()
		return
	}

	client := &Client{
		UserID:  claims.UserID,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		Session: session.New(),
	}

	h.Register <- client
	go client.writePump()
	client.readPump(h)
}

// readPump drains inbound frames until the peer goes away. The feed is
// one-way; anything the client sends is ignored.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
