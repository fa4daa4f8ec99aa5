package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skydentango/ping-social-app/internal/cache"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/users"
)

type UserHandler struct {
	users *users.Service
	cache *cache.Client
}

func NewUserHandler(svc *users.Service, c *cache.Client) *UserHandler {
	return &UserHandler{users: svc, cache: c}
}

// Me returns the caller's profile, creating it on first authentication.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	ident := users.Identity{
		ID:          userID(c),
		Email:       c.Locals("email").(string),
		DisplayName: c.Locals("display_name").(string),
	}
	u, err := h.users.Ensure(c.Context(), ident)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *UserHandler) UpdateStatus(c *fiber.Ctx) error {
	type Req struct {
		Emoji string `json:"emoji"`
		Text  string `json:"text"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	u, err := h.users.UpdateStatus(c.Context(), userID(c), models.UserStatus{Emoji: req.Emoji, Text: req.Text})
	if err != nil {
		return fail(c, err)
	}
	if h.cache != nil {
		h.cache.InvalidateUser(c.Context(), u.ID)
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *UserHandler) SetPushToken(c *fiber.Ctx) error {
	type Req struct {
		Token string `json:"token"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.users.SetPushToken(c.Context(), userID(c), req.Token); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "push token saved"})
}

func (h *UserHandler) SetProfilePicture(c *fiber.Ctx) error {
	type Req struct {
		URL string `json:"url"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	u, err := h.users.SetProfilePicture(c.Context(), userID(c), req.URL)
	if err != nil {
		return fail(c, err)
	}
	if h.cache != nil {
		h.cache.InvalidateUser(c.Context(), u.ID)
	}
	return c.JSON(fiber.Map{"user": u})
}

// Online lists currently connected users.
func (h *UserHandler) Online(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.JSON(fiber.Map{"online": []string{}})
	}
	online, err := h.cache.GetOnlineUsers(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"online": online})
}
