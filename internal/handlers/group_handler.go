package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skydentango/ping-social-app/internal/groups"
)

type GroupHandler struct {
	groups *groups.Service
}

func NewGroupHandler(svc *groups.Service) *GroupHandler {
	return &GroupHandler{groups: svc}
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	type Req struct {
		Name    string   `json:"name"`
		Friends []string `json:"friends"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	group, err := h.groups.Create(c.Context(), userID(c), req.Name, req.Friends)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) List(c *fiber.Ctx) error {
	out, err := h.groups.ListFor(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"groups": out})
}

func (h *GroupHandler) Get(c *fiber.Ctx) error {
	group, err := h.groups.Get(c.Context(), c.Params("group_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) Update(c *fiber.Ctx) error {
	type Req struct {
		Name    *string   `json:"name"`
		Members *[]string `json:"members"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	group, err := h.groups.Update(c.Context(), c.Params("group_id"), userID(c), req.Name, req.Members)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	if err := h.groups.Delete(c.Context(), c.Params("group_id"), userID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "group deleted"})
}
