package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skydentango/ping-social-app/internal/apperr"
)

// fail translates an apperr code into an HTTP response. Every core failure
// surfaces a distinguishable code so clients can show an actionable message.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation, apperr.CodeInvalidExpiration:
		status = fiber.StatusBadRequest
	case apperr.CodeNotAuthorized:
		status = fiber.StatusForbidden
	case apperr.CodeNotFound:
		status = fiber.StatusNotFound
	case apperr.CodeSyncFailed:
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"code":  apperr.CodeOf(err),
		"error": err.Error(),
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
