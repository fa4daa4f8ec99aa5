package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/cache"
)

// RateLimit caps mutations per user per minute, counted in Redis. Fails open:
// a broken counter must not take the API down.
func RateLimit(c *cache.Client, perMin int, logger *zap.SugaredLogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if c == nil || perMin <= 0 {
			return ctx.Next()
		}
		uid, _ := ctx.Locals("user_id").(string)
		if uid == "" {
			return ctx.Next()
		}
		ok, err := c.AllowMutation(ctx.Context(), uid, perMin, time.Minute)
		if err != nil {
			logger.Debugw("rate limit check failed", "user_id", uid, "error", err)
			return ctx.Next()
		}
		if !ok {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limited"})
		}
		return ctx.Next()
	}
}
