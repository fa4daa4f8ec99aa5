package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/auth"
)

// JWT validates the bearer token and stores the asserted identity in locals.
func JWT(jwtManager *auth.JWTManager, logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization header"})
		}

		claims, err := jwtManager.GetClaims(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("display_name", claims.DisplayName)

		logger.Debugw("JWT validated", "user_id", claims.UserID)
		return c.Next()
	}
}

// ZapLogger logs every request with latency and status.
func ZapLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			logger.Errorw("request failed",
				"method", c.Method(), "path", c.Path(), "status", status,
				"latency", latency, "error", err)
		} else {
			logger.Infow("request completed",
				"method", c.Method(), "path", c.Path(), "status", status,
				"latency", latency)
		}
		return err
	}
}
