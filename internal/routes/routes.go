package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skydentango/ping-social-app/internal/handlers"
	"github.com/skydentango/ping-social-app/internal/ws"
)

// Register wires the HTTP and websocket surface.
func Register(
	app *fiber.App,
	jwtMw fiber.Handler,
	rateMw fiber.Handler,
	hub *ws.Hub,
	pingH *handlers.PingHandler,
	groupH *handlers.GroupHandler,
	userH *handlers.UserHandler,
) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/ws/feed", ws.NewFeedHandler(hub))

	api := app.Group("/api/v1", jwtMw)

	pings := api.Group("/pings")
	pings.Get("/", pingH.Feed)
	pings.Post("/", rateMw, pingH.Compose)
	pings.Post("/:ping_id/respond", rateMw, pingH.Respond)
	pings.Delete("/:ping_id", rateMw, pingH.Delete)

	groups := api.Group("/groups")
	groups.Post("/", rateMw, groupH.Create)
	groups.Get("/", groupH.List)
	groups.Get("/:group_id", groupH.Get)
	groups.Put("/:group_id", rateMw, groupH.Update)
	groups.Delete("/:group_id", rateMw, groupH.Delete)

	me := api.Group("/me")
	me.Get("/", userH.Me)
	me.Put("/status", userH.UpdateStatus)
	me.Put("/push-token", userH.SetPushToken)
	me.Put("/picture", userH.SetProfilePicture)

	api.Get("/users/online", userH.Online)
}
