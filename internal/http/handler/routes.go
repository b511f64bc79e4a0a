package handler

import (
	"github.com/gofiber/fiber/v2"

	"respondapi/internal/service"
)

// Dependencies are the collaborators the HTTP routes need.
type Dependencies struct {
	// Ping backs /health. Nil reports healthy without checking anything.
	Ping      PingFunc
	Users     service.UserService
	Responder *Responder
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Format negotiation (middleware.NegotiateFormat) is expected to run for
// /users so /users/:id.xml reaches the /users/:id handlers.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.Ping))
	app.Get("/healthz", LivenessProbe())

	users := app.Group("/users")
	users.Post("", CreateUser(deps.Users, deps.Responder))
	users.Get("", ListUsers(deps.Users, deps.Responder))
	users.Get("/:id", ShowUser(deps.Users, deps.Responder))
	users.Get("/:id/show_prefix_postfix", ShowUserPrefixPostfix(deps.Users, deps.Responder))
	users.Delete("/:id", DeleteUser(deps.Users))
}
