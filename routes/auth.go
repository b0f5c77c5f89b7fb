package routes

import (
	authHandlers "kort.link/handlers/auth"

	"github.com/gofiber/fiber/v2"
)

// registerAuthRoutes /auth rotalarını tanımlar.
func registerAuthRoutes(app *fiber.App) {
	handler := authHandlers.NewAuthHandler()

	group := app.Group("/auth")
	group.Post("/login", handler.Login)
	group.Post("/logout", handler.Logout)
	group.Post("/register", handler.Register)
}
