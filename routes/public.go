package routes

import (
	"kort.link/handlers/public"

	"github.com/gofiber/fiber/v2"
)

// registerPublicRoutes misafirlerin kullandığı rotaları tanımlar.
// /:code rotası diğer tüm öneklerden (auth, panel, api) sonra gelmelidir.
func registerPublicRoutes(app *fiber.App) {
	handler := public.NewPublicSessionHandler()

	api := app.Group("/api/v1/sessions")
	api.Post("/:code/join", handler.Join)
	api.Post("/:code/decline", handler.Decline)
	api.Post("/:code/pull-out", handler.PullOut)
	api.Post("/:code/payments", handler.SubmitProof)

	app.Get("/:code", handler.ShowSession)
}
