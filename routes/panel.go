package routes

import (
	"kort.link/handlers/panel"

	"github.com/gofiber/fiber/v2"
)

// registerPanelRoutes organizatör paneli rotalarını tanımlar.
func registerPanelRoutes(app *fiber.App) {
	sessionHandler := panel.NewPanelSessionHandler()
	participantHandler := panel.NewPanelParticipantHandler()
	paymentHandler := panel.NewPanelPaymentHandler()

	group := app.Group("/panel", requireAuth)

	group.Get("/sessions", sessionHandler.List)
	group.Post("/sessions", sessionHandler.Create)
	group.Get("/sessions/:slug", sessionHandler.Show)
	group.Put("/sessions/:slug", sessionHandler.Update)
	group.Patch("/sessions/:slug/status", sessionHandler.UpdateStatus)

	group.Get("/sessions/:slug/unpaid", participantHandler.Unpaid)
	group.Delete("/sessions/:slug/participants/:id", participantHandler.Remove)
	group.Post("/sessions/:slug/participants/:id/seen", participantHandler.MarkPullOutSeen)
	group.Post("/sessions/:slug/participants/:id/cash", paymentHandler.MarkCashPaid)

	group.Post("/sessions/:slug/payments/:id/approve", paymentHandler.Approve)
	group.Post("/sessions/:slug/payments/:id/reject", paymentHandler.Reject)
}
