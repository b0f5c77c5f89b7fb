package panel

import (
	"strconv"

	"kort.link/services"

	"github.com/gofiber/fiber/v2"
)

// PanelPaymentHandler organizatörün ödeme inceleme uçlarını yönetir.
type PanelPaymentHandler struct {
	paymentService services.IPaymentService
}

// NewPanelPaymentHandler yeni bir PanelPaymentHandler örneği oluşturur.
func NewPanelPaymentHandler() *PanelPaymentHandler {
	return &PanelPaymentHandler{paymentService: services.NewPaymentService()}
}

func proofIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Approve (POST /panel/sessions/:slug/payments/:id/approve) bildirimi onaylar.
func (h *PanelPaymentHandler) Approve(c *fiber.Ctx) error {
	id, ok := proofIDParam(c)
	if !ok {
		return writePanelError(c, services.ErrProofNotFound)
	}
	if err := h.paymentService.ApproveProof(c.UserContext(), c.Params("slug"), id, hostID(c)); err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ödeme bildirimi onaylandı."})
}

// Reject (POST /panel/sessions/:slug/payments/:id/reject) bildirimi reddeder.
func (h *PanelPaymentHandler) Reject(c *fiber.Ctx) error {
	id, ok := proofIDParam(c)
	if !ok {
		return writePanelError(c, services.ErrProofNotFound)
	}
	if err := h.paymentService.RejectProof(c.UserContext(), c.Params("slug"), id, hostID(c)); err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ödeme bildirimi reddedildi."})
}

// MarkCashPaid (POST /panel/sessions/:slug/participants/:id/cash) elden
// alınan ödemeyi kaydeder.
func (h *PanelPaymentHandler) MarkCashPaid(c *fiber.Ctx) error {
	id, ok := participantIDParam(c)
	if !ok {
		return writePanelError(c, services.ErrParticipantNotFound)
	}
	proof, err := h.paymentService.MarkCashPaid(c.UserContext(), c.Params("slug"), id, hostID(c))
	if err != nil {
		return writePanelError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"proof_id": proof.ID,
		"status":   proof.Status,
	})
}
