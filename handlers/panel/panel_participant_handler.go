package panel

import (
	"strconv"

	"kort.link/services"

	"github.com/gofiber/fiber/v2"
)

// PanelParticipantHandler organizatörün katılımcı yönetimi uçlarını yönetir.
type PanelParticipantHandler struct {
	participantService services.IParticipantService
	paymentService     services.IPaymentService
}

// NewPanelParticipantHandler yeni bir PanelParticipantHandler örneği oluşturur.
func NewPanelParticipantHandler() *PanelParticipantHandler {
	return &PanelParticipantHandler{
		participantService: services.NewParticipantService(),
		paymentService:     services.NewPaymentService(),
	}
}

func participantIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Remove (DELETE /panel/sessions/:slug/participants/:id) katılımcıyı kalıcı
// olarak çıkarır; boşalan yer için bekleme listesi promotion'ı tetiklenir.
func (h *PanelParticipantHandler) Remove(c *fiber.Ctx) error {
	id, ok := participantIDParam(c)
	if !ok {
		return writePanelError(c, services.ErrParticipantNotFound)
	}
	if err := h.participantService.RemoveParticipant(c.UserContext(), c.Params("slug"), id, hostID(c)); err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Katılımcı çıkarıldı."})
}

// MarkPullOutSeen (POST /panel/sessions/:slug/participants/:id/seen)
// çekilme bildirimini görüldü olarak işaretler.
func (h *PanelParticipantHandler) MarkPullOutSeen(c *fiber.Ctx) error {
	id, ok := participantIDParam(c)
	if !ok {
		return writePanelError(c, services.ErrParticipantNotFound)
	}
	if err := h.participantService.MarkPullOutSeen(c.UserContext(), c.Params("slug"), id, hostID(c)); err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bildirim görüldü olarak işaretlendi."})
}

// Unpaid (GET /panel/sessions/:slug/unpaid) ödemesi onaylanmamış confirmed
// katılımcıları listeler.
func (h *PanelParticipantHandler) Unpaid(c *fiber.Ctx) error {
	unpaid, err := h.paymentService.UnpaidParticipants(c.UserContext(), c.Params("slug"), hostID(c))
	if err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(fiber.Map{"unpaid": unpaid})
}
