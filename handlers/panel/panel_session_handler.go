package panel

import (
	"errors"
	"time"

	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/pkg/queryparams"
	"kort.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PanelSessionHandler organizatörün oturum yönetimi uçlarını yönetir.
type PanelSessionHandler struct {
	sessionService     services.ISessionService
	participantService services.IParticipantService
	paymentService     services.IPaymentService
}

// NewPanelSessionHandler yeni bir PanelSessionHandler örneği oluşturur.
func NewPanelSessionHandler() *PanelSessionHandler {
	return &PanelSessionHandler{
		sessionService:     services.NewSessionService(),
		participantService: services.NewParticipantService(),
		paymentService:     services.NewPaymentService(),
	}
}

// sessionBody oturum oluşturma/güncelleme isteğinin JSON gövdesi.
type sessionBody struct {
	TypeName          string    `json:"type_name"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	LocationText      string    `json:"location_text"`
	LocationURL       string    `json:"location_url"`
	StartsAt          time.Time `json:"starts_at"`
	Capacity          *int      `json:"capacity"`
	WaitlistEnabled   *bool     `json:"waitlist_enabled"`
	PricePerHeadCents int64     `json:"price_per_head_cents"`
	Currency          string    `json:"currency"`
}

func (b sessionBody) toInput() services.SessionInput {
	waitlist := true
	if b.WaitlistEnabled != nil {
		waitlist = *b.WaitlistEnabled
	}
	return services.SessionInput{
		TypeName:          b.TypeName,
		Title:             b.Title,
		Description:       b.Description,
		LocationText:      b.LocationText,
		LocationURL:       b.LocationURL,
		StartsAt:          b.StartsAt,
		Capacity:          b.Capacity,
		WaitlistEnabled:   waitlist,
		PricePerHeadCents: b.PricePerHeadCents,
		Currency:          b.Currency,
	}
}

// hostID panel middleware'inin koyduğu kullanıcı ID'sini okur.
func hostID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// List (GET /panel/sessions) organizatörün oturumlarını listeler.
func (h *PanelSessionHandler) List(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		return writePanelError(c, services.ErrSessionInvalidInput)
	}
	result, err := h.sessionService.GetSessionsForHost(c.UserContext(), hostID(c), params)
	if err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(result)
}

// Create (POST /panel/sessions) yeni oturum oluşturur.
func (h *PanelSessionHandler) Create(c *fiber.Ctx) error {
	var body sessionBody
	if err := c.BodyParser(&body); err != nil {
		return writePanelError(c, services.ErrSessionInvalidInput)
	}
	session, err := h.sessionService.CreateSession(c.UserContext(), hostID(c), body.toInput())
	if err != nil {
		return writePanelError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          session.ID,
		"public_code": session.PublicCode,
		"host_slug":   session.HostSlug,
		"status":      session.Status,
	})
}

// Show (GET /panel/sessions/:slug) oturum detayını, katılımcıları ve ödeme
// kapsamını birlikte döndürür.
func (h *PanelSessionHandler) Show(c *fiber.Ctx) error {
	slug := c.Params("slug")
	userID := hostID(c)

	session, err := h.sessionService.GetSessionForHost(c.UserContext(), slug, userID)
	if err != nil {
		return writePanelError(c, err)
	}
	participants, err := h.participantService.ListParticipants(c.UserContext(), slug, userID)
	if err != nil {
		return writePanelError(c, err)
	}
	coverage, err := h.paymentService.CoverageFor(c.UserContext(), slug, userID, nil)
	if err != nil {
		return writePanelError(c, err)
	}

	type participantView struct {
		models.Participant
		Paid bool `json:"paid"`
	}
	views := make([]participantView, 0, len(participants))
	for i := range participants {
		_, paid := coverage[participants[i].ID]
		views = append(views, participantView{Participant: participants[i], Paid: paid})
	}

	return c.JSON(fiber.Map{
		"session":      session,
		"participants": views,
	})
}

// Update (PUT /panel/sessions/:slug) oturum detaylarını günceller.
func (h *PanelSessionHandler) Update(c *fiber.Ctx) error {
	var body sessionBody
	if err := c.BodyParser(&body); err != nil {
		return writePanelError(c, services.ErrSessionInvalidInput)
	}
	session, err := h.sessionService.UpdateSession(c.UserContext(), c.Params("slug"), hostID(c), body.toInput())
	if err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(session)
}

// UpdateStatus (PATCH /panel/sessions/:slug/status) yaşam döngüsünü değiştirir.
func (h *PanelSessionHandler) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status models.SessionStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return writePanelError(c, services.ErrSessionInvalidInput)
	}
	if err := h.sessionService.UpdateSessionStatus(c.UserContext(), c.Params("slug"), hostID(c), body.Status); err != nil {
		return writePanelError(c, err)
	}
	return c.JSON(fiber.Map{"status": body.Status})
}

// writePanelError panel servis hatalarını HTTP yanıtına çevirir.
func writePanelError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	machineCode := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrProofNotFound):
		status, machineCode = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, services.ErrSessionForbidden),
		errors.Is(err, services.ErrParticipantForbidden):
		status, machineCode = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, services.ErrSessionInvalidInput),
		errors.Is(err, services.ErrProofInvalidInput),
		errors.Is(err, services.ErrCoveredNotInSession):
		status, machineCode = fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, services.ErrSessionTypeNotFound):
		status, machineCode = fiber.StatusBadRequest, "UNKNOWN_SPORT_TYPE"
	case errors.Is(err, services.ErrAlreadyPaid):
		status, machineCode = fiber.StatusConflict, "ALREADY_PAID"
	case errors.Is(err, services.ErrProofAlreadyProcessed):
		status, machineCode = fiber.StatusConflict, "ALREADY_PROCESSED"
	}

	if status == fiber.StatusInternalServerError {
		configslog.Log.Error("Panel handler: beklenmeyen hata", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": "Beklenmeyen bir hata oluştu.", "code": machineCode})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": machineCode})
}
