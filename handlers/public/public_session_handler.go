package public

import (
	"errors"

	"kort.link/configs/configslog"
	"kort.link/models"
	"kort.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PublicSessionHandler misafirlerin kullandığı public uçları yönetir:
// etkinlik sayfası, katıl/katılmam/çekil ve ödeme bildirimi.
type PublicSessionHandler struct {
	sessionService     services.ISessionService
	participantService services.IParticipantService
	paymentService     services.IPaymentService
	authService        services.IAuthService
}

// NewPublicSessionHandler yeni bir PublicSessionHandler örneği oluşturur.
func NewPublicSessionHandler() *PublicSessionHandler {
	return &PublicSessionHandler{
		sessionService:     services.NewSessionService(),
		participantService: services.NewParticipantService(),
		paymentService:     services.NewPaymentService(),
		authService:        services.NewAuthService(),
	}
}

// joinBody join/decline/pull-out isteklerinin JSON gövdesi.
type joinBody struct {
	GuestKey    string  `json:"guest_key"`
	DisplayName string  `json:"display_name"`
	Phone       *string `json:"phone"`
	Reason      string  `json:"reason"` // yalnızca pull-out kullanır
}

// proofBody ödeme bildirimi isteğinin JSON gövdesi.
type proofBody struct {
	GuestKey    string `json:"guest_key"`
	DisplayName string `json:"display_name"`
	CoveredIDs  []uint `json:"covered_ids"`
	ImageRef    string `json:"image_ref"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// identityFromRequest isteğin kimliğini çıkarır: panel oturumu açık bir
// kullanıcı varsa authenticated (e-posta ile), yoksa guest key ile misafir.
func (h *PublicSessionHandler) identityFromRequest(c *fiber.Ctx, guestKey, displayName string) (models.Identity, error) {
	if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
		user, err := h.authService.GetUserByID(c.UserContext(), userID)
		if err != nil {
			return models.Identity{}, err
		}
		name := displayName
		if name == "" {
			name = user.Name
		}
		return models.AuthenticatedIdentity(user.Email, name), nil
	}
	return models.GuestIdentity(guestKey, displayName), nil
}

// ShowSession (GET /:code) public etkinlik sayfasını render eder.
func (h *PublicSessionHandler) ShowSession(c *fiber.Ctx) error {
	code := c.Params("code")
	session, err := h.sessionService.GetSessionByPublicCode(c.UserContext(), code)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Oturum Bulunamadı"})
		}
		configslog.Log.Error("ShowSession error", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{"Title": "Hata"})
	}
	return c.Render("public/session", fiber.Map{
		"Title":   session.Title,
		"Session": session,
	})
}

// Join (POST /api/v1/sessions/:code/join) katılım isteğini işler.
func (h *PublicSessionHandler) Join(c *fiber.Ctx) error {
	code := c.Params("code")
	var body joinBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Geçersiz istek gövdesi.")
	}

	identity, err := h.identityFromRequest(c, body.GuestKey, body.DisplayName)
	if err != nil {
		return writeServiceError(c, code, err)
	}

	result, err := h.participantService.Join(c.UserContext(), code, identity, body.Phone)
	if err != nil {
		return writeServiceError(c, code, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"participant_id": result.Participant.ID,
		"status":         result.Participant.Status,
		"already_joined": result.AlreadyJoined,
		"waitlisted":     result.Waitlisted,
	})
}

// Decline (POST /api/v1/sessions/:code/decline) katılmama bildirimini işler.
func (h *PublicSessionHandler) Decline(c *fiber.Ctx) error {
	code := c.Params("code")
	var body joinBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Geçersiz istek gövdesi.")
	}

	identity, err := h.identityFromRequest(c, body.GuestKey, body.DisplayName)
	if err != nil {
		return writeServiceError(c, code, err)
	}

	participant, err := h.participantService.Decline(c.UserContext(), code, identity)
	if err != nil {
		return writeServiceError(c, code, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"participant_id": participant.ID,
		"status":         participant.Status,
	})
}

// PullOut (POST /api/v1/sessions/:code/pull-out) çekilme isteğini işler.
func (h *PublicSessionHandler) PullOut(c *fiber.Ctx) error {
	code := c.Params("code")
	var body joinBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Geçersiz istek gövdesi.")
	}

	identity, err := h.identityFromRequest(c, body.GuestKey, body.DisplayName)
	if err != nil {
		return writeServiceError(c, code, err)
	}

	if err := h.participantService.PullOut(c.UserContext(), code, identity, body.Reason); err != nil {
		return writeServiceError(c, code, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Çekilme bildiriminiz alındı."})
}

// SubmitProof (POST /api/v1/sessions/:code/payments) ödeme bildirimi alır.
func (h *PublicSessionHandler) SubmitProof(c *fiber.Ctx) error {
	code := c.Params("code")
	var body proofBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Geçersiz istek gövdesi.")
	}

	identity, err := h.identityFromRequest(c, body.GuestKey, body.DisplayName)
	if err != nil {
		return writeServiceError(c, code, err)
	}

	proof, err := h.paymentService.SubmitProof(c.UserContext(), code, identity, services.ProofInput{
		CoveredIDs:  body.CoveredIDs,
		ImageRef:    body.ImageRef,
		AmountCents: body.AmountCents,
		Currency:    body.Currency,
	})
	if err != nil {
		return writeServiceError(c, code, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"proof_id": proof.ID,
		"status":   proof.Status,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  "BAD_REQUEST",
	})
}

// writeServiceError servis hatalarını HTTP durumuna ve makine koduna çevirir.
// UI'ın "organizatörle iletişime geç" gibi mesajlar gösterebilmesi için
// kapasite hatası ayrı bir kodla döner.
func writeServiceError(c *fiber.Ctx, code string, err error) error {
	status := fiber.StatusInternalServerError
	machineCode := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		status, machineCode = fiber.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, services.ErrSessionNotOpen):
		status, machineCode = fiber.StatusConflict, "SESSION_NOT_OPEN"
	case errors.Is(err, services.ErrSessionAlreadyStarted):
		status, machineCode = fiber.StatusConflict, "SESSION_ALREADY_STARTED"
	case errors.Is(err, services.ErrCapacityExceeded):
		status, machineCode = fiber.StatusConflict, "CAPACITY_EXCEEDED"
	case errors.Is(err, services.ErrIdentityInvalid):
		status, machineCode = fiber.StatusBadRequest, "INVALID_IDENTITY"
	case errors.Is(err, services.ErrParticipantNotFound):
		status, machineCode = fiber.StatusNotFound, "PARTICIPANT_NOT_FOUND"
	case errors.Is(err, services.ErrProofInvalidInput), errors.Is(err, services.ErrCoveredNotInSession):
		status, machineCode = fiber.StatusBadRequest, "INVALID_PROOF"
	case errors.Is(err, services.ErrAlreadyPaid):
		status, machineCode = fiber.StatusConflict, "ALREADY_PAID"
	}

	if status == fiber.StatusInternalServerError {
		configslog.Log.Error("Public handler: beklenmeyen hata", zap.String("code", code), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": "Beklenmeyen bir hata oluştu.", "code": machineCode})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": machineCode})
}
