package auth

import (
	"errors"

	"kort.link/configs/configslog"
	"kort.link/services"
	"kort.link/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler organizatör giriş/çıkış/kayıt uçlarını yönetir.
type AuthHandler struct {
	authService services.IAuthService
}

// NewAuthHandler yeni bir AuthHandler örneği oluşturur.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{authService: services.NewAuthService()}
}

type credentialsBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login (POST /auth/login) giriş yapar ve panel oturumunu başlatır.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Geçersiz istek gövdesi."})
	}

	user, err := h.authService.Authenticate(c.UserContext(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("Login error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Beklenmeyen bir hata oluştu."})
	}

	sess, err := utils.SessionStart(c)
	if err != nil {
		configslog.Log.Error("Login: session açılamadı", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Oturum başlatılamadı."})
	}
	if err := utils.SetUserSession(sess, user.ID, user.Name, user.IsSystem); err != nil {
		configslog.Log.Error("Login: session kaydedilemedi", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Oturum başlatılamadı."})
	}
	return c.JSON(fiber.Map{"user_id": user.ID, "name": user.Name})
}

// Logout (POST /auth/logout) panel oturumunu sonlandırır.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := utils.SessionStart(c)
	if err == nil {
		_ = utils.DestroySession(sess)
	}
	return c.JSON(fiber.Map{"message": "Çıkış yapıldı."})
}

// Register (POST /auth/register) yeni organizatör hesabı açar.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Geçersiz istek gövdesi."})
	}

	user, err := h.authService.Register(c.UserContext(), body.Name, body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrAuthInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("Register error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Beklenmeyen bir hata oluştu."})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user_id": user.ID, "name": user.Name})
}
