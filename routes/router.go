package routes

import (
	"kort.link/configs"
	"kort.link/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App) {
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama
	app.Use(initializeSessionAndLocals())

	registerAuthRoutes(app)
	registerPanelRoutes(app)

	// Public rotalar en sonda: /:code diğer tüm öneklerden sonra eşleşmeli.
	registerPublicRoutes(app)

	app.Use(notFoundHandler)
}

// initializeSessionAndLocals session store'u ve giriş yapmış kullanıcı
// bilgilerini locals'a taşır.
func initializeSessionAndLocals() fiber.Handler {
	sessionStore := configs.SetupSession()
	return func(c *fiber.Ctx) error {
		c.Locals("session_store", sessionStore)
		sess, err := utils.SessionStart(c)
		if err != nil {
			return c.Next()
		}
		if userID, idErr := utils.GetUserIDFromSession(sess); idErr == nil {
			c.Locals("userID", userID)
		}
		if isSystem, sysErr := utils.GetIsSystemFromSession(sess); sysErr == nil {
			c.Locals("isSystem", isSystem)
		}
		if userName, ok := sess.Get(utils.SessionKeyUserName).(string); ok {
			c.Locals("userName", userName)
		}
		return c.Next()
	}
}

// requireAuth panel rotalarını korur: giriş yoksa 401 döner.
func requireAuth(c *fiber.Ctx) error {
	if userID, ok := c.Locals("userID").(uint); !ok || userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Giriş yapmanız gerekiyor."})
	}
	return c.Next()
}

func notFoundHandler(c *fiber.Ctx) error {
	accepts := c.Accepts("application/json", "text/html")
	switch accepts {
	case "application/json":
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Kaynak bulunamadı"})
	default:
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "Sayfa Bulunamadı"})
	}
}
