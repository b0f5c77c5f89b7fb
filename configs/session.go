package configs

import (
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
)

var sessionStore *session.Store

// SetupSession panel oturumları için cookie tabanlı session store kurar.
// Tekil (singleton) olarak bir kez oluşturulur; router middleware'i bunu
// c.Locals üzerinden handler'lara taşır.
func SetupSession() *session.Store {
	if sessionStore != nil {
		return sessionStore
	}
	sessionStore = session.New(session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:kortlink_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	return sessionStore
}
