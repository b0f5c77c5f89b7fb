package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Panel oturumunda tutulan anahtarlar.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUserName = "user_name"
	SessionKeyIsSystem = "is_system"
)

var errNoSessionStore = errors.New("session store locals'ta yok")

// SessionStart istekteki panel oturumunu açar.
func SessionStart(c *fiber.Ctx) (*session.Session, error) {
	store, ok := c.Locals("session_store").(*session.Store)
	if !ok || store == nil {
		return nil, errNoSessionStore
	}
	return store.Get(c)
}

// GetUserIDFromSession oturumdan kullanıcı ID'sini okur.
func GetUserIDFromSession(sess *session.Session) (uint, error) {
	id, ok := sess.Get(SessionKeyUserID).(uint)
	if !ok || id == 0 {
		return 0, errors.New("oturumda kullanıcı yok")
	}
	return id, nil
}

// GetIsSystemFromSession oturumdan sistem hesabı bayrağını okur.
func GetIsSystemFromSession(sess *session.Session) (bool, error) {
	isSystem, ok := sess.Get(SessionKeyIsSystem).(bool)
	if !ok {
		return false, errors.New("oturumda is_system yok")
	}
	return isSystem, nil
}

// SetUserSession giriş sonrası oturum alanlarını yazar.
func SetUserSession(sess *session.Session, userID uint, userName string, isSystem bool) error {
	sess.Set(SessionKeyUserID, userID)
	sess.Set(SessionKeyUserName, userName)
	sess.Set(SessionKeyIsSystem, isSystem)
	return sess.Save()
}

// DestroySession oturumu sonlandırır (çıkış).
func DestroySession(sess *session.Session) error {
	return sess.Destroy()
}
