package seeders

import (
	"errors"
	"os"

	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser ilk sistem hesabını oluşturur. Şifre SYSTEM_USER_PASSWORD
// ortam değişkeninden okunur; kayıt zaten varsa dokunulmaz.
func SeedSystemUser(db *gorm.DB) error {
	systemEmail := os.Getenv("SYSTEM_USER_EMAIL")
	if systemEmail == "" {
		systemEmail = "system@kort.link"
	}

	var existing models.User
	result := db.Where("email = ?", systemEmail).First(&existing)
	if result.Error == nil {
		configslog.SLog.Debug("Sistem kullanıcısı zaten mevcut, seed atlanıyor.")
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Sistem kullanıcısı kontrol edilirken hata", zap.Error(result.Error))
		return result.Error
	}

	password := os.Getenv("SYSTEM_USER_PASSWORD")
	if password == "" {
		return errors.New("SYSTEM_USER_PASSWORD ortam değişkeni tanımlı değil")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("Sistem kullanıcısı şifresi hashlenemedi", zap.Error(err))
		return err
	}

	systemUser := models.User{
		Name:         "Sistem",
		Email:        systemEmail,
		PasswordHash: string(hash),
		IsSystem:     true,
	}
	if err := db.Create(&systemUser).Error; err != nil {
		configslog.Log.Error("Sistem kullanıcısı oluşturulamadı", zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Sistem kullanıcısı oluşturuldu: %s (ID %d)", systemUser.Email, systemUser.ID)
	return nil
}
