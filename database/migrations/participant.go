package migrations

import (
	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrateParticipantsTable participants tablosunu oluşturur ve kimlik
// tekilliğini zorlayan partial unique indexleri ekler.
//
// GORM nullable sütunlarda WHERE koşullu unique index üretemediği için
// indexler elle tanımlanır:
//   - (session_id, profile_id)     misafir kimlikleri için
//   - (session_id, contact_email)  giriş yapmış kimlikler için
//
// Eşzamanlı duplicate join bu indexlere çarpar; repository katmanı hatayı
// ErrConflict olarak sınıflandırır ve servis mevcut satıra toparlanır.
func MigrateParticipantsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating participants table...")
	if err := db.AutoMigrate(&models.Participant{}); err != nil {
		configslog.Log.Error("Failed to migrate participants table", zap.Error(err))
		return err
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_session_profile
		 ON participants (session_id, profile_id)
		 WHERE profile_id IS NOT NULL AND deleted_at IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_session_email
		 ON participants (session_id, contact_email)
		 WHERE contact_email IS NOT NULL AND deleted_at IS NULL;`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			configslog.Log.Error("Failed to create unique index on participants", zap.Error(err))
			return err
		}
	}

	configslog.SLog.Info("Participants table migrated successfully")
	return nil
}
