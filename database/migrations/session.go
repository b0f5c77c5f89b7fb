package migrations

import (
	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateSessionsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating sessions table...")
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		configslog.Log.Error("Failed to migrate sessions table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Sessions table migrated successfully")
	return nil
}
