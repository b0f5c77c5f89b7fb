package migrations

import (
	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateTypesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating types table...")
	if err := db.AutoMigrate(&models.Type{}); err != nil {
		configslog.Log.Error("Failed to migrate types table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Types table migrated successfully")
	return nil
}
