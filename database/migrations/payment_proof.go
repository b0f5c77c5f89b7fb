package migrations

import (
	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigratePaymentProofsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating payment_proofs table...")
	if err := db.AutoMigrate(&models.PaymentProof{}); err != nil {
		configslog.Log.Error("Failed to migrate payment_proofs table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Payment_proofs table migrated successfully")
	return nil
}
