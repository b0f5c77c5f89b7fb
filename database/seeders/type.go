package seeders

import (
	"context"
	"errors"

	"kort.link/configs/configslog"
	"kort.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedTypes spor dalı kataloğunu yükler. Mevcut kayıtlar atlanır.
func SeedTypes(db *gorm.DB) error {
	systemUserID := uint(1)
	ctx := models.ContextWithUserID(context.Background(), systemUserID)

	typesToSeed := []models.Type{
		{Name: models.TypeNameBadminton, Description: "Badminton oturumu"},
		{Name: models.TypeNamePickleball, Description: "Pickleball oturumu"},
		{Name: models.TypeNameVolleyball, Description: "Voleybol oturumu"},
		{Name: models.TypeNameOther, Description: "Diğer spor dalları"},
	}

	var createdCount int64
	var errorOccurred bool

	configslog.SLog.Info("Spor dalları seed işlemi başlıyor...")

	for _, typeToSeed := range typesToSeed {
		var existingType models.Type
		result := db.Where("name = ?", typeToSeed.Name).First(&existingType)

		if result.Error == nil {
			configslog.SLog.Debugf("Spor dalı '%s' zaten mevcut, oluşturma atlanıyor.", typeToSeed.Name)
			continue
		} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Spor dalı kontrol edilirken veritabanı hatası",
				zap.String("type_name", typeToSeed.Name),
				zap.Error(result.Error),
			)
			errorOccurred = true
			continue
		}

		configslog.SLog.Infof("Spor dalı '%s' oluşturuluyor...", typeToSeed.Name)

		if err := db.WithContext(ctx).Create(&typeToSeed).Error; err != nil {
			configslog.Log.Error("Spor dalı oluşturulamadı",
				zap.String("type_name", typeToSeed.Name),
				zap.Error(err),
			)
			errorOccurred = true
			continue
		}

		createdCount++
	}

	if createdCount > 0 {
		configslog.SLog.Infof("%d adet yeni spor dalı seed edildi.", createdCount)
	} else if !errorOccurred {
		configslog.SLog.Info("Tüm spor dalları zaten mevcut, yeni ekleme yapılmadı.")
	}

	if errorOccurred {
		return errors.New("spor dalları seed edilirken en az bir hata oluştu")
	}

	configslog.SLog.Info("Spor dalları seed işlemi başarıyla tamamlandı.")
	return nil
}
