package configs

import (
	"fmt"
	"os"
	"time"

	"kort.link/configs/configslog"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// LoadEnv .env dosyasını yükler. Dosya yoksa (örn. production'da env
// değişkenleri dışarıdan verilir) sadece uyarı loglanır.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Warn(".env dosyası bulunamadı, mevcut ortam değişkenleri kullanılacak.")
	}
}

func dsnFromEnv() string {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	name := getEnv("DB_NAME", "kortlink")
	sslmode := getEnv("DB_SSLMODE", "disable")
	tz := getEnv("DB_TIMEZONE", "UTC")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		host, port, user, password, name, sslmode, tz)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB GORM/Postgres bağlantısını kurar.
// TranslateError: true sayesinde unique ihlalleri gorm.ErrDuplicatedKey
// olarak döner; repository katmanındaki çakışma sınıflandırması buna dayanır.
func InitDB() {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	conn, err := gorm.Open(postgres.Open(dsnFromEnv()), gormCfg)
	if err != nil {
		configslog.Log.Fatal("Veritabanı bağlantısı kurulamadı", zap.Error(err))
	}

	sqlDB, err := conn.DB()
	if err != nil {
		configslog.Log.Fatal("sql.DB örneği alınamadı", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db = conn
	configslog.SLog.Info("Veritabanı bağlantısı kuruldu.")
}

// GetDB global DB örneğini döndürür. InitDB çağrılmadan kullanılamaz.
func GetDB() *gorm.DB {
	if db == nil {
		configslog.Log.Fatal("GetDB: veritabanı henüz başlatılmadı (InitDB çağrılmalı)")
	}
	return db
}

// CloseDB bağlantı havuzunu kapatır.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("CloseDB: sql.DB örneği alınamadı", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("CloseDB: bağlantı kapatılamadı", zap.Error(err))
	}
}
