package main

import (
	"flag"

	"kort.link/configs"
	"kort.link/configs/configslog"
	"kort.link/database"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	migrateFlag := flag.Bool("migrate", false, "Veritabanı migrasyonlarını çalıştır")
	seedFlag := flag.Bool("seed", false, "Veritabanı seeder'larını çalıştır")
	flag.Parse()

	configs.LoadEnv()
	configs.InitDB()
	defer configs.CloseDB()

	db := configs.GetDB()

	configslog.SLog.Info("Veritabanı başlatma işlemi çalıştırılıyor...")
	database.Initialize(db, *migrateFlag, *seedFlag)

	configslog.SLog.Info("Veritabanı başlatma işlemi tamamlandı.")
}
