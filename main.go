package main

import (
	"os"
	"os/signal"
	"syscall"

	"kort.link/configs"
	"kort.link/configs/configslog"
	"kort.link/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	configs.LoadEnv()
	configs.InitDB()
	defer configs.CloseDB()

	engine := html.New("./views", ".html")

	app := fiber.New(fiber.Config{
		AppName: "kort.link",
		Views:   engine,
	})

	routes.SetupRoutes(app)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	// Graceful shutdown: SIGINT/SIGTERM geldiğinde dinlemeyi bırak.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
		_ = app.Shutdown()
	}()

	configslog.SLog.Infof("Sunucu dinliyor: %s", addr)
	if err := app.Listen(addr); err != nil {
		configslog.Log.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}
