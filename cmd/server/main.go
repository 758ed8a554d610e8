package main

import (
	"log"

	config "dining-staff-dashboard/configs"
	"dining-staff-dashboard/pkg/handlers"

	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()
	uiCopy := loadUICopy(cfg.UICopyPath)

	r := handlers.NewRouter(cfg, uiCopy)

	log.Printf("Starting dining staff dashboard on :%s (%s)", cfg.Port, cfg.Environment)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// loadUICopy は文言ファイルを読み込み、失敗した場合は組み込みの文言を使います。
func loadUICopy(path string) *config.UICopyConfig {
	uiCopy, err := config.LoadUICopy(path)
	if err != nil {
		log.Printf("⚠️ [setup] %v (組み込みの文言を使用します)", err)
		return config.DefaultUICopy()
	}
	log.Printf("✅ [setup] UI文言を読み込みました: %s", path)
	return uiCopy
}
