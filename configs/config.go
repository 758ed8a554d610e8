package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port             string
	Environment      string
	BackendBaseURL   string        // 予測・AIアシスタントAPIのベースURL
	BackendTimeout   time.Duration // 0 はタイムアウトなし
	DashboardVariant string        // "full" または "simple"
	SessionTTL       time.Duration
	UICopyPath       string
	APIKey           string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		BackendBaseURL:   getEnv("BACKEND_BASE_URL", "http://localhost:5000"),
		BackendTimeout:   getDuration("BACKEND_TIMEOUT", 0),
		DashboardVariant: getEnv("DASHBOARD_VARIANT", "full"),
		SessionTTL:       getDuration("SESSION_TTL", 30*time.Minute),
		UICopyPath:       getEnv("UI_COPY_PATH", "configs/ui_copy.yaml"),
		APIKey:           getEnv("API_KEY", ""),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration は "90s" 形式、または秒数の整数を受け付ける
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️ [config] %s の値が不正です (%q)。デフォルト値 %v を使用します", key, value, defaultValue)
	return defaultValue
}
