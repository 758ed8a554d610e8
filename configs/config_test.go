package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":              "9090",
		"ENVIRONMENT":       "test",
		"BACKEND_BASE_URL":  "http://backend.test:5000",
		"BACKEND_TIMEOUT":   "15s",
		"DASHBOARD_VARIANT": "simple",
		"SESSION_TTL":       "600",
	}

	for key, value := range testCases {
		os.Setenv(key, value)
	}

	// テスト後にクリーンアップ
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.BackendBaseURL != "http://backend.test:5000" {
		t.Errorf("Expected BackendBaseURL to be 'http://backend.test:5000', got '%s'", cfg.BackendBaseURL)
	}

	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("Expected BackendTimeout to be 15s, got %v", cfg.BackendTimeout)
	}

	if cfg.DashboardVariant != "simple" {
		t.Errorf("Expected DashboardVariant to be 'simple', got '%s'", cfg.DashboardVariant)
	}

	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("Expected SessionTTL to be 10m, got %v", cfg.SessionTTL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// 環境変数をクリア
	vars := []string{
		"PORT", "ENVIRONMENT", "BACKEND_BASE_URL", "BACKEND_TIMEOUT",
		"DASHBOARD_VARIANT", "SESSION_TTL", "UI_COPY_PATH",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	cfg := LoadConfig()

	// デフォルト値の検証
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}

	if cfg.BackendTimeout != 0 {
		t.Errorf("Expected no default BackendTimeout, got %v", cfg.BackendTimeout)
	}

	if cfg.DashboardVariant != "full" {
		t.Errorf("Expected default DashboardVariant to be 'full', got '%s'", cfg.DashboardVariant)
	}
}

func TestGetDurationInvalidFallsBack(t *testing.T) {
	os.Setenv("SESSION_TTL", "soon")
	defer os.Unsetenv("SESSION_TTL")

	if d := getDuration("SESSION_TTL", time.Minute); d != time.Minute {
		t.Errorf("Expected fallback of 1m, got %v", d)
	}
}
