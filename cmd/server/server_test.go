package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	config "dining-staff-dashboard/configs"
	"dining-staff-dashboard/pkg/handlers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)

	// .envファイルを読み込み（存在しなくてもよい）
	_ = godotenv.Load("../../.env")

	os.Exit(m.Run())
}

func TestLoadUICopyFallsBack(t *testing.T) {
	c := loadUICopy(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, c)
	assert.Equal(t, config.DefaultUICopy().Widget.Greeting, c.Widget.Greeting)
}

func TestLoadUICopyBundledFile(t *testing.T) {
	c := loadUICopy("../../configs/ui_copy.yaml")
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Widget.Greeting)
	assert.Positive(t, c.Dashboard.RangeDays)
}

// バックエンドが停止していてもサーバーは起動し、セッションを作成できること
func TestRouterWithUnreachableBackend(t *testing.T) {
	cfg := &config.Config{
		BackendBaseURL:   "http://127.0.0.1:1",
		DashboardVariant: "simple",
	}
	r := handlers.NewRouter(cfg, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "simple", health["variant"])
	assert.Equal(t, false, health["backend"].(map[string]any)["reachable"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ui/sessions", nil))
	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	chat := body["widget"].(map[string]any)
	assert.Equal(t, false, chat["agent_available"])
	dash := body["dashboard"].(map[string]any)
	assert.Equal(t, "regular_day", dash["event"])
	assert.Nil(t, dash["summary"])
}
