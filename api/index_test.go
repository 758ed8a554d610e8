package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandlerServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("BACKEND_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("UI_COPY_PATH", "../configs/ui_copy.yaml")

	w := httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// 2回目以降は同じルーターを再利用する
	first := setupApp()
	assert.Same(t, first, setupApp())
}
