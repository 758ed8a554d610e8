package handlers

import (
	"net/http"

	"dining-staff-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

// SessionHandler はUIセッションの作成と破棄を扱うハンドラです。
type SessionHandler struct {
	sessions *services.SessionService
}

// NewSessionHandler は新しいSessionHandlerを生成します。
func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession はウィジェットとダッシュボードを初期化したセッションを作成します。
func (h *SessionHandler) CreateSession(c *gin.Context) {
	s := h.sessions.Create(c.Request.Context())
	body := sessionEnvelope(s)
	body["widget"] = s.Widget.View()
	body["dashboard"] = s.Dashboard.View()
	c.JSON(http.StatusCreated, body)
}

// DeleteSession はセッションを破棄します。存在しなくても成功を返します。
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
