package handlers

import (
	"net/http"

	"dining-staff-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// requireSession は :id のセッションを読み込み、コンテキストに格納するミドルウェアです。
func requireSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessions.Get(c.Param("id"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Session not found or expired",
			})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// currentSession は requireSession が格納したセッションを取り出します。
func currentSession(c *gin.Context) *services.Session {
	return c.MustGet(sessionKey).(*services.Session)
}

// sessionEnvelope はUI操作レスポンスの共通部分です。
// notices はダッシュボードが出した通知 (ブラウザでは alert 表示) です。
func sessionEnvelope(s *services.Session) gin.H {
	body := gin.H{
		"success":    true,
		"session_id": s.ID,
		"revision":   s.Revision(),
		"notices":    noticesOrEmpty(s.Notices()),
	}
	if delay, ok := s.FocusRequest(); ok {
		body["focus_input_ms"] = delay.Milliseconds()
	}
	return body
}

func noticesOrEmpty(n []string) []string {
	if n == nil {
		return []string{}
	}
	return n
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}
