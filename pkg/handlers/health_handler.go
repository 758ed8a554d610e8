package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"dining-staff-dashboard/pkg/models"
	"dining-staff-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

// StatusProber はバックエンドの疎通確認に使うエンドポイントです。
type StatusProber interface {
	ChatStatus(ctx context.Context) (*models.ChatStatus, error)
}

// HealthHandler はヘルスチェックとメンテナンスモードを扱うハンドラです。
type HealthHandler struct {
	prober       StatusProber
	sessions     *services.SessionService
	probeTimeout time.Duration
	maintenance  atomic.Bool
}

// NewHealthHandler は新しいHealthHandlerを生成します。
func NewHealthHandler(prober StatusProber, sessions *services.SessionService) *HealthHandler {
	return &HealthHandler{
		prober:       prober,
		sessions:     sessions,
		probeTimeout: 3 * time.Second,
	}
}

// HealthCheck は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
// バックエンドに届かなくてもUIサーバー自体は稼働中として200を返します。
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.maintenance.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}

	backend := gin.H{"reachable": false}
	if h.prober != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.probeTimeout)
		defer cancel()
		status, err := h.prober.ChatStatus(ctx)
		if err != nil {
			backend["error"] = err.Error()
		} else {
			backend["reachable"] = true
			backend["agent_available"] = status.AgentAvailable
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.sessions.Count(),
		"variant":  h.sessions.Variant(),
		"backend":  backend,
	})
}

// SetMaintenance はメンテナンスモードを切り替えます。
func (h *HealthHandler) SetMaintenance(c *gin.Context) {
	var input struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "enabled is required")
		return
	}
	h.maintenance.Store(input.Enabled)
	c.JSON(http.StatusOK, gin.H{"success": true, "maintenance": input.Enabled})
}
