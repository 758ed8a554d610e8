package handlers

import (
	"log"
	"net/http"
	"time"

	config "dining-staff-dashboard/configs"
	"dining-staff-dashboard/pkg/backend"
	"dining-staff-dashboard/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterDeps はルーターの組み立てに必要な依存関係です。
type RouterDeps struct {
	Config     *config.Config
	Sessions   *services.SessionService
	Monitoring *services.MonitoringService
	Prober     StatusProber
}

// sharedReadTTL はセッション間で共有する選択肢・サマリー・ステータスのキャッシュ期間です。
const sharedReadTTL = 30 * time.Second

// NewRouter は設定からバックエンドクライアント・セッションストアを組み立ててルーターを返します。
func NewRouter(cfg *config.Config, text *config.UICopyConfig) *gin.Engine {
	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	log.Printf("🔗 [setup] バックエンド: %s (variant=%s)", client.BaseURL(), cfg.DashboardVariant)

	sessions := services.NewSessionService(
		services.NewCachingBackend(client, sharedReadTTL),
		services.NewSessionOptions(cfg, text),
	)
	return SetupRouter(RouterDeps{
		Config:     cfg,
		Sessions:   sessions,
		Monitoring: services.NewMonitoringService(time.Local),
		Prober:     client,
	})
}

// APIKeyAuth は X-API-KEY ヘッダーを検証するミドルウェアです。apiKey が空なら認証しません。
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			log.Printf("⚠️ [認証] 無効なAPI Keyです: %s %s", c.Request.Method, c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// SetupRouter はサーバーとサーバーレス関数で共通のGinルーターを組み立てます。
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.Default()

	monitoringHandler := NewMonitoringHandler(deps.Monitoring)
	healthHandler := NewHealthHandler(deps.Prober, deps.Sessions)
	sessionHandler := NewSessionHandler(deps.Sessions)
	widgetHandler := NewWidgetHandler()
	dashboardHandler := NewDashboardHandler()

	// ミドルウェアの登録
	r.Use(deps.Monitoring.LoggingMiddleware())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("X-API-KEY")
	r.Use(cors.New(corsConfig))

	auth := APIKeyAuth(deps.Config.APIKey)

	r.GET("/health", healthHandler.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(auth)
	{
		v1.GET("/monitoring/logs", monitoringHandler.GetLogs)
		v1.POST("/admin/maintenance", healthHandler.SetMaintenance)
	}

	ui := r.Group("/ui")
	ui.Use(auth)
	{
		ui.POST("/sessions", sessionHandler.CreateSession)
		ui.DELETE("/sessions/:id", sessionHandler.DeleteSession)

		session := ui.Group("/sessions/:id")
		session.Use(requireSession(deps.Sessions))
		{
			// チャットウィジェット
			chat := session.Group("/chat")
			{
				chat.GET("", widgetHandler.GetWidget)
				chat.POST("/events/:event", widgetHandler.HandleEvent)
				chat.POST("/resize/start", widgetHandler.StartResize)
				chat.POST("/resize/move", widgetHandler.MoveResize)
				chat.POST("/resize/end", widgetHandler.EndResize)
				chat.PUT("/input", widgetHandler.SetInput)
				chat.POST("/messages", widgetHandler.SendMessage)
				chat.POST("/clear", widgetHandler.ClearConversation)
				chat.POST("/status", widgetHandler.RefreshStatus)
			}

			// 人員予測ダッシュボード
			dash := session.Group("/dashboard")
			{
				dash.GET("", dashboardHandler.GetDashboard)
				dash.PUT("/params", dashboardHandler.UpdateParams)
				dash.POST("/predictions", dashboardHandler.GeneratePredictions)
				dash.POST("/detail", dashboardHandler.OpenDetail)
				dash.PUT("/detail/event", dashboardHandler.ChangeDetailEvent)
				dash.DELETE("/detail", dashboardHandler.CloseDetail)
				dash.GET("/charts/:chartID", dashboardHandler.GetChart)
				dash.GET("/export.xlsx", dashboardHandler.ExportWorkbook)
			}
		}
	}

	return r
}
