package handler

import (
	"log"
	"net/http"
	"sync"

	config "dining-staff-dashboard/configs"
	"dining-staff-dashboard/pkg/handlers"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// セッションはインスタンスのメモリにのみ保持されるため、インスタンスが入れ替わると失われます。
func setupApp() *gin.Engine {
	once.Do(func() {
		log.Printf("🟢 [setupApp] Initializing Gin application")

		// 環境変数はデプロイ先の設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		uiCopy, err := config.LoadUICopy(cfg.UICopyPath)
		if err != nil {
			log.Printf("⚠️ [setupApp] %v (組み込みの文言を使用します)", err)
			uiCopy = config.DefaultUICopy()
		}

		app = handlers.NewRouter(cfg, uiCopy)
		log.Printf("🟢 [setupApp] Router ready (backend=%s)", cfg.BackendBaseURL)
	})
	return app
}

// Handler はサーバーレス関数のエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
