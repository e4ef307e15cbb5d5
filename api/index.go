package handler

import (
	"context"
	"net/http"
	"sync"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/logger"
	"agri-demand-api/pkg/server"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		a, err := server.New(context.Background(), cfg)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("failed to initialize serverless application")
		}
		app = a.Router
		logger.Log.Info().Msg("serverless application initialized")
	})
	return app
}

// Handler はVercelのエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
