package router

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	analysishandler "tradedesk_backend/internal/feature/analysis/transport/handler"
	authhandler "tradedesk_backend/internal/feature/auth/transport/handler"
	markethandler "tradedesk_backend/internal/feature/marketdata/transport/handler"
	watchlisthandler "tradedesk_backend/internal/feature/watchlist/transport/handler"
	"tradedesk_backend/internal/platform/http/handler"
	jwtmw "tradedesk_backend/internal/platform/jwt"
)

func NewRouter(authHandler *authhandler.AuthHandler, market *markethandler.MarketHandler,
	watchlist *watchlisthandler.WatchlistHandler, analysis *analysishandler.AnalysisHandler) *gin.Engine {
	r := gin.Default()

	// CORSはルート登録前に適用する（後から Use しても既存ルートには効かない）
	r.Use(corsMiddleware())

	// 認証不要
	// 導通確認用（ロードバランサーはGET/HEAD/OPTIONSでプローブする）
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（アクセストークンとリフレッシュトークンを発行）
	r.POST("/login", authHandler.Login)
	// リフレッシュトークンのローテーション
	r.POST("/refresh", authHandler.Refresh)

	// 認証必須のルート
	// r.Group("/") でルートグループを作成
	auth := r.Group("/")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth.Use(jwtmw.AuthRequired())
	{
		auth.POST("/logout", authHandler.Logout)

		// 市場データ
		auth.GET("/market/quote/:key", market.GetQuoteHandler)
		auth.GET("/market/price/:key", market.GetPriceHandler)
		auth.GET("/market/candles/:key", market.GetCandlesHandler)
		auth.POST("/market/credentials", market.UpdateCredentialsHandler)

		// ウォッチリスト
		auth.GET("/watchlist", watchlist.List)
		auth.POST("/watchlist", watchlist.Add)
		auth.DELETE("/watchlist/:key", watchlist.Remove)

		// 分析レポート
		auth.POST("/analysis/:key", analysis.Generate)
		auth.GET("/analysis/:key", analysis.Latest)
		auth.GET("/analysis/:key/history", analysis.History)
	}

	return r
}

// corsMiddleware はブラウザダッシュボード向けのCORS設定を返します。
// CORS_ALLOWED_ORIGINSが未設定の場合は全オリジンを許可します（開発用）。
func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
