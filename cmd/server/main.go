package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"tradedesk_backend/internal/app/di"
	"tradedesk_backend/internal/app/router"
	analysisgemini "tradedesk_backend/internal/feature/analysis/adapters/gemini"
	analysishandler "tradedesk_backend/internal/feature/analysis/transport/handler"
	analysisusecase "tradedesk_backend/internal/feature/analysis/usecase"
	authadapters "tradedesk_backend/internal/feature/auth/adapters"
	authhandler "tradedesk_backend/internal/feature/auth/transport/handler"
	authusecase "tradedesk_backend/internal/feature/auth/usecase"
	markethandler "tradedesk_backend/internal/feature/marketdata/transport/handler"
	watchlistadapters "tradedesk_backend/internal/feature/watchlist/adapters"
	watchlisthandler "tradedesk_backend/internal/feature/watchlist/transport/handler"
	watchlistusecase "tradedesk_backend/internal/feature/watchlist/usecase"
	"tradedesk_backend/internal/platform/cache"
	platformdb "tradedesk_backend/internal/platform/db"
	jwtmw "tradedesk_backend/internal/platform/jwt"
	platformredis "tradedesk_backend/internal/platform/redis"
)

// accessTokenTTL はアクセストークンの有効期間です。ジェネレーターとusecaseの
// 両方に同じ値を渡し、expクレームとexpires_inの応答を一致させます。
const accessTokenTTL = 15 * time.Minute

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	ctx := context.Background()

	// db
	db := platformdb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 市場データクライアント
	// アクセストークンは起動時の環境変数、または稼働中に /market/credentials で供給する
	marketLifecycle := di.NewMarketLifecycle()
	if token := os.Getenv("UPSTOX_ACCESS_TOKEN"); token != "" {
		if _, err := marketLifecycle.Configure(token); err != nil {
			log.Println("[WARN] Failed to configure market data client:", err)
		}
	}

	// ナラティブ生成（Gemini）
	var narrator analysisusecase.Narrator
	if n, err := analysisgemini.NewNarrator(ctx, os.Getenv("GEMINI_MODEL")); err != nil {
		log.Println("[WARN] Gemini narrator unavailable. Report generation is disabled:", err)
		narrator = di.DisabledNarrator()
	} else {
		narrator = n
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	instrumentRepo := watchlistadapters.NewInstrumentRepository(db)

	// レポートはRedisキャッシュでラップ（次の取引セッション開始まで有効）
	ttl := cache.TimeUntilNextSessionOpen()
	reportRepo := di.NewReportRepository(rdb, db, ttl)

	// JWT_SECRETチェック（開発中の注意喚起）
	jwtSecret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if jwtSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	// Usecase
	tokenGenerator := jwtmw.NewGenerator(jwtSecret, accessTokenTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokenGenerator, accessTokenTTL)
	watchlistUC := watchlistusecase.NewWatchlistUsecase(instrumentRepo)
	analysisUC := analysisusecase.NewAnalysisUsecase(
		di.NewAnalysisMarketData(marketLifecycle), narrator, reportRepo, nil)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, marketLifecycle)
	marketH := markethandler.NewMarketHandler(marketLifecycle)
	watchlistH := watchlisthandler.NewWatchlistHandler(watchlistUC)
	analysisH := analysishandler.NewAnalysisHandler(analysisUC)

	// ルータ生成
	r := router.NewRouter(authH, marketH, watchlistH, analysisH)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
