package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"tradedesk_backend/internal/app/di"
	analysisgemini "tradedesk_backend/internal/feature/analysis/adapters/gemini"
	analysisusecase "tradedesk_backend/internal/feature/analysis/usecase"
	watchlistadapters "tradedesk_backend/internal/feature/watchlist/adapters"
	"tradedesk_backend/internal/platform/cache"
	platformdb "tradedesk_backend/internal/platform/db"
	platformredis "tradedesk_backend/internal/platform/redis"
	"tradedesk_backend/internal/shared/ratelimiter"
)

// narrationRateLimit / narrationRateInterval はGemini無料枠（10リクエスト/分）に
// 合わせた呼び出し頻度の上限です。
const (
	narrationRateLimit    = 10
	narrationRateInterval = time.Minute
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := platformdb.OpenDB()

	// Redis（サーバーが保持するレポートキャッシュを保存時に無効化するため）
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(ctx); err != nil {
		log.Println("[WARN] Redis unavailable. Cached reports will expire on TTL only.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 市場データクライアント（バッチでは起動時のアクセストークンが必須）
	lifecycle := di.NewMarketLifecycle()
	token := os.Getenv("UPSTOX_ACCESS_TOKEN")
	if token == "" {
		log.Fatal("UPSTOX_ACCESS_TOKEN is required")
	}
	if _, err := lifecycle.Configure(token); err != nil {
		log.Fatal("failed to configure market data client: ", err)
	}

	narrator, err := analysisgemini.NewNarrator(ctx, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatal("failed to create narrator: ", err)
	}

	instrumentRepo := watchlistadapters.NewInstrumentRepository(db)
	reportRepo := di.NewReportRepository(rdb, db, cache.TimeUntilNextSessionOpen())
	limiter := ratelimiter.NewRateLimiter(narrationRateLimit, narrationRateInterval)
	uc := analysisusecase.NewAnalysisUsecase(
		di.NewAnalysisMarketData(lifecycle), narrator, reportRepo, limiter)

	keys, err := instrumentRepo.ListActiveKeys(ctx)
	if err != nil {
		log.Fatal("failed to load watchlist: ", err)
	}

	if err := uc.GenerateAll(ctx, keys); err != nil {
		log.Fatal(err)
	}
	log.Println("report generation ok")
}
