package di

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	analysisadapters "tradedesk_backend/internal/feature/analysis/adapters"
	analysisusecase "tradedesk_backend/internal/feature/analysis/usecase"
	mdentity "tradedesk_backend/internal/feature/marketdata/domain/entity"
	mdusecase "tradedesk_backend/internal/feature/marketdata/usecase"
	"tradedesk_backend/internal/platform/cache"
)

// marketView adapts the market data lifecycle to the analysis MarketData
// interface. The configured client is resolved on every call, so credential
// swaps take effect without rebuilding the analysis usecase.
type marketView struct {
	lifecycle *mdusecase.Lifecycle
}

func (v *marketView) GetMarketQuote(ctx context.Context, instrumentKey string) (mdentity.Quote, error) {
	m, err := v.lifecycle.Get()
	if err != nil {
		return mdentity.Quote{}, err
	}
	return m.GetMarketQuote(ctx, instrumentKey)
}

func (v *marketView) GetLastTradingDaysData(ctx context.Context, instrumentKey string, dayCount, skipDays int) ([]mdentity.Candle, error) {
	m, err := v.lifecycle.Get()
	if err != nil {
		return nil, err
	}
	return m.GetLastTradingDaysData(ctx, instrumentKey, dayCount, skipDays)
}

// NewAnalysisMarketData returns a market data view over the lifecycle for
// the analysis feature.
func NewAnalysisMarketData(lifecycle *mdusecase.Lifecycle) analysisusecase.MarketData {
	return &marketView{lifecycle: lifecycle}
}

// NewReportRepository creates a ReportRepository implementation.
// If Redis is available, the database-backed repository is wrapped with a
// caching decorator using the given TTL.
func NewReportRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) analysisusecase.ReportRepository {
	inner := analysisadapters.NewReportRepository(db)
	if rdb == nil {
		return inner
	}
	return cache.NewCachingReportRepository(rdb, ttl, inner, "reports")
}

// disabledNarrator fails every narration attempt with a stable error.
type disabledNarrator struct{}

func (disabledNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("narrator is not configured")
}

// DisabledNarrator returns a Narrator that always fails. The server falls
// back to it when Gemini credentials are missing so the rest of the API
// stays up.
func DisabledNarrator() analysisusecase.Narrator {
	return disabledNarrator{}
}
