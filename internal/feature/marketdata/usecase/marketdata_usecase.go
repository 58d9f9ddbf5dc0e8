// Package usecase は市場データ取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradedesk_backend/internal/feature/marketdata/domain/entity"
	"tradedesk_backend/internal/shared/timedcache"
	"tradedesk_backend/internal/shared/tradingcal"
)

const (
	// DefaultDayCount は日足取得のデフォルト営業日数です。
	DefaultDayCount = 100
	// MaxDayCount は日足取得の最大営業日数です。
	MaxDayCount = 1000
	// DefaultSkipDays はデフォルトで除外する直近営業日数です。
	DefaultSkipDays = 0

	// DefaultQuoteTTL は気配値キャッシュの保持期間です。
	DefaultQuoteTTL = 30 * time.Second
	// DefaultCandleTTL は日足キャッシュの保持期間です。
	DefaultCandleTTL = 5 * time.Minute
)

// MarketRepository は上流の市場データAPIを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// FetchQuote は指定銘柄の現在の気配値を取得します。
	FetchQuote(ctx context.Context, instrumentKey string) (entity.Quote, error)
	// FetchDailyCandles は指定期間の日足を時刻昇順で取得します。
	FetchDailyCandles(ctx context.Context, instrumentKey string, from, to time.Time) ([]entity.Candle, error)
}

// MarketDataUsecase は気配値と日足の取得をTTLキャッシュ越しに提供します。
type MarketDataUsecase struct {
	market  MarketRepository
	quotes  *timedcache.Cache[entity.Quote]
	candles *timedcache.Cache[[]entity.Candle]
}

// NewMarketDataUsecase はMarketDataUsecaseの新しいインスタンスを生成します。
// quoteTTLまたはcandleTTLが0以下の場合はデフォルト値を使用します。
func NewMarketDataUsecase(market MarketRepository, quoteTTL, candleTTL time.Duration) *MarketDataUsecase {
	if quoteTTL <= 0 {
		quoteTTL = DefaultQuoteTTL
	}
	if candleTTL <= 0 {
		candleTTL = DefaultCandleTTL
	}
	return &MarketDataUsecase{
		market:  market,
		quotes:  timedcache.New[entity.Quote](quoteTTL),
		candles: timedcache.New[[]entity.Candle](candleTTL),
	}
}

// GetMarketQuote は指定銘柄の気配値を返します。キャッシュが新鮮な間は上流を呼びません。
func (mu *MarketDataUsecase) GetMarketQuote(ctx context.Context, instrumentKey string) (entity.Quote, error) {
	if err := validateInstrumentKey(instrumentKey); err != nil {
		return entity.Quote{}, err
	}

	if q, ok := mu.quotes.Get(instrumentKey); ok {
		return q, nil
	}

	q, err := mu.market.FetchQuote(ctx, instrumentKey)
	if err != nil {
		return entity.Quote{}, err
	}

	mu.quotes.Put(instrumentKey, q)
	return q, nil
}

// GetCurrentPrice は指定銘柄の直近約定価格のみを返します。
func (mu *MarketDataUsecase) GetCurrentPrice(ctx context.Context, instrumentKey string) (float64, error) {
	q, err := mu.GetMarketQuote(ctx, instrumentKey)
	if err != nil {
		return 0, err
	}
	return q.LTP, nil
}

// GetLastTradingDaysData は直近dayCount営業日分の日足を時刻昇順で返します。
// dayCountが0以下または上限超過の場合、およびskipDaysが負の場合はデフォルト値を使用します。
func (mu *MarketDataUsecase) GetLastTradingDaysData(ctx context.Context, instrumentKey string, dayCount, skipDays int) ([]entity.Candle, error) {
	if err := validateInstrumentKey(instrumentKey); err != nil {
		return nil, err
	}
	if dayCount <= 0 || dayCount > MaxDayCount {
		dayCount = DefaultDayCount
	}
	if skipDays < 0 {
		skipDays = DefaultSkipDays
	}

	key := fmt.Sprintf("%s:%d:%d", instrumentKey, dayCount, skipDays)
	if cs, ok := mu.candles.Get(key); ok {
		return cs, nil
	}

	r, err := tradingcal.LastTradingDays(dayCount, skipDays)
	if err != nil {
		return nil, err
	}

	cs, err := mu.market.FetchDailyCandles(ctx, instrumentKey, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	mu.candles.Put(key, cs)
	return cs, nil
}

// Reset は保持している全キャッシュを破棄します。リポジトリが進行中呼び出しの
// 合流表を持つ場合はそれも破棄します。
func (mu *MarketDataUsecase) Reset() {
	mu.quotes.Purge()
	mu.candles.Purge()
	if r, ok := mu.market.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// validateInstrumentKey は銘柄キーを検証します。1回の呼び出しで扱える銘柄は1つだけです。
func validateInstrumentKey(instrumentKey string) error {
	if strings.TrimSpace(instrumentKey) == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidInstrumentKey)
	}
	if strings.Contains(instrumentKey, ",") {
		return fmt.Errorf("%w: %q must reference a single instrument", ErrInvalidInstrumentKey, instrumentKey)
	}
	return nil
}
