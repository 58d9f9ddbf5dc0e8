// Package usecase はanalysisフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradedesk_backend/internal/feature/analysis/domain/entity"
	mdentity "tradedesk_backend/internal/feature/marketdata/domain/entity"
)

const (
	// ReportDayCount はレポートが対象とする営業日数です。
	ReportDayCount = 60
	// DefaultListLimit はレポート一覧のデフォルト件数です。
	DefaultListLimit = 10
	// MaxListLimit はレポート一覧の最大件数です。
	MaxListLimit = 100

	// smaShortWindow / smaLongWindow は移動平均の窓幅（営業日数）です。
	smaShortWindow = 20
	smaLongWindow  = 50

	// NarrativePromptTemplate は分析ナラティブ生成のプロンプトテンプレートです。
	NarrativePromptTemplate = "You are a market analyst for an equity trading dashboard. " +
		"Write a short technical read (two or three plain-language paragraphs, no investment advice) " +
		"for instrument %s based on these figures: last traded price %.2f, " +
		"%d-trading-day change %+.2f%%, period high %.2f, period low %.2f, " +
		"20-day SMA %s, 50-day SMA %s. " +
		"Mention where the price sits relative to the moving averages and the period range."
)

// MarketData は分析に必要な市場データの取得を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketData interface {
	// GetMarketQuote は指定銘柄の現在の気配値を取得します。
	GetMarketQuote(ctx context.Context, instrumentKey string) (mdentity.Quote, error)
	// GetLastTradingDaysData は直近dayCount営業日分の日足を時刻昇順で取得します。
	GetLastTradingDaysData(ctx context.Context, instrumentKey string, dayCount, skipDays int) ([]mdentity.Candle, error)
}

// Narrator は指標からナラティブを生成するインターフェースです。
type Narrator interface {
	// Narrate はプロンプトから分析ナラティブを生成します。
	Narrate(ctx context.Context, prompt string) (string, error)
}

// ReportRepository はレポートの永続化を抽象化します。
type ReportRepository interface {
	Save(ctx context.Context, report *entity.Report) error
	FindLatestByInstrument(ctx context.Context, instrumentKey string) (*entity.Report, error)
	ListByInstrument(ctx context.Context, instrumentKey string, limit int) ([]entity.Report, error)
}

// RateLimiter はバッチ生成時の呼び出し頻度を制限します。
type RateLimiter interface {
	WaitIfNeeded()
}

// AnalysisUsecase はテクニカル分析レポートの生成と参照を提供します。
type AnalysisUsecase struct {
	market   MarketData
	narrator Narrator
	reports  ReportRepository
	limiter  RateLimiter
}

// NewAnalysisUsecase はAnalysisUsecaseの新しいインスタンスを生成します。
// limiterはnil可で、その場合バッチ生成時の待機を行いません。
func NewAnalysisUsecase(market MarketData, narrator Narrator, reports ReportRepository, limiter RateLimiter) *AnalysisUsecase {
	return &AnalysisUsecase{
		market:   market,
		narrator: narrator,
		reports:  reports,
		limiter:  limiter,
	}
}

// GenerateReport は指定銘柄のレポートを生成して永続化し、生成結果を返します。
func (au *AnalysisUsecase) GenerateReport(ctx context.Context, instrumentKey string) (*entity.Report, error) {
	if err := validateInstrumentKey(instrumentKey); err != nil {
		return nil, err
	}

	quote, err := au.market.GetMarketQuote(ctx, instrumentKey)
	if err != nil {
		return nil, err
	}
	candles, err := au.market.GetLastTradingDaysData(ctx, instrumentKey, ReportDayCount, 0)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoCandleData
	}

	report := buildMetrics(instrumentKey, quote, candles)

	prompt := renderPrompt(report)
	narrative, err := au.narrator.Narrate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("narrator failed for %q: %w", instrumentKey, err)
	}
	report.Narrative = narrative
	report.ID = uuid.NewString()
	report.GeneratedAt = time.Now()

	if err := au.reports.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return report, nil
}

// LatestReport は指定銘柄の最新レポートを返します。
func (au *AnalysisUsecase) LatestReport(ctx context.Context, instrumentKey string) (*entity.Report, error) {
	if err := validateInstrumentKey(instrumentKey); err != nil {
		return nil, err
	}
	return au.reports.FindLatestByInstrument(ctx, instrumentKey)
}

// ListReports は指定銘柄のレポートを新しい順に返します。
// limitが0以下の場合はデフォルト件数、上限超過の場合は最大件数に丸めます。
func (au *AnalysisUsecase) ListReports(ctx context.Context, instrumentKey string, limit int) ([]entity.Report, error) {
	if err := validateInstrumentKey(instrumentKey); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return au.reports.ListByInstrument(ctx, instrumentKey, limit)
}

// GenerateAll は複数銘柄のレポートを順番に生成します。1銘柄の失敗では処理を
// 止めずにログへ出力し、次の銘柄へ進みます。コンテキストの取り消しで中断します。
func (au *AnalysisUsecase) GenerateAll(ctx context.Context, instrumentKeys []string) error {
	for _, key := range instrumentKeys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if au.limiter != nil {
			au.limiter.WaitIfNeeded()
		}
		if _, err := au.GenerateReport(ctx, key); err != nil {
			slog.Error("failed to generate report", "instrument", key, "error", err)
			continue
		}
		slog.Info("report generated", "instrument", key)
	}
	return nil
}

// buildMetrics は気配値と日足からレポートの指標部分を計算します。
func buildMetrics(instrumentKey string, quote mdentity.Quote, candles []mdentity.Candle) *entity.Report {
	closes := make([]float64, 0, len(candles))
	high := candles[0].High
	low := candles[0].Low
	for _, c := range candles {
		closes = append(closes, c.Close)
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}

	changePct := 0.0
	if first := candles[0].Close; first != 0 {
		changePct = (candles[len(candles)-1].Close - first) / first * 100
	}

	return &entity.Report{
		InstrumentKey:   instrumentKey,
		LTP:             quote.LTP,
		SMA20:           sma(closes, smaShortWindow),
		SMA50:           sma(closes, smaLongWindow),
		PeriodHigh:      high,
		PeriodLow:       low,
		PeriodChangePct: changePct,
		DayCount:        len(candles),
	}
}

// renderPrompt は指標をプロンプトテンプレートに埋め込みます。
func renderPrompt(r *entity.Report) string {
	return fmt.Sprintf(NarrativePromptTemplate,
		r.InstrumentKey, r.LTP, r.DayCount, r.PeriodChangePct,
		r.PeriodHigh, r.PeriodLow, formatSMA(r.SMA20), formatSMA(r.SMA50))
}

// formatSMA はSMA値を表示用に整形します。データ不足（0）は "n/a" とします。
func formatSMA(v float64) string {
	if v == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// sma は末尾window件の終値の単純移動平均を返します。データ不足時は0を返します。
func sma(closes []float64, window int) float64 {
	if len(closes) < window || window <= 0 {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window)
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
