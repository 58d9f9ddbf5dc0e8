// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradedesk_backend/internal/feature/analysis/domain/entity"
	"tradedesk_backend/internal/feature/analysis/transport/http/dto"
	"tradedesk_backend/internal/feature/analysis/usecase"
	"tradedesk_backend/internal/feature/marketdata/adapters/upstox"
	mdusecase "tradedesk_backend/internal/feature/marketdata/usecase"
)

// AnalysisUsecase は分析レポートに関するユースケースのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	GenerateReport(ctx context.Context, instrumentKey string) (*entity.Report, error)
	LatestReport(ctx context.Context, instrumentKey string) (*entity.Report, error)
	ListReports(ctx context.Context, instrumentKey string, limit int) ([]entity.Report, error)
}

// AnalysisHandler は分析レポートに関するHTTPリクエストを処理します。
type AnalysisHandler struct {
	uc AnalysisUsecase
}

// NewAnalysisHandler はAnalysisHandlerの新しいインスタンスを生成します。
func NewAnalysisHandler(uc AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// Generate は指定銘柄の分析レポートを生成して返します。
//
// エンドポイント: POST /analysis/:key
func (h *AnalysisHandler) Generate(c *gin.Context) {
	key := c.Param("key")

	report, err := h.uc.GenerateReport(c.Request.Context(), key)
	if err != nil {
		slog.Error("report generation failed", "instrument", key, "error", err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReportRes(report))
}

// Latest は指定銘柄の最新レポートを返します。
//
// エンドポイント: GET /analysis/:key
func (h *AnalysisHandler) Latest(c *gin.Context) {
	key := c.Param("key")

	report, err := h.uc.LatestReport(c.Request.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInstrumentKey):
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: err.Error()})
		case errors.Is(err, usecase.ErrReportNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorRes{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, toReportRes(report))
}

// History は指定銘柄のレポート履歴を新しい順に返します。
//
// エンドポイント: GET /analysis/:key/history?limit=N
func (h *AnalysisHandler) History(c *gin.Context) {
	key := c.Param("key")

	// 不正なlimitは無視してデフォルト件数に任せます。
	limit, _ := strconv.Atoi(c.Query("limit"))

	reports, err := h.uc.ListReports(c.Request.Context(), key, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInstrumentKey) {
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: err.Error()})
		return
	}
	out := make([]dto.ReportRes, 0, len(reports))
	for i := range reports {
		out = append(out, toReportRes(&reports[i]))
	}
	c.JSON(http.StatusOK, out)
}

// writeError は生成時のエラーをHTTPステータスに対応付けます。
func (h *AnalysisHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInstrumentKey):
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: err.Error()})
	case errors.Is(err, mdusecase.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorRes{Error: err.Error()})
	case errors.Is(err, usecase.ErrNoCandleData), errors.Is(err, mdusecase.ErrNoQuoteData):
		c.JSON(http.StatusNotFound, dto.ErrorRes{Error: err.Error()})
	default:
		var reqErr *upstox.RequestError
		if errors.As(err, &reqErr) {
			c.JSON(http.StatusBadGateway, dto.ErrorRes{Error: reqErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorRes{Error: err.Error()})
	}
}

// toReportRes はエンティティをレスポンスDTOに変換します。
func toReportRes(r *entity.Report) dto.ReportRes {
	return dto.ReportRes{
		ID:              r.ID,
		InstrumentKey:   r.InstrumentKey,
		Narrative:       r.Narrative,
		LTP:             r.LTP,
		SMA20:           r.SMA20,
		SMA50:           r.SMA50,
		PeriodHigh:      r.PeriodHigh,
		PeriodLow:       r.PeriodLow,
		PeriodChangePct: r.PeriodChangePct,
		DayCount:        r.DayCount,
		GeneratedAt:     r.GeneratedAt,
	}
}
