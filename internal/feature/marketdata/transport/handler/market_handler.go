// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradedesk_backend/internal/feature/marketdata/adapters/upstox"
	"tradedesk_backend/internal/feature/marketdata/domain/entity"
	"tradedesk_backend/internal/feature/marketdata/transport/http/dto"
	"tradedesk_backend/internal/feature/marketdata/usecase"
)

// MarketSource は市場データクライアントの取得と差し替えを抽象化します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketSource interface {
	// Get は構成済みのクライアントを返します。
	Get() (*usecase.MarketDataUsecase, error)
	// Configure は新しいアクセストークンでクライアントを再構築します。
	Configure(accessToken string) (*usecase.MarketDataUsecase, error)
	// Clear は現在のクライアントと保持キャッシュを破棄します。
	Clear()
}

// MarketHandler は市場データのHTTPリクエストを処理します。
type MarketHandler struct {
	source MarketSource
}

// NewMarketHandler は指定されたソースでMarketHandlerの新しいインスタンスを生成します。
func NewMarketHandler(source MarketSource) *MarketHandler {
	return &MarketHandler{source: source}
}

// GetQuoteHandler は指定銘柄の気配値をJSONで返します。
//
// エンドポイント例:
// GET /market/quote/NSE_EQ|INE669E01016
func (h *MarketHandler) GetQuoteHandler(c *gin.Context) {
	m, ok := h.market(c)
	if !ok {
		return
	}

	q, err := m.GetMarketQuote(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quoteResponse(q))
}

// GetPriceHandler は指定銘柄の直近約定価格のみをJSONで返します。
//
// エンドポイント例:
// GET /market/price/NSE_EQ|INE669E01016
func (h *MarketHandler) GetPriceHandler(c *gin.Context) {
	m, ok := h.market(c)
	if !ok {
		return
	}

	price, err := m.GetCurrentPrice(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PriceResponse{LTP: price})
}

// GetCandlesHandler は直近営業日分の日足をJSONで返します。
//
// エンドポイント例:
// GET /market/candles/NSE_EQ|INE669E01016?days=100&skip=0
func (h *MarketHandler) GetCandlesHandler(c *gin.Context) {
	m, ok := h.market(c)
	if !ok {
		return
	}

	// 文字列を整数に変換（失敗時は0となり、usecase側でデフォルトが適用される）
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	candles, err := m.GetLastTradingDaysData(c.Request.Context(), c.Param("key"), days, skip)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// データをフォーマット
	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandleResponse{
			Time:   x.Time.UTC().Format("2006-01-02"),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}

// UpdateCredentialsHandler は上流アクセストークンを差し替え、
// 古いクライアントが保持していたキャッシュを破棄します。
//
// エンドポイント例:
// POST /market/credentials {"access_token": "..."}
func (h *MarketHandler) UpdateCredentialsHandler(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "access_token is required"})
		return
	}

	h.source.Clear()
	if _, err := h.source.Configure(req.AccessToken); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "credentials updated"})
}

// market は構成済みクライアントを取り出します。未構成の場合は503を書き込みます。
func (h *MarketHandler) market(c *gin.Context) (*usecase.MarketDataUsecase, bool) {
	m, err := h.source.Get()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return m, true
}

// writeError はusecaseのエラーをHTTPステータスへ対応付けます。
func (h *MarketHandler) writeError(c *gin.Context, err error) {
	var reqErr *upstox.RequestError
	switch {
	case errors.Is(err, usecase.ErrInvalidInstrumentKey):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNoQuoteData):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: reqErr.Message})
	default:
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}
}

// quoteResponse は非有限のchangePercentをnullへ丸めてDTOに変換します。
func quoteResponse(q entity.Quote) dto.QuoteResponse {
	res := dto.QuoteResponse{
		LTP:    q.LTP,
		Open:   q.Open,
		High:   q.High,
		Low:    q.Low,
		Close:  q.Close,
		Volume: q.Volume,
		Change: q.Change,
	}
	if !math.IsInf(q.ChangePercent, 0) && !math.IsNaN(q.ChangePercent) {
		cp := q.ChangePercent
		res.ChangePercent = &cp
	}
	return res
}
