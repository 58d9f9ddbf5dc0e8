package handler

import (
	"context"
	"errors"
	"net/http"

	"tradedesk_backend/internal/feature/watchlist/domain/entity"
	"tradedesk_backend/internal/feature/watchlist/transport/http/dto"
	"tradedesk_backend/internal/feature/watchlist/usecase"

	"github.com/gin-gonic/gin"
)

// WatchlistUsecase は監視リストに関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type WatchlistUsecase interface {
	ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error)
	AddInstrument(ctx context.Context, in usecase.AddInstrumentInput) (*entity.Instrument, error)
	RemoveInstrument(ctx context.Context, instrumentKey string) error
}

// WatchlistHandler は監視リストに関するHTTPリクエストを処理します。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は新しい WatchlistHandler を作成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// List はアクティブな銘柄の一覧を取得するAPIです。
// Usecaseを呼び出して銘柄一覧を取得し、DTOに変換してJSONレスポンスとして返します。
func (h *WatchlistHandler) List(c *gin.Context) {
	instruments, err := h.uc.ListActiveInstruments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.InstrumentItem, 0, len(instruments))
	for _, ins := range instruments {
		out = append(out, toItem(&ins))
	}
	c.JSON(http.StatusOK, out)
}

// Add は銘柄を監視リストに登録するAPIです。
// 既にアクティブな銘柄が登録済みの場合は409 Conflictを返します。
func (h *WatchlistHandler) Add(c *gin.Context) {
	var req dto.AddInstrumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instrument, err := h.uc.AddInstrument(c.Request.Context(), usecase.AddInstrumentInput{
		InstrumentKey: req.InstrumentKey,
		Symbol:        req.Symbol,
		Name:          req.Name,
		Exchange:      req.Exchange,
		SortKey:       req.SortKey,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrDuplicateInstrument) {
			c.JSON(http.StatusConflict, gin.H{"error": "instrument already on watchlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toItem(instrument))
}

// Remove は銘柄を監視リストから取り除くAPIです。
// 行は削除せず非アクティブ化し、再登録時に復帰できるようにします。
func (h *WatchlistHandler) Remove(c *gin.Context) {
	key := c.Param("key")
	if err := h.uc.RemoveInstrument(c.Request.Context(), key); err != nil {
		if errors.Is(err, usecase.ErrInstrumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instrument not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "instrument removed"})
}

// toItem はエンティティをレスポンスDTOに変換します。
func toItem(ins *entity.Instrument) dto.InstrumentItem {
	return dto.InstrumentItem{
		InstrumentKey: ins.InstrumentKey,
		Symbol:        ins.Symbol,
		Name:          ins.Name,
		Exchange:      ins.Exchange,
	}
}
