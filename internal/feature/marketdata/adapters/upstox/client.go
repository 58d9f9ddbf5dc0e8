package upstox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"tradedesk_backend/internal/feature/marketdata/adapters/upstox/dto"
	"tradedesk_backend/internal/feature/marketdata/domain/entity"
	"tradedesk_backend/internal/feature/marketdata/usecase"
	"tradedesk_backend/internal/shared/flight"
)

// dateLayout は履歴APIのパスに埋め込む日付形式です。
const dateLayout = "2006-01-02"

// Client はUpstox APIから市場データを取得するMarketRepository実装です。
// 同一エンドポイントへの同時リクエストは上流への1回の呼び出しに合流します。
type Client struct {
	cfg    Config
	client *http.Client
	group  *flight.Group[[]byte]
}

// ClientがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client, group: flight.NewGroup[[]byte]()}
}

// RequestError はUpstox APIへのリクエスト失敗を表します。
// 失敗したエンドポイントと上流が返したメッセージを保持します。
type RequestError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("upstox %s: http %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// FetchQuote は指定銘柄の現在の気配値を取得します。
// 上流がデータを返さなかった場合はusecase.ErrNoQuoteDataを返します。
func (c *Client) FetchQuote(ctx context.Context, instrumentKey string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("instrument_key", instrumentKey)

	body, err := c.getJSON(ctx, "/market-quote/ltp", q)
	if err != nil {
		return entity.Quote{}, err
	}

	var res dto.LTPResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return entity.Quote{}, fmt.Errorf("decode ltp response: %w", err)
	}
	if len(res.Data) == 0 {
		return entity.Quote{}, usecase.ErrNoQuoteData
	}

	// 1銘柄のみ要求しているため、最初のエントリが対象銘柄です。
	var d dto.LTPQuote
	for _, v := range res.Data {
		d = v
		break
	}

	ltp := d.LastPrice
	change := ltp - d.PrevClose
	return entity.Quote{
		LTP:           ltp,
		Open:          d.PrevClose,
		High:          ltp,
		Low:           ltp,
		Close:         d.PrevClose,
		Volume:        d.Volume,
		Change:        change,
		ChangePercent: change * 100 / d.PrevClose,
	}, nil
}

// FetchDailyCandles は指定期間の日足を取得し、時刻昇順に並べ替えて返します。
// 上流は新しい順で返すため、受信時の並び順には依存しません。
func (c *Client) FetchDailyCandles(ctx context.Context, instrumentKey string, from, to time.Time) ([]entity.Candle, error) {
	path := fmt.Sprintf("/historical-candle/%s/day/%s/%s",
		url.PathEscape(instrumentKey), to.Format(dateLayout), from.Format(dateLayout))

	body, err := c.getJSON(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var res dto.HistoricalCandleResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode candle response: %w", err)
	}

	candles := make([]entity.Candle, 0, len(res.Data.Candles))
	for i, raw := range res.Data.Candles {
		candle, err := normalizeCandle(raw)
		if err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

// Reset は進行中リクエストの合流表を破棄します。
func (c *Client) Reset() {
	c.group.Reset()
}

// normalizeCandle は位置依存の配列 [timestamp, open, high, low, close, volume, ...]
// をdomainエンティティに変換します。6要素に満たない配列はエラーになります。
func normalizeCandle(raw []any) (entity.Candle, error) {
	if len(raw) < 6 {
		return entity.Candle{}, fmt.Errorf("expected at least 6 elements, got %d", len(raw))
	}

	ts, ok := raw[0].(string)
	if !ok {
		return entity.Candle{}, fmt.Errorf("parse timestamp: unexpected type %T", raw[0])
	}
	tm, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}

	names := [...]string{"open", "high", "low", "close", "volume"}
	nums := make([]float64, len(names))
	for i := range names {
		f, ok := raw[i+1].(float64)
		if !ok {
			return entity.Candle{}, fmt.Errorf("parse %s: unexpected type %T", names[i], raw[i+1])
		}
		nums[i] = f
	}

	return entity.Candle{
		Time:   tm.UTC(),
		Open:   nums[0],
		High:   nums[1],
		Low:    nums[2],
		Close:  nums[3],
		Volume: int64(nums[4]),
	}, nil
}

// getJSON は認証付きGETを実行してレスポンスボディを返します。
// 同一エンドポイント・同一クエリの同時リクエストは1回の呼び出しに合流します。
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return c.group.Do(ctx, key, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, path, query)
	})
}

// fetch は1回のHTTPリクエストを実行します。
func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		return nil, &RequestError{
			Endpoint:   path,
			StatusCode: res.StatusCode,
			Message:    upstreamMessage(res.StatusCode, body),
		}
	}
	return body, nil
}

// upstreamMessage はエラーレスポンスから人間向けのメッセージを取り出します。
// 解析できない場合はHTTPステータスの標準文言を返します。
func upstreamMessage(statusCode int, body []byte) string {
	var res dto.ErrorResponse
	if err := json.Unmarshal(body, &res); err == nil && len(res.Errors) > 0 && res.Errors[0].Message != "" {
		return res.Errors[0].Message
	}
	return http.StatusText(statusCode)
}
