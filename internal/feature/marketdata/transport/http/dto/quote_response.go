// Package dto defines request and response payloads for the marketdata endpoints.
package dto

// QuoteResponse は気配値のレスポンスDTOです。
// ChangePercent は前日終値が0の場合に非有限となるため、nullを許容します。
type QuoteResponse struct {
	LTP           float64  `json:"ltp"`           // 直近約定価格
	Open          float64  `json:"open"`          // 始値（前日終値）
	High          float64  `json:"high"`          // 高値
	Low           float64  `json:"low"`           // 安値
	Close         float64  `json:"close"`         // 前日終値
	Volume        int64    `json:"volume"`        // 出来高
	Change        float64  `json:"change"`        // 前日比
	ChangePercent *float64 `json:"changePercent"` // 前日比率（%）
}

// PriceResponse は直近約定価格のみのレスポンスDTOです。
type PriceResponse struct {
	LTP float64 `json:"ltp"`
}
