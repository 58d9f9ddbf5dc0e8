package dto

// HistoricalCandleResponse represents the JSON response from the
// historical-candle endpoint. Each candle is a positional array of
// [timestamp, open, high, low, close, volume, ...]; the upstream appends
// further elements such as open interest, which callers ignore.
type HistoricalCandleResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]any `json:"candles"`
	} `json:"data"`
}

// ErrorResponse represents the JSON error payload returned by the Upstox API.
type ErrorResponse struct {
	Status string `json:"status"`
	Errors []struct {
		ErrorCode string `json:"errorCode"`
		Message   string `json:"message"`
	} `json:"errors"`
}
