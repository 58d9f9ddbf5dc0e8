// Package dto defines data transfer objects for the Upstox API responses.
package dto

// LTPResponse represents the JSON response from the market-quote/ltp endpoint.
// Data maps an instrument token to its latest traded snapshot; requests made
// with a single instrument key yield a single entry.
type LTPResponse struct {
	Status string              `json:"status"`
	Data   map[string]LTPQuote `json:"data"`
}

// LTPQuote is one instrument's snapshot within an LTPResponse.
type LTPQuote struct {
	LastPrice       float64 `json:"last_price"`
	InstrumentToken string  `json:"instrument_token"`
	LastQuantity    int64   `json:"ltq"`
	Volume          int64   `json:"volume"`
	PrevClose       float64 `json:"cp"`
}
