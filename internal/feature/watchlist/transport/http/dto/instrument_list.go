// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

// InstrumentItem represents a watchlist entry in the API response.
// It contains only the public-facing fields needed by clients.
type InstrumentItem struct {
	InstrumentKey string `json:"instrument_key"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
}

// AddInstrumentReq is the request body for registering an instrument.
// Name and Exchange are optional; missing values are derived from the
// symbol and the instrument key.
type AddInstrumentReq struct {
	InstrumentKey string `json:"instrument_key" binding:"required"`
	Symbol        string `json:"symbol" binding:"required"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	SortKey       int    `json:"sort_key"`
}
