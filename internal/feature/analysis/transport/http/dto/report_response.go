// Package dto defines data transfer objects for the analysis HTTP API.
package dto

import "time"

// ReportRes represents an analysis report in the API response.
type ReportRes struct {
	ID              string    `json:"id"`
	InstrumentKey   string    `json:"instrument_key"`
	Narrative       string    `json:"narrative"`
	LTP             float64   `json:"ltp"`
	SMA20           float64   `json:"sma20"`
	SMA50           float64   `json:"sma50"`
	PeriodHigh      float64   `json:"period_high"`
	PeriodLow       float64   `json:"period_low"`
	PeriodChangePct float64   `json:"period_change_pct"`
	DayCount        int       `json:"day_count"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// ErrorRes is the error body shared by the analysis endpoints.
type ErrorRes struct {
	Error string `json:"error"`
}
