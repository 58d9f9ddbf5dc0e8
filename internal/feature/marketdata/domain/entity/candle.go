// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
// for one trading day of an instrument. Values never change once built.
type Candle struct {
	Time   time.Time // Timestamp for the start of this candle period, UTC
	Open   float64   // Opening price
	High   float64   // Highest price during this period
	Low    float64   // Lowest price during this period
	Close  float64   // Closing price
	Volume int64     // Trading volume
}
