package entity

// Quote represents a live market snapshot for an instrument, derived from the
// upstream last-traded-price feed.
//
// Open and Close carry the previous close, while High and Low carry the last
// traded price: a point-in-time snapshot has no intraday range of its own.
// When the previous close is zero, ChangePercent follows IEEE 754 division
// and may be non-finite; transports decide how to render such values.
type Quote struct {
	LTP           float64 // Last traded price
	Open          float64 // Previous close (snapshot convention)
	High          float64 // Last traded price (snapshot convention)
	Low           float64 // Last traded price (snapshot convention)
	Close         float64 // Previous close
	Volume        int64   // Cumulative traded volume for the day
	Change        float64 // LTP minus previous close
	ChangePercent float64 // Change relative to previous close, in percent
}
