// Package market holds the bar data model shared by the simulator,
// indicators, and strategies.
package market

import "time"

// Bar is one OHLCV candle. Bars are immutable once loaded.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Range returns high minus low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool {
	return b.Close > b.Open
}
