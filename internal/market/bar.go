package market

import (
	"time"
)

// Bar represents one fixed-interval OHLCV observation.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// IsValid checks internal OHLC consistency of the bar.
func (b Bar) IsValid() bool {
	return !b.Time.IsZero() &&
		b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0 &&
		b.Volume >= 0 &&
		b.High >= b.Low && b.High >= b.Open && b.High >= b.Close &&
		b.Low <= b.Open && b.Low <= b.Close
}

// Return calculates the simple return of the bar close against a previous close.
func (b Bar) Return(prevClose float64) float64 {
	if prevClose <= 0 {
		return 0
	}
	return (b.Close - prevClose) / prevClose
}
