package types

import (
	"fmt"
	"time"
)

// OHLCV is one candle row. Index is the bar sequence number assigned by the
// candle store; it is strictly increasing across settled rows.
type OHLCV struct {
	Index  int64     `json:"index"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

func (o OHLCV) String() string {
	return fmt.Sprintf("OHLCV[%d] O:%f H:%f L:%f C:%f V:%f", o.Index, o.Open, o.High, o.Low, o.Close, o.Volume)
}

// Source selects which price a calculation reads from each candle.
type Source string

const (
	SourceClose Source = "close"
	SourceOpen  Source = "open"
	SourceHigh  Source = "high"
	SourceLow   Source = "low"
	SourceHL2   Source = "hl2"
	SourceHLC3  Source = "hlc3"
	SourceOHLC4 Source = "ohlc4"
)

// Price applies the source selector to one candle. Unknown selectors fall back
// to the close price.
func (s Source) Price(o OHLCV) float64 {
	switch s {
	case SourceOpen:
		return o.Open
	case SourceHigh:
		return o.High
	case SourceLow:
		return o.Low
	case SourceHL2:
		return (o.High + o.Low) / 2.0
	case SourceHLC3:
		return (o.High + o.Low + o.Close) / 3.0
	case SourceOHLC4:
		return (o.Open + o.High + o.Low + o.Close) / 4.0
	}
	return o.Close
}
