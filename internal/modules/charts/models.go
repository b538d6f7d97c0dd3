// Package charts serves OHLCV candles and indicator overlays for the chart
// view, falling back to generated candles when no market data is stored.
package charts

import (
	"errors"
	"fmt"
	"time"
)

// MaxCandles caps a single candles query
const MaxCandles = 5000

// ErrInvalidQuery marks a candles request the caller must fix
var ErrInvalidQuery = errors.New("invalid candles query")

// Source tells where candles came from
type Source string

const (
	SourceStore Source = "store"
	SourceMock  Source = "mock"
)

// Candle is one OHLCV bar
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Timeframe is a bar size such as M1, M15 or H4
type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"

	DefaultTimeframe = M15
)

// Interval returns the bar duration. Unknown timeframes use 15 minutes.
func (tf Timeframe) Interval() time.Duration {
	switch tf {
	case M1:
		return time.Minute
	case M5:
		return 5 * time.Minute
	case M15:
		return 15 * time.Minute
	case H1:
		return time.Hour
	case H4:
		return 4 * time.Hour
	default:
		return 15 * time.Minute
	}
}

// Query selects candles for one symbol over an inclusive time range
type Query struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe Timeframe
}

// Validate checks the query is complete and ordered
func (q Query) Validate() error {
	if q.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidQuery)
	}
	if q.From.IsZero() || q.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidQuery)
	}
	if q.To.Before(q.From) {
		return fmt.Errorf("%w: to is before from", ErrInvalidQuery)
	}
	return nil
}

// Result is a candle series with its provenance
type Result struct {
	Candles []Candle `json:"candles"`
	Source  Source   `json:"source"`
}
