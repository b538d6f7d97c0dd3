package charts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
)

// Indicator names accepted by Indicator
const (
	IndicatorSMA = "sma"
	IndicatorEMA = "ema"
	IndicatorRSI = "rsi"
)

const (
	DefaultIndicatorPeriod = 14
	maxIndicatorPeriod     = 500
)

// IndicatorPoint is one value of an overlay series
type IndicatorPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// IndicatorSeries is an overlay computed over a candle series
type IndicatorSeries struct {
	Indicator string           `json:"indicator"`
	Period    int              `json:"period"`
	Points    []IndicatorPoint `json:"points"`
	Source    Source           `json:"source"`
}

// Indicator computes an overlay on the close prices of the candles for q.
// Bars inside the warm-up window are omitted.
func (s *Service) Indicator(ctx context.Context, q Query, name string, period int) (*IndicatorSeries, error) {
	name = strings.ToLower(name)
	if period == 0 {
		period = DefaultIndicatorPeriod
	}
	if period < 2 || period > maxIndicatorPeriod {
		return nil, fmt.Errorf("%w: period must be between 2 and %d", ErrInvalidQuery, maxIndicatorPeriod)
	}

	var (
		compute  func([]float64, int) []float64
		lookback int
	)
	switch name {
	case IndicatorSMA:
		compute, lookback = talib.Sma, period-1
	case IndicatorEMA:
		compute, lookback = talib.Ema, period-1
	case IndicatorRSI:
		compute, lookback = talib.Rsi, period
	default:
		return nil, fmt.Errorf("%w: unknown indicator %q", ErrInvalidQuery, name)
	}

	result, err := s.Candles(ctx, q)
	if err != nil {
		return nil, err
	}

	series := &IndicatorSeries{
		Indicator: name,
		Period:    period,
		Points:    []IndicatorPoint{},
		Source:    result.Source,
	}
	if len(result.Candles) <= lookback {
		return series, nil
	}

	closes := make([]float64, len(result.Candles))
	for i, c := range result.Candles {
		closes[i] = c.Close
	}

	values := compute(closes, period)
	for i := lookback; i < len(values); i++ {
		series.Points = append(series.Points, IndicatorPoint{
			Time:  result.Candles[i].Time,
			Value: values[i],
		})
	}
	return series, nil
}
