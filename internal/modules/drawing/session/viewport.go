package session

import (
	"math"

	"github.com/contestboard/arena/internal/modules/charts"
	"github.com/contestboard/arena/internal/modules/drawing"
)

const (
	DefaultWidth  = 1200
	DefaultHeight = 600

	// fraction of the price range added above and below the extremes
	pricePadding = 0.05
)

// ToDrawingCandles converts bars to the engine's unit of time (unix seconds)
func ToDrawingCandles(bars []charts.Candle) []drawing.Candle {
	out := make([]drawing.Candle, 0, len(bars))
	for _, c := range bars {
		out = append(out, drawing.Candle{
			Time:   float64(c.Time.Unix()),
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return out
}

// ViewportFor frames candles in a width x height surface. Without candles the
// requested range is shown over a unit price scale.
func ViewportFor(candles []drawing.Candle, q charts.Query, width, height float64) drawing.Viewport {
	vp := drawing.Viewport{Width: width, Height: height}

	if len(candles) == 0 {
		vp.TimeFrom = float64(q.From.Unix())
		vp.TimeTo = float64(q.To.Unix())
		vp.PriceLow, vp.PriceHigh = 0, 1
		return vp
	}

	vp.TimeFrom, vp.TimeTo = candles[0].Time, candles[0].Time
	low, high := math.Inf(1), math.Inf(-1)
	for _, c := range candles {
		vp.TimeFrom = math.Min(vp.TimeFrom, c.Time)
		vp.TimeTo = math.Max(vp.TimeTo, c.Time)
		low = math.Min(low, c.Low)
		high = math.Max(high, c.High)
	}
	if vp.TimeTo <= vp.TimeFrom {
		vp.TimeTo = vp.TimeFrom + q.Timeframe.Interval().Seconds()
	}

	pad := (high - low) * pricePadding
	if pad <= 0 {
		pad = math.Max(math.Abs(high)*0.01, 1e-6)
	}
	vp.PriceLow = low - pad
	vp.PriceHigh = high + pad
	return vp
}

func timeGrid(candles []drawing.Candle) []float64 {
	grid := make([]float64, 0, len(candles))
	for _, c := range candles {
		grid = append(grid, c.Time)
	}
	return grid
}
