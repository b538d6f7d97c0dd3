package drawing

import (
	"fmt"
	"math"
	"sort"
)

// CoordinateBridge maps between screen pixels and chart coordinates.
// A false result means the position is outside the mapped range; the
// engine ignores the event in that case.
type CoordinateBridge interface {
	ScreenToChart(x, y float64) (Point, bool)
	ChartToScreen(p Point) (ScreenPoint, bool)
	PriceToY(price float64) (float64, bool)
}

// Viewport describes the visible chart window
type Viewport struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	TimeFrom  float64 `json:"timeFrom"`
	TimeTo    float64 `json:"timeTo"`
	PriceLow  float64 `json:"priceLow"`
	PriceHigh float64 `json:"priceHigh"`
}

// Validate checks that both axes have a positive extent
func (v Viewport) Validate() error {
	for _, f := range []float64{v.Width, v.Height, v.TimeFrom, v.TimeTo, v.PriceLow, v.PriceHigh} {
		if !finite(f) {
			return fmt.Errorf("viewport bounds must be finite")
		}
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("viewport size must be positive, got %.0fx%.0f", v.Width, v.Height)
	}
	if v.TimeTo <= v.TimeFrom {
		return fmt.Errorf("viewport time range is empty")
	}
	if v.PriceHigh <= v.PriceLow {
		return fmt.Errorf("viewport price range is empty")
	}
	return nil
}

// LinearBridge is a CoordinateBridge with linear time and price scales.
// Price grows upwards (y = 0 is PriceHigh). When a time grid is set,
// ScreenToChart snaps time to the nearest bar the way a chart time scale does.
type LinearBridge struct {
	vp    Viewport
	times []float64
}

// NewLinearBridge creates a bridge for the given viewport
func NewLinearBridge(vp Viewport) (*LinearBridge, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	return &LinearBridge{vp: vp}, nil
}

// Viewport returns the current viewport
func (b *LinearBridge) Viewport() Viewport {
	return b.vp
}

// SetViewport replaces the viewport, e.g. after a resize or pan
func (b *LinearBridge) SetViewport(vp Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	b.vp = vp
	return nil
}

// SetTimeGrid sets the bar times used to snap screen x to a time.
// An empty grid disables snapping.
func (b *LinearBridge) SetTimeGrid(times []float64) {
	grid := append([]float64(nil), times...)
	sort.Float64s(grid)
	b.times = grid
}

// ScreenToChart implements CoordinateBridge
func (b *LinearBridge) ScreenToChart(x, y float64) (Point, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return Point{}, false
	}
	if x < 0 || x > b.vp.Width || y < 0 || y > b.vp.Height {
		return Point{}, false
	}
	t := b.vp.TimeFrom + x/b.vp.Width*(b.vp.TimeTo-b.vp.TimeFrom)
	if len(b.times) > 0 {
		t = nearest(b.times, t)
	}
	price := b.vp.PriceHigh - y/b.vp.Height*(b.vp.PriceHigh-b.vp.PriceLow)
	return Point{Time: t, Price: price}, true
}

// ChartToScreen implements CoordinateBridge. Times outside the visible
// window have no x coordinate.
func (b *LinearBridge) ChartToScreen(p Point) (ScreenPoint, bool) {
	if math.IsNaN(p.Time) || p.Time < b.vp.TimeFrom || p.Time > b.vp.TimeTo {
		return ScreenPoint{}, false
	}
	y, ok := b.PriceToY(p.Price)
	if !ok {
		return ScreenPoint{}, false
	}
	x := (p.Time - b.vp.TimeFrom) / (b.vp.TimeTo - b.vp.TimeFrom) * b.vp.Width
	return ScreenPoint{X: x, Y: y}, true
}

// PriceToY implements CoordinateBridge. The price scale extrapolates beyond
// the visible range.
func (b *LinearBridge) PriceToY(price float64) (float64, bool) {
	span := b.vp.PriceHigh - b.vp.PriceLow
	if span <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return (b.vp.PriceHigh - price) / span * b.vp.Height, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// nearest returns the element of the sorted slice closest to v
func nearest(sorted []float64, v float64) float64 {
	i := sort.SearchFloat64s(sorted, v)
	if i == 0 {
		return sorted[0]
	}
	if i == len(sorted) {
		return sorted[len(sorted)-1]
	}
	if v-sorted[i-1] <= sorted[i]-v {
		return sorted[i-1]
	}
	return sorted[i]
}
