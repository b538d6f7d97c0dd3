package drawing

import "math"

// Hit-test tolerances in pixels
const (
	DefaultHitTolerance    = 8.0
	TouchHitTolerance      = 15.0
	DefaultHandleTolerance = 12.0
	TouchHandleTolerance   = 20.0
	DefaultSnapDistance    = 10.0
)

// distanceToSegment returns the distance from (px, py) to the finite segment
// (x1, y1)-(x2, y2). A degenerate segment is treated as its start point.
func distanceToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy

	t := -1.0
	if lenSq != 0 {
		t = ((px-x1)*dx + (py-y1)*dy) / lenSq
	}

	var cx, cy float64
	switch {
	case t < 0:
		cx, cy = x1, y1
	case t > 1:
		cx, cy = x2, y2
	default:
		cx, cy = x1+t*dx, y1+t*dy
	}
	return math.Hypot(px-cx, py-cy)
}

// fibLevelPrice returns the price of a retracement level between two anchors
func fibLevelPrice(a, b Point, level float64) float64 {
	high := math.Max(a.Price, b.Price)
	low := math.Min(a.Price, b.Price)
	return high - (high-low)*level
}

// hitTest reports whether screen point (x, y) lies within tolerance of d
func hitTest(bridge CoordinateBridge, d Drawing, x, y, tolerance float64) bool {
	switch d.Type {
	case KindHLine:
		lineY, ok := bridge.PriceToY(d.Price)
		return ok && math.Abs(y-lineY) < tolerance

	case KindTrendLine:
		start, end, ok := screenEndpoints(bridge, d)
		if !ok {
			return false
		}
		return distanceToSegment(x, y, start.X, start.Y, end.X, end.Y) < tolerance

	case KindRect:
		start, end, ok := screenEndpoints(bridge, d)
		if !ok {
			return false
		}
		minX, maxX := math.Min(start.X, end.X), math.Max(start.X, end.X)
		minY, maxY := math.Min(start.Y, end.Y), math.Max(start.Y, end.Y)
		return x >= minX-tolerance && x <= maxX+tolerance &&
			y >= minY-tolerance && y <= maxY+tolerance

	case KindFib:
		start, end, ok := screenEndpoints(bridge, d)
		if !ok {
			return false
		}
		minX, maxX := math.Min(start.X, end.X), math.Max(start.X, end.X)
		if x < minX || x > maxX {
			return false
		}
		for _, level := range d.Levels {
			lineY, ok := bridge.PriceToY(fibLevelPrice(d.Start, d.End, level))
			if ok && math.Abs(y-lineY) < tolerance {
				return true
			}
		}
	}
	return false
}

func screenEndpoints(bridge CoordinateBridge, d Drawing) (ScreenPoint, ScreenPoint, bool) {
	start, ok := bridge.ChartToScreen(d.Start)
	if !ok {
		return ScreenPoint{}, ScreenPoint{}, false
	}
	end, ok := bridge.ChartToScreen(d.End)
	if !ok {
		return ScreenPoint{}, ScreenPoint{}, false
	}
	return start, end, true
}

// handleAt returns which endpoint of d lies within tolerance of (x, y).
// Start wins when both match.
func handleAt(bridge CoordinateBridge, d Drawing, x, y, tolerance float64) Handle {
	if !d.HasEndpoints() {
		return HandleNone
	}
	if s, ok := bridge.ChartToScreen(d.Start); ok && math.Hypot(x-s.X, y-s.Y) < tolerance {
		return HandleStart
	}
	if e, ok := bridge.ChartToScreen(d.End); ok && math.Hypot(x-e.X, y-e.Y) < tolerance {
		return HandleEnd
	}
	return HandleNone
}

// translate shifts every coordinate of d by (dt, dp)
func translate(d Drawing, dt, dp float64) Drawing {
	if d.Type == KindHLine {
		d.Price += dp
		return d
	}
	if d.HasEndpoints() {
		d.Start = Point{Time: d.Start.Time + dt, Price: d.Start.Price + dp}
		d.End = Point{Time: d.End.Time + dt, Price: d.End.Price + dp}
	}
	return d
}
