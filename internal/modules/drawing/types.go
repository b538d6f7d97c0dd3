// Package drawing implements the interactive chart annotation engine.
//
// The Engine turns pointer input on a price/time chart into drawings
// (trend lines, horizontal lines, Fibonacci retracements, rectangles) and
// supports selection, dragging, endpoint resizing, hover feedback and OHLC
// snapping. It is single-threaded: callers must serialize every call.
package drawing

// Point is a chart-space coordinate
type Point struct {
	Time  float64 `json:"time"`
	Price float64 `json:"price"`
}

// ScreenPoint is a pixel coordinate on the rendering surface
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Kind identifies the drawing variant
type Kind string

const (
	KindTrendLine Kind = "trendline"
	KindHLine     Kind = "hline"
	KindFib       Kind = "fib"
	KindRect      Kind = "rect"
)

// Tool is the armed drawing tool
type Tool string

const (
	ToolNone      Tool = "none"
	ToolTrendLine Tool = "trendline"
	ToolHLine     Tool = "hline"
	ToolFib       Tool = "fib"
	ToolRect      Tool = "rect"
	ToolSelect    Tool = "select"
)

// IsShape reports whether the tool creates a drawing
func (t Tool) IsShape() bool {
	switch t {
	case ToolTrendLine, ToolHLine, ToolFib, ToolRect:
		return true
	}
	return false
}

// Valid reports whether t is a known tool
func (t Tool) Valid() bool {
	return t == ToolNone || t == ToolSelect || t.IsShape()
}

// Mode is the interaction mode
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeDrawing  Mode = "drawing"
	ModeMoving   Mode = "moving"
	ModeResizing Mode = "resizing"
)

// Cursor is the cursor glyph suggested to the presentation layer
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorCrosshair Cursor = "crosshair"
	CursorMove      Cursor = "move"
	CursorPointer   Cursor = "pointer"
	CursorGrab      Cursor = "grab"
	CursorGrabbing  Cursor = "grabbing"
)

// Handle names a draggable endpoint. The empty Handle means none.
type Handle string

const (
	HandleNone  Handle = ""
	HandleStart Handle = "start"
	HandleEnd   Handle = "end"
)

// FibLevels are the retracement levels attached to every new Fibonacci drawing
var FibLevels = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

// Default colors per drawing kind
const (
	ColorTrendLine = "#f39c12"
	ColorHLine     = "#FBBF24"
	ColorFib       = "#8B5CF6"
	ColorRect      = "#10B981"
	ColorRectFill  = "rgba(16, 185, 129, 0.15)"
)

// Drawing is a single annotation. Type selects which geometry fields apply:
// Price for hline; Start and End for trendline, fib and rect; FillColor for
// rect; Levels for fib.
type Drawing struct {
	ID        string    `json:"id"`
	Type      Kind      `json:"type"`
	Color     string    `json:"color"`
	Visible   bool      `json:"visible"`
	Selected  bool      `json:"selected,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Start     Point     `json:"start"`
	End       Point     `json:"end"`
	FillColor string    `json:"fillColor,omitempty"`
	Levels    []float64 `json:"levels,omitempty"`
}

// HasEndpoints reports whether the drawing is defined by a start and end point
func (d Drawing) HasEndpoints() bool {
	return d.Type == KindTrendLine || d.Type == KindFib || d.Type == KindRect
}

func (d Drawing) clone() Drawing {
	if d.Levels != nil {
		d.Levels = append([]float64(nil), d.Levels...)
	}
	return d
}

func cloneDrawings(src []Drawing) []Drawing {
	out := make([]Drawing, len(src))
	for i, d := range src {
		out[i] = d.clone()
	}
	return out
}

// State is the interaction state of an Engine. Empty ID strings and nil
// points mean "none".
type State struct {
	Tool             Tool         `json:"tool"`
	Mode             Mode         `json:"mode"`
	IsDrawing        bool         `json:"isDrawing"`
	IsDragging       bool         `json:"isDragging"`
	IsResizing       bool         `json:"isResizing"`
	ResizingHandle   Handle       `json:"resizingHandle,omitempty"`
	StartPoint       *Point       `json:"startPoint,omitempty"`
	CurrentPoint     *Point       `json:"currentPoint,omitempty"`
	SelectedID       string       `json:"selectedId,omitempty"`
	HoveredID        string       `json:"hoveredId,omitempty"`
	HoveredHandle    Handle       `json:"hoveredHandle,omitempty"`
	DragOffset       *Point       `json:"dragOffset,omitempty"`
	RawStartScreen   *ScreenPoint `json:"rawStartScreen,omitempty"`
	RawCurrentScreen *ScreenPoint `json:"rawCurrentScreen,omitempty"`
}

func (s State) clone() State {
	s.StartPoint = copyPoint(s.StartPoint)
	s.CurrentPoint = copyPoint(s.CurrentPoint)
	s.DragOffset = copyPoint(s.DragOffset)
	s.RawStartScreen = copyScreenPoint(s.RawStartScreen)
	s.RawCurrentScreen = copyScreenPoint(s.RawCurrentScreen)
	return s
}

func copyPoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyScreenPoint(p *ScreenPoint) *ScreenPoint {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// SnapOptions configures OHLC snapping
type SnapOptions struct {
	Enabled      bool    `json:"enabled"`
	SnapToOHLC   bool    `json:"snapToOHLC"`
	SnapDistance float64 `json:"snapDistance"` // pixels
}

// Candle is one bar of the loaded series. Time uses the same units as Point.Time.
type Candle struct {
	Time   float64 `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}
