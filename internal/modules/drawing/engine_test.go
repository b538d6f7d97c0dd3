package drawing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityBridge maps x to time and y to price one-to-one. Negative
// coordinates are outside the chart.
type identityBridge struct{}

func (identityBridge) ScreenToChart(x, y float64) (Point, bool) {
	if x < 0 || y < 0 {
		return Point{}, false
	}
	return Point{Time: x, Price: y}, true
}

func (identityBridge) ChartToScreen(p Point) (ScreenPoint, bool) {
	return ScreenPoint{X: p.Time, Y: p.Price}, true
}

func (identityBridge) PriceToY(price float64) (float64, bool) {
	return price, true
}

// recorder collects notifications
type recorder struct {
	drawings [][]Drawing
	states   []State
	cursors  []Cursor
}

func (r *recorder) OnDrawingsChange(d []Drawing) { r.drawings = append(r.drawings, d) }
func (r *recorder) OnStateChange(s State)        { r.states = append(r.states, s) }
func (r *recorder) OnCursorChange(c Cursor)      { r.cursors = append(r.cursors, c) }

func newTestEngine() (*Engine, *recorder) {
	rec := &recorder{}
	e := New(identityBridge{}, WithIDGenerator(SequentialIDs("d")), WithListener(rec))
	return e, rec
}

func assertExclusive(t *testing.T, s State) {
	t.Helper()
	active := 0
	for _, flag := range []bool{s.IsDrawing, s.IsDragging, s.IsResizing} {
		if flag {
			active++
		}
	}
	assert.LessOrEqual(t, active, 1, "more than one gesture flag set: %+v", s)
}

func TestNew_InitialState(t *testing.T) {
	e, _ := newTestEngine()

	s := e.State()
	assert.Equal(t, ToolNone, s.Tool)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Nil(t, s.StartPoint)
	assert.Empty(t, s.SelectedID)
	assert.Empty(t, e.Drawings())
	assert.Equal(t, CursorDefault, e.Cursor())
}

func TestSetTool_Cursor(t *testing.T) {
	e, rec := newTestEngine()

	e.SetTool(ToolRect)
	e.SetTool(ToolFib)
	e.SetTool(ToolSelect)

	// crosshair once, fib keeps crosshair, select goes back to default
	assert.Equal(t, []Cursor{CursorCrosshair, CursorDefault}, rec.cursors)
	assert.Equal(t, ToolSelect, e.State().Tool)
	assert.Len(t, rec.states, 3)
}

func TestRectangleScenario(t *testing.T) {
	e, rec := newTestEngine()

	e.SetTool(ToolRect)
	e.HandlePointerDown(10, 10)
	e.HandlePointerMove(50, 50)

	s := e.State()
	assert.Equal(t, ModeDrawing, s.Mode)
	require.NotNil(t, s.CurrentPoint)
	assert.Equal(t, Point{Time: 50, Price: 50}, *s.CurrentPoint)
	require.NotNil(t, s.RawCurrentScreen)
	assert.Equal(t, ScreenPoint{X: 50, Y: 50}, *s.RawCurrentScreen)
	assert.Empty(t, e.Drawings(), "no drawing before pointer up")

	e.HandlePointerUp(50, 50)

	drawings := e.Drawings()
	require.Len(t, drawings, 1)
	d := drawings[0]
	assert.Equal(t, KindRect, d.Type)
	assert.Equal(t, "d_1", d.ID)
	assert.Equal(t, Point{Time: 10, Price: 10}, d.Start)
	assert.Equal(t, Point{Time: 50, Price: 50}, d.End)
	assert.Equal(t, ColorRect, d.Color)
	assert.Equal(t, ColorRectFill, d.FillColor)
	assert.True(t, d.Visible)

	s = e.State()
	assert.Equal(t, ToolNone, s.Tool)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.False(t, s.IsDrawing)
	assert.Nil(t, s.StartPoint)
	assert.Nil(t, s.RawStartScreen)

	require.NotEmpty(t, rec.drawings)
	assert.Len(t, rec.drawings[len(rec.drawings)-1], 1)
	assert.Equal(t, CursorDefault, e.Cursor())
}

func TestTrendLine_AppendedAtEnd(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "existing", Type: KindHLine, Price: 5, Visible: true}})

	e.SetTool(ToolTrendLine)
	e.HandlePointerDown(1, 2)
	e.HandlePointerUp(30, 40)

	drawings := e.Drawings()
	require.Len(t, drawings, 2)
	assert.Equal(t, "existing", drawings[0].ID)
	assert.Equal(t, KindTrendLine, drawings[1].Type)
	assert.Equal(t, Point{Time: 1, Price: 2}, drawings[1].Start)
	assert.Equal(t, Point{Time: 30, Price: 40}, drawings[1].End)
	assert.Equal(t, ColorTrendLine, drawings[1].Color)
	assert.Equal(t, ToolNone, e.State().Tool)
}

func TestFib_HasFixedLevels(t *testing.T) {
	e, _ := newTestEngine()

	e.SetTool(ToolFib)
	e.HandlePointerDown(0, 100)
	e.HandlePointerUp(100, 0)

	drawings := e.Drawings()
	require.Len(t, drawings, 1)
	assert.Equal(t, []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}, drawings[0].Levels)
	assert.Equal(t, ColorFib, drawings[0].Color)
}

func TestHLine_CreatedOnPointerDown(t *testing.T) {
	e, rec := newTestEngine()

	e.SetTool(ToolHLine)
	e.HandlePointerDown(5, 42)

	drawings := e.Drawings()
	require.Len(t, drawings, 1)
	assert.Equal(t, KindHLine, drawings[0].Type)
	assert.Equal(t, 42.0, drawings[0].Price)
	assert.Equal(t, ColorHLine, drawings[0].Color)

	s := e.State()
	assert.Equal(t, ToolNone, s.Tool)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.False(t, s.IsDrawing)
	assert.Len(t, rec.drawings, 1)

	// the trailing pointer up creates nothing more
	e.HandlePointerUp(5, 42)
	assert.Len(t, e.Drawings(), 1)
}

func TestPointerOutsideChart_Ignored(t *testing.T) {
	e, rec := newTestEngine()
	e.SetTool(ToolTrendLine)
	statesBefore := len(rec.states)

	e.HandlePointerDown(-1, 10)
	e.HandlePointerMove(-1, 10)

	assert.Equal(t, statesBefore, len(rec.states))
	assert.Equal(t, ModeIdle, e.State().Mode)

	// a pointer up outside the chart does not finish the gesture
	e.HandlePointerDown(10, 10)
	e.HandlePointerUp(-5, 20)
	assert.True(t, e.State().IsDrawing)
	assert.Empty(t, e.Drawings())

	e.HandlePointerUp(20, 20)
	assert.Len(t, e.Drawings(), 1)
}

func TestFindDrawingAtPoint_TrendLine(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{
		ID: "t", Type: KindTrendLine, Visible: true,
		Start: Point{Time: 0, Price: 0}, End: Point{Time: 100, Price: 100},
	}})

	assert.Equal(t, "t", e.FindDrawingAtPoint(50, 50, 1e-9))
	// perpendicular distance 20/sqrt(2) ~ 14.1
	assert.Empty(t, e.FindDrawingAtPoint(50, 70, 8))
	assert.Equal(t, "t", e.FindDrawingAtPoint(50, 70, 15))
	// beyond the end the distance is measured to the endpoint
	assert.Empty(t, e.FindDrawingAtPoint(110, 110, 8))
	assert.Equal(t, "t", e.FindDrawingAtPoint(104, 104, 8))
}

func TestFindDrawingAtPoint_Variants(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "h", Type: KindHLine, Price: 200, Visible: true},
		{ID: "r", Type: KindRect, Visible: true, Start: Point{Time: 300, Price: 300}, End: Point{Time: 400, Price: 350}},
		{ID: "f", Type: KindFib, Visible: true, Start: Point{Time: 500, Price: 100}, End: Point{Time: 600, Price: 0}, Levels: FibLevels},
	})

	assert.Equal(t, "h", e.FindDrawingAtPoint(1000, 205, e.HitTolerance()))
	assert.Empty(t, e.FindDrawingAtPoint(1000, 210, e.HitTolerance()))

	// rectangle interior and the widened border count
	assert.Equal(t, "r", e.FindDrawingAtPoint(350, 320, e.HitTolerance()))
	assert.Equal(t, "r", e.FindDrawingAtPoint(295, 320, e.HitTolerance()))
	assert.Empty(t, e.FindDrawingAtPoint(290, 320, e.HitTolerance()))

	// 0.5 level sits at price 50
	assert.Equal(t, "f", e.FindDrawingAtPoint(550, 52, e.HitTolerance()))
	assert.Empty(t, e.FindDrawingAtPoint(550, 30, e.HitTolerance()))
	assert.Empty(t, e.FindDrawingAtPoint(650, 50, e.HitTolerance()), "outside the horizontal span")
}

func TestFindDrawingAtPoint_TopmostAndVisibility(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "bottom", Type: KindRect, Visible: true, Start: Point{Time: 0, Price: 0}, End: Point{Time: 100, Price: 100}},
		{ID: "top", Type: KindRect, Visible: true, Start: Point{Time: 50, Price: 50}, End: Point{Time: 150, Price: 150}},
		{ID: "hidden", Type: KindRect, Visible: false, Start: Point{Time: 60, Price: 60}, End: Point{Time: 70, Price: 70}},
	})

	assert.Equal(t, "top", e.FindDrawingAtPoint(65, 65, e.HitTolerance()))
	assert.Equal(t, "bottom", e.FindDrawingAtPoint(20, 20, e.HitTolerance()))
}

func TestTouchMode_WidensTolerance(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "h", Type: KindHLine, Price: 100, Visible: true}})

	assert.Empty(t, e.FindDrawingAtPoint(10, 110, -1))
	e.SetTouchMode(true)
	assert.True(t, e.TouchMode())
	assert.Equal(t, "h", e.FindDrawingAtPoint(10, 110, -1))
	assert.Equal(t, TouchHitTolerance, e.HitTolerance())
}

func TestFindDrawingAtPoint_ZeroTolerance(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "h", Type: KindHLine, Price: 50, Visible: true},
		{ID: "r", Type: KindRect, Visible: true, Start: Point{Time: 300, Price: 300}, End: Point{Time: 400, Price: 350}},
	})

	assert.Empty(t, e.FindDrawingAtPoint(10, 55, 0))
	assert.Empty(t, e.FindDrawingAtPoint(10, 50, 0))
	assert.Equal(t, "r", e.FindDrawingAtPoint(350, 320, 0))
	assert.Empty(t, e.FindDrawingAtPoint(299, 320, 0))

	assert.Equal(t, "h", e.FindDrawingAtPoint(10, 55, -1), "negative selects the default")
	assert.Equal(t, "h", e.FindDrawingAtPoint(10, 55, e.HitTolerance()))
}

func TestFindHandleAtPoint(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "t", Type: KindTrendLine, Visible: true, Start: Point{Time: 10, Price: 10}, End: Point{Time: 15, Price: 10}},
		{ID: "h", Type: KindHLine, Visible: true, Price: 10},
	})

	assert.Equal(t, HandleNone, e.FindHandleAtPoint(10, 10), "nothing selected")

	require.True(t, e.SelectDrawing("t"))
	// both endpoints are within 12px, start is preferred
	assert.Equal(t, HandleStart, e.FindHandleAtPoint(12, 10))
	assert.Equal(t, HandleEnd, e.FindHandleAtPoint(26, 10))
	assert.Equal(t, HandleNone, e.FindHandleAtPoint(40, 10))

	require.True(t, e.SelectDrawing("h"))
	assert.Equal(t, HandleNone, e.FindHandleAtPoint(10, 10), "hline has no handles")
}

func TestMove_PreservesShape(t *testing.T) {
	e, rec := newTestEngine()
	e.SetDrawings([]Drawing{{
		ID: "r", Type: KindRect, Visible: true,
		Start: Point{Time: 10, Price: 10}, End: Point{Time: 30, Price: 40},
	}})

	e.HandlePointerDown(20, 20)
	s := e.State()
	assert.Equal(t, ModeMoving, s.Mode)
	assert.True(t, s.IsDragging)
	assert.Equal(t, "r", s.SelectedID)
	assert.Equal(t, CursorGrabbing, e.Cursor())

	e.HandlePointerMove(25, 27)
	d := e.Drawings()[0]
	assert.Equal(t, Point{Time: 15, Price: 17}, d.Start)
	assert.Equal(t, Point{Time: 35, Price: 47}, d.End)

	e.HandlePointerMove(30, 30)
	d = e.Drawings()[0]
	assert.Equal(t, Point{Time: 20, Price: 20}, d.Start)
	assert.Equal(t, Point{Time: 40, Price: 50}, d.End)
	assert.Equal(t, 20.0, d.End.Time-d.Start.Time)
	assert.Equal(t, 30.0, d.End.Price-d.Start.Price)
	assert.True(t, d.Selected)

	e.HandlePointerUp(30, 30)
	s = e.State()
	assert.False(t, s.IsDragging)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Equal(t, "r", s.SelectedID, "selection survives the drag")
	assert.NotEmpty(t, rec.drawings)
}

func TestMove_HorizontalLineShiftsPrice(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "h", Type: KindHLine, Visible: true, Price: 100}})

	e.HandlePointerDown(50, 102)
	e.HandlePointerMove(80, 90)
	e.HandlePointerUp(80, 90)

	assert.Equal(t, 88.0, e.Drawings()[0].Price)
}

func TestResize_FibEndOnly(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{
		ID: "f", Type: KindFib, Visible: true, Selected: true,
		Start: Point{Time: 10, Price: 10}, End: Point{Time: 100, Price: 100},
		Levels: FibLevels,
	}})
	require.Equal(t, "f", e.State().SelectedID)

	e.HandlePointerDown(100, 100)
	s := e.State()
	assert.True(t, s.IsResizing)
	assert.Equal(t, HandleEnd, s.ResizingHandle)
	assert.Equal(t, ModeResizing, s.Mode)

	e.HandlePointerMove(120, 80)
	d := e.Drawings()[0]
	assert.Equal(t, Point{Time: 120, Price: 80}, d.End)
	assert.Equal(t, Point{Time: 10, Price: 10}, d.Start)
	assert.Equal(t, FibLevels, d.Levels)

	e.HandlePointerUp(120, 80)
	s = e.State()
	assert.False(t, s.IsResizing)
	assert.Equal(t, HandleNone, s.ResizingHandle)
	assert.Equal(t, ModeIdle, s.Mode)
}

func TestDeleteSelected(t *testing.T) {
	e, rec := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "a", Type: KindHLine, Visible: true, Price: 1},
		{ID: "b", Type: KindHLine, Visible: true, Price: 2},
	})

	notified := len(rec.drawings)
	assert.False(t, e.DeleteSelected())
	assert.Len(t, e.Drawings(), 2)
	assert.Equal(t, notified, len(rec.drawings))

	require.True(t, e.SelectDrawing("a"))
	assert.True(t, e.DeleteSelected())

	drawings := e.Drawings()
	require.Len(t, drawings, 1)
	assert.Equal(t, "b", drawings[0].ID)
	assert.Empty(t, e.State().SelectedID)
}

func TestSelectDrawing_UnknownID(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "a", Type: KindHLine, Visible: true}})

	assert.False(t, e.SelectDrawing("missing"))
	assert.Empty(t, e.State().SelectedID)

	require.True(t, e.SelectDrawing("a"))
	assert.True(t, e.Drawings()[0].Selected)

	e.DeselectAll()
	assert.False(t, e.Drawings()[0].Selected)
	assert.Empty(t, e.State().SelectedID)
}

func TestPointerDown_OnEmptySpaceDeselects(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "h", Type: KindHLine, Visible: true, Price: 100, Selected: true}})

	e.HandlePointerDown(10, 500)

	assert.Empty(t, e.State().SelectedID)
	assert.False(t, e.Drawings()[0].Selected)
	assert.Equal(t, ModeIdle, e.State().Mode)
}

func TestCancelDrawing_KeepsSelection(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{
		ID: "r", Type: KindRect, Visible: true,
		Start: Point{Time: 10, Price: 10}, End: Point{Time: 30, Price: 40},
	}})
	require.True(t, e.SelectDrawing("r"))

	e.SetTool(ToolTrendLine)
	e.HandlePointerDown(200, 200)
	require.True(t, e.State().IsDrawing)

	e.CancelDrawing()

	s := e.State()
	assert.Equal(t, "r", s.SelectedID)
	assert.Equal(t, ToolNone, s.Tool)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.False(t, s.IsDrawing)
	assert.Nil(t, s.StartPoint)
	assert.Nil(t, s.CurrentPoint)
	assert.Len(t, e.Drawings(), 1)
}

func TestClearAll(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "a", Type: KindHLine, Visible: true, Selected: true},
		{ID: "b", Type: KindHLine, Visible: true, Price: 5},
	})

	e.ClearAll()

	assert.Empty(t, e.Drawings())
	assert.Empty(t, e.State().SelectedID)
	assert.Empty(t, e.State().HoveredID)
}

func TestHover_EmitsOnlyOnChange(t *testing.T) {
	e, rec := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "h", Type: KindHLine, Visible: true, Price: 100}})
	states := len(rec.states)

	e.HandlePointerMove(10, 101)
	assert.Equal(t, "h", e.State().HoveredID)
	assert.Equal(t, CursorGrab, e.Cursor())
	assert.Equal(t, states+1, len(rec.states))

	e.HandlePointerMove(20, 102)
	assert.Equal(t, states+1, len(rec.states), "same hover target, no notification")

	e.HandlePointerMove(20, 300)
	assert.Empty(t, e.State().HoveredID)
	assert.Equal(t, CursorDefault, e.Cursor())
	assert.Equal(t, []Cursor{CursorGrab, CursorDefault}, rec.cursors)
}

func TestHover_HandleShowsCrosshair(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{
		ID: "t", Type: KindTrendLine, Visible: true, Selected: true,
		Start: Point{Time: 0, Price: 0}, End: Point{Time: 100, Price: 100},
	}})

	e.HandlePointerMove(99, 99)
	s := e.State()
	assert.Equal(t, HandleEnd, s.HoveredHandle)
	assert.Equal(t, "t", s.HoveredID)
	assert.Equal(t, CursorCrosshair, e.Cursor())
}

func TestPointerUp_AfterDragWhileHovering(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "h", Type: KindHLine, Visible: true, Price: 100}})

	e.HandlePointerMove(10, 100)
	e.HandlePointerDown(10, 100)
	e.HandlePointerMove(10, 120)
	e.HandlePointerUp(10, 120)

	assert.Equal(t, CursorGrab, e.Cursor())
	assert.Equal(t, 120.0, e.Drawings()[0].Price)
}

func TestSnapToOHLC(t *testing.T) {
	e, _ := newTestEngine()
	e.SetCandleData([]Candle{{Time: 10, Open: 20, High: 30, Low: 5, Close: 25}})

	p := Point{Time: 10, Price: 28}
	assert.Equal(t, p, e.SnapToOHLC(p, 28), "disabled by default")

	e.SetSnapEnabled(true)
	assert.True(t, e.SnapEnabled())
	assert.Equal(t, Point{Time: 10, Price: 30}, e.SnapToOHLC(p, 28))
	assert.Equal(t, Point{Time: 10, Price: 25}, e.SnapToOHLC(Point{Time: 10, Price: 24}, 24))

	// beyond the snap radius
	far := Point{Time: 10, Price: 50}
	assert.Equal(t, far, e.SnapToOHLC(far, 50))

	// no candle at that exact time
	other := Point{Time: 11, Price: 28}
	assert.Equal(t, other, e.SnapToOHLC(other, 28))
}

func TestSnap_AppliedOnCreation(t *testing.T) {
	e, _ := newTestEngine()
	e.SetCandleData([]Candle{
		{Time: 10, Open: 20, High: 30, Low: 5, Close: 25},
		{Time: 20, Open: 25, High: 40, Low: 22, Close: 38},
	})
	e.SetSnapEnabled(true)

	e.SetTool(ToolTrendLine)
	e.HandlePointerDown(10, 29)
	e.HandlePointerMove(20, 37)
	// the preview is not snapped
	assert.Equal(t, Point{Time: 20, Price: 37}, *e.State().CurrentPoint)
	e.HandlePointerUp(20, 37)

	d := e.Drawings()[0]
	assert.Equal(t, Point{Time: 10, Price: 30}, d.Start)
	assert.Equal(t, Point{Time: 20, Price: 38}, d.End)
}

func TestSetDrawings_NormalizesIDsAndSelection(t *testing.T) {
	e, rec := newTestEngine()

	e.SetDrawings([]Drawing{
		{ID: "x", Type: KindHLine, Visible: true, Selected: true},
		{ID: "x", Type: KindHLine, Visible: true, Selected: true},
		{Type: KindHLine, Visible: true},
	})

	drawings := e.Drawings()
	require.Len(t, drawings, 3)
	ids := map[string]bool{}
	for _, d := range drawings {
		ids[d.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.True(t, drawings[0].Selected)
	assert.False(t, drawings[1].Selected)
	assert.Equal(t, "x", e.State().SelectedID)
	assert.Len(t, rec.drawings, 1)
}

func TestDrawings_ReturnsCopy(t *testing.T) {
	e, _ := newTestEngine()
	e.SetDrawings([]Drawing{{ID: "f", Type: KindFib, Visible: true, Levels: []float64{0, 1}}})

	snapshot := e.Drawings()
	snapshot[0].Levels[0] = 42
	snapshot[0].Color = "red"

	d := e.Drawings()[0]
	assert.Equal(t, 0.0, d.Levels[0])
	assert.Empty(t, d.Color)
}

func TestGestureFlags_MutuallyExclusive(t *testing.T) {
	e, rec := newTestEngine()
	e.SetDrawings([]Drawing{
		{ID: "a", Type: KindRect, Visible: true, Start: Point{Time: 20, Price: 20}, End: Point{Time: 60, Price: 60}},
		{ID: "b", Type: KindTrendLine, Visible: true, Start: Point{Time: 50, Price: 10}, End: Point{Time: 90, Price: 80}},
		{ID: "c", Type: KindHLine, Visible: true, Price: 40},
	})
	tools := []Tool{ToolNone, ToolSelect, ToolTrendLine, ToolHLine, ToolFib, ToolRect}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		x := rng.Float64()*120 - 10
		y := rng.Float64()*120 - 10
		switch rng.Intn(9) {
		case 0, 1:
			e.HandlePointerDown(x, y)
		case 2, 3, 4:
			e.HandlePointerMove(x, y)
		case 5, 6:
			e.HandlePointerUp(x, y)
		case 7:
			e.SetTool(tools[rng.Intn(len(tools))])
		case 8:
			if rng.Intn(4) == 0 {
				e.CancelDrawing()
			} else if rng.Intn(10) == 0 {
				e.DeleteSelected()
			}
		}
		assertExclusive(t, e.State())
	}
	for _, s := range rec.states {
		assertExclusive(t, s)
	}
}

func TestSequentialIDs(t *testing.T) {
	gen := SequentialIDs("x")
	assert.Equal(t, "x_1", gen())
	assert.Equal(t, "x_2", gen())

	uuids := UUIDs()
	assert.NotEqual(t, uuids(), uuids())
}
