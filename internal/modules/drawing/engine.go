package drawing

// Listener receives engine notifications. Calls are synchronous and happen
// inside the engine call that triggered them; a Listener must not call back
// into the engine's mutating methods.
type Listener interface {
	OnDrawingsChange(drawings []Drawing)
	OnStateChange(state State)
	OnCursorChange(cursor Cursor)
}

// Callbacks adapts optional functions to a Listener. Nil fields are skipped.
type Callbacks struct {
	DrawingsChanged func([]Drawing)
	StateChanged    func(State)
	CursorChanged   func(Cursor)
}

func (c Callbacks) OnDrawingsChange(drawings []Drawing) {
	if c.DrawingsChanged != nil {
		c.DrawingsChanged(drawings)
	}
}

func (c Callbacks) OnStateChange(state State) {
	if c.StateChanged != nil {
		c.StateChanged(state)
	}
}

func (c Callbacks) OnCursorChange(cursor Cursor) {
	if c.CursorChanged != nil {
		c.CursorChanged(cursor)
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithIDGenerator overrides the drawing ID source
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithListener sets the notification listener
func WithListener(l Listener) Option {
	return func(e *Engine) {
		e.listener = l
	}
}

// WithSnapDistance sets the OHLC snap radius in pixels
func WithSnapDistance(px float64) Option {
	return func(e *Engine) {
		if px > 0 {
			e.snap.SnapDistance = px
		}
	}
}

// WithTouchMode enables touch-sized hit targets from the start
func WithTouchMode(enabled bool) Option {
	return func(e *Engine) {
		e.touch = enabled
	}
}

// Engine is the drawing state machine for one chart
type Engine struct {
	bridge   CoordinateBridge
	drawings []Drawing
	state    State
	snap     SnapOptions
	candles  []Candle
	touch    bool
	listener Listener
	newID    IDGenerator
	cursor   Cursor

	// geometry of the dragged drawing and pointer position at gesture start
	moveOrigin *Drawing
	moveAnchor Point
}

// New creates an idle engine with no drawings
func New(bridge CoordinateBridge, opts ...Option) *Engine {
	e := &Engine{
		bridge:   bridge,
		drawings: []Drawing{},
		state:    State{Tool: ToolNone, Mode: ModeIdle},
		snap:     SnapOptions{SnapDistance: DefaultSnapDistance},
		listener: Callbacks{},
		newID:    UUIDs(),
		cursor:   CursorDefault,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.listener == nil {
		e.listener = Callbacks{}
	}
	return e
}

// SetListener replaces the notification listener
func (e *Engine) SetListener(l Listener) {
	if l == nil {
		l = Callbacks{}
	}
	e.listener = l
}

// SetBridge swaps the coordinate bridge, e.g. after the chart is re-created
func (e *Engine) SetBridge(bridge CoordinateBridge) {
	e.bridge = bridge
}

// State returns a copy of the interaction state
func (e *Engine) State() State {
	return e.state.clone()
}

// Cursor returns the last suggested cursor
func (e *Engine) Cursor() Cursor {
	return e.cursor
}

// Drawings returns a copy of the drawing list in z-order (last is topmost)
func (e *Engine) Drawings() []Drawing {
	return cloneDrawings(e.drawings)
}

// SetDrawings replaces the whole drawing list. Missing or duplicate IDs are
// replaced with fresh ones and at most one drawing stays selected.
// Any move or resize in progress is ended.
func (e *Engine) SetDrawings(drawings []Drawing) {
	next := cloneDrawings(drawings)
	seen := make(map[string]bool, len(next))
	selected := ""
	for i := range next {
		if next[i].ID == "" || seen[next[i].ID] {
			next[i].ID = e.newID()
		}
		seen[next[i].ID] = true
		if next[i].Selected {
			if selected == "" {
				selected = next[i].ID
			} else {
				next[i].Selected = false
			}
		}
	}

	e.drawings = next
	e.state.SelectedID = selected
	if !seen[e.state.HoveredID] {
		e.state.HoveredID = ""
		e.state.HoveredHandle = HandleNone
	}
	e.endPointerGesture()

	e.emitDrawings()
	e.emitState()
}

// SetCandleData sets the series used for OHLC snapping
func (e *Engine) SetCandleData(candles []Candle) {
	e.candles = append([]Candle(nil), candles...)
}

// SetSnapEnabled toggles OHLC snapping
func (e *Engine) SetSnapEnabled(enabled bool) {
	e.snap.Enabled = enabled
	e.snap.SnapToOHLC = enabled
}

// SnapEnabled reports whether snapping is on
func (e *Engine) SnapEnabled() bool {
	return e.snap.Enabled
}

// SnapOptions returns the current snap configuration
func (e *Engine) SnapOptions() SnapOptions {
	return e.snap
}

// SetTouchMode widens hit and handle tolerances for touch input
func (e *Engine) SetTouchMode(enabled bool) {
	e.touch = enabled
}

// TouchMode reports whether touch tolerances are active
func (e *Engine) TouchMode() bool {
	return e.touch
}

// SetTool arms a tool. It is legal in any state and abandons any gesture in
// progress without creating a drawing.
func (e *Engine) SetTool(tool Tool) {
	e.resetGesture()
	e.state.Tool = tool

	if tool.IsShape() {
		e.setCursor(CursorCrosshair)
	} else {
		e.setCursor(CursorDefault)
	}
	e.emitState()
}

// HandlePointerDown starts a resize, a move, a selection or a new drawing
func (e *Engine) HandlePointerDown(x, y float64) {
	point, ok := e.bridge.ScreenToChart(x, y)
	if !ok {
		return
	}

	// a down without the matching up (pointer lost) ends the previous gesture
	if e.state.Mode != ModeIdle {
		e.resetGesture()
	}

	if e.state.SelectedID != "" {
		if handle := e.FindHandleAtPoint(x, y); handle != HandleNone {
			e.state.IsResizing = true
			e.state.ResizingHandle = handle
			e.state.Mode = ModeResizing
			e.state.StartPoint = &point
			e.setCursor(CursorCrosshair)
			e.emitState()
			return
		}
	}

	switch {
	case !e.state.Tool.IsShape():
		hitID := e.FindDrawingAtPoint(x, y, e.HitTolerance())
		if hitID == "" {
			e.DeselectAll()
			break
		}
		e.SelectDrawing(hitID)
		if idx := e.indexOf(hitID); idx >= 0 {
			origin := e.drawings[idx].clone()
			e.moveOrigin = &origin
			e.moveAnchor = point
		}
		e.state.IsDragging = true
		e.state.Mode = ModeMoving
		e.state.StartPoint = &point
		e.setCursor(CursorGrabbing)

	default:
		snapped := e.SnapToOHLC(point, y)
		current := snapped
		e.state.IsDrawing = true
		e.state.Mode = ModeDrawing
		e.state.StartPoint = &snapped
		e.state.CurrentPoint = &current
		e.state.RawStartScreen = &ScreenPoint{X: x, Y: y}
		e.state.RawCurrentScreen = &ScreenPoint{X: x, Y: y}

		// a horizontal line needs a single point
		if e.state.Tool == ToolHLine {
			e.completeDrawing(snapped)
			return
		}
	}

	e.emitState()
}

// HandlePointerMove updates the preview, the dragged drawing or the hover state
func (e *Engine) HandlePointerMove(x, y float64) {
	point, ok := e.bridge.ScreenToChart(x, y)
	if !ok {
		return
	}

	switch {
	case e.state.IsDrawing && e.state.StartPoint != nil:
		// preview follows the raw pointer, snapping is applied on completion
		e.state.CurrentPoint = &point
		e.state.RawCurrentScreen = &ScreenPoint{X: x, Y: y}
		e.emitState()

	case e.state.IsResizing && e.state.SelectedID != "" && e.state.ResizingHandle != HandleNone:
		e.resizeSelected(e.SnapToOHLC(point, y))

	case e.state.IsDragging && e.state.SelectedID != "" && e.state.StartPoint != nil:
		e.moveSelected(point)

	default:
		e.updateHover(x, y)
	}
}

// HandlePointerUp completes a drawing or ends a move or resize
func (e *Engine) HandlePointerUp(x, y float64) {
	point, ok := e.bridge.ScreenToChart(x, y)

	if e.state.IsDrawing && e.state.StartPoint != nil {
		if !ok {
			return
		}
		e.completeDrawing(e.SnapToOHLC(point, y))
		return
	}

	if e.state.IsDragging || e.state.IsResizing {
		e.endPointerGesture()
		if e.state.HoveredID != "" {
			e.setCursor(CursorGrab)
		} else {
			e.setCursor(CursorDefault)
		}
	}

	e.clearGesturePoints()
	e.state.Mode = ModeIdle
	e.emitState()
}

// SelectDrawing marks the drawing with id as the only selected one.
// It returns false when no such drawing exists.
func (e *Engine) SelectDrawing(id string) bool {
	if e.indexOf(id) < 0 {
		return false
	}
	for i := range e.drawings {
		e.drawings[i].Selected = e.drawings[i].ID == id
	}
	e.state.SelectedID = id
	e.emitDrawings()
	e.emitState()
	return true
}

// DeselectAll clears the selection
func (e *Engine) DeselectAll() {
	changed := e.state.SelectedID != ""
	for i := range e.drawings {
		if e.drawings[i].Selected {
			e.drawings[i].Selected = false
			changed = true
		}
	}
	if !changed {
		return
	}
	e.state.SelectedID = ""
	e.emitDrawings()
	e.emitState()
}

// DeleteSelected removes the selected drawing. It returns false when nothing
// is selected.
func (e *Engine) DeleteSelected() bool {
	id := e.state.SelectedID
	if id == "" {
		return false
	}

	kept := e.drawings[:0]
	for _, d := range e.drawings {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	e.drawings = kept
	e.state.SelectedID = ""
	if e.state.HoveredID == id {
		e.state.HoveredID = ""
		e.state.HoveredHandle = HandleNone
	}
	if e.state.IsDragging || e.state.IsResizing {
		e.endPointerGesture()
	}

	e.emitDrawings()
	e.emitState()
	return true
}

// ClearAll removes every drawing
func (e *Engine) ClearAll() {
	e.drawings = []Drawing{}
	e.state.SelectedID = ""
	e.state.HoveredID = ""
	e.state.HoveredHandle = HandleNone
	if e.state.IsDragging || e.state.IsResizing {
		e.endPointerGesture()
	}
	e.emitDrawings()
	e.emitState()
}

// CancelDrawing abandons the gesture in progress and disarms the tool.
// The selection is kept.
func (e *Engine) CancelDrawing() {
	e.SetTool(ToolNone)
}

// HitTolerance returns the hit tolerance in pixels for the current input mode
func (e *Engine) HitTolerance() float64 {
	if e.touch {
		return TouchHitTolerance
	}
	return DefaultHitTolerance
}

// FindDrawingAtPoint returns the ID of the topmost visible drawing within
// tolerance pixels of (x, y), or "". A negative tolerance selects
// HitTolerance. Line distances must be strictly below tolerance, so zero
// leaves only rectangle interiors hittable.
func (e *Engine) FindDrawingAtPoint(x, y, tolerance float64) string {
	if tolerance < 0 {
		tolerance = e.HitTolerance()
	}
	if _, ok := e.bridge.ScreenToChart(x, y); !ok {
		return ""
	}

	for i := len(e.drawings) - 1; i >= 0; i-- {
		d := e.drawings[i]
		if !d.Visible {
			continue
		}
		if hitTest(e.bridge, d, x, y, tolerance) {
			return d.ID
		}
	}
	return ""
}

// FindHandleAtPoint returns the endpoint of the selected drawing under (x, y)
func (e *Engine) FindHandleAtPoint(x, y float64) Handle {
	if e.state.SelectedID == "" {
		return HandleNone
	}
	idx := e.indexOf(e.state.SelectedID)
	if idx < 0 || !e.drawings[idx].Visible {
		return HandleNone
	}

	tolerance := DefaultHandleTolerance
	if e.touch {
		tolerance = TouchHandleTolerance
	}
	return handleAt(e.bridge, e.drawings[idx], x, y, tolerance)
}

// SnapToOHLC replaces the price of p with the open, high, low or close of
// the candle at exactly p.Time whose screen y is nearest to screenY, if that
// distance is under the snap radius. Otherwise p is returned unchanged.
func (e *Engine) SnapToOHLC(p Point, screenY float64) Point {
	if !e.snap.Enabled || !e.snap.SnapToOHLC {
		return p
	}

	var candle *Candle
	for i := range e.candles {
		if e.candles[i].Time == p.Time {
			candle = &e.candles[i]
			break
		}
	}
	if candle == nil {
		return p
	}

	closest := p.Price
	minDist := e.snap.SnapDistance
	for _, price := range []float64{candle.Open, candle.High, candle.Low, candle.Close} {
		y, ok := e.bridge.PriceToY(price)
		if !ok {
			continue
		}
		dist := y - screenY
		if dist < 0 {
			dist = -dist
		}
		if dist < minDist {
			minDist = dist
			closest = price
		}
	}
	return Point{Time: p.Time, Price: closest}
}

func (e *Engine) completeDrawing(end Point) {
	if e.state.StartPoint == nil {
		return
	}
	start := *e.state.StartPoint
	id := e.newID()

	var d Drawing
	switch e.state.Tool {
	case ToolTrendLine:
		d = Drawing{ID: id, Type: KindTrendLine, Start: start, End: end, Color: ColorTrendLine, Visible: true}
	case ToolHLine:
		d = Drawing{ID: id, Type: KindHLine, Price: end.Price, Color: ColorHLine, Visible: true}
	case ToolFib:
		d = Drawing{
			ID: id, Type: KindFib, Start: start, End: end, Color: ColorFib, Visible: true,
			Levels: append([]float64(nil), FibLevels...),
		}
	case ToolRect:
		d = Drawing{ID: id, Type: KindRect, Start: start, End: end, Color: ColorRect, FillColor: ColorRectFill, Visible: true}
	}

	if d.ID != "" {
		e.drawings = append(e.drawings, d)
		e.emitDrawings()
	}

	e.SetTool(ToolNone)
}

func (e *Engine) moveSelected(point Point) {
	idx := e.indexOf(e.state.SelectedID)
	if idx < 0 || e.moveOrigin == nil || e.moveOrigin.ID != e.state.SelectedID {
		return
	}

	// recomputed from the gesture origin so long drags do not accumulate error
	dt := point.Time - e.moveAnchor.Time
	dp := point.Price - e.moveAnchor.Price
	moved := translate(e.moveOrigin.clone(), dt, dp)
	moved.Selected = e.drawings[idx].Selected
	moved.Visible = e.drawings[idx].Visible
	e.drawings[idx] = moved

	e.state.StartPoint = &point
	e.emitDrawings()
}

func (e *Engine) resizeSelected(point Point) {
	idx := e.indexOf(e.state.SelectedID)
	if idx < 0 || !e.drawings[idx].HasEndpoints() {
		return
	}
	switch e.state.ResizingHandle {
	case HandleStart:
		e.drawings[idx].Start = point
	case HandleEnd:
		e.drawings[idx].End = point
	default:
		return
	}
	e.emitDrawings()
}

func (e *Engine) updateHover(x, y float64) {
	handle := HandleNone
	if e.state.SelectedID != "" {
		handle = e.FindHandleAtPoint(x, y)
	}
	hitID := e.FindDrawingAtPoint(x, y, e.HitTolerance())

	if handle == e.state.HoveredHandle && hitID == e.state.HoveredID {
		return
	}
	e.state.HoveredHandle = handle
	e.state.HoveredID = hitID

	if !e.state.Tool.IsShape() {
		switch {
		case handle != HandleNone:
			e.setCursor(CursorCrosshair)
		case hitID != "":
			e.setCursor(CursorGrab)
		default:
			e.setCursor(CursorDefault)
		}
	}
	e.emitState()
}

// resetGesture returns the state to idle without touching tool, selection
// or hover
func (e *Engine) resetGesture() {
	e.state.IsDrawing = false
	e.endPointerGesture()
	e.clearGesturePoints()
	e.state.Mode = ModeIdle
}

func (e *Engine) endPointerGesture() {
	e.state.IsDragging = false
	e.state.IsResizing = false
	e.state.ResizingHandle = HandleNone
	e.state.DragOffset = nil
	e.moveOrigin = nil
	if !e.state.IsDrawing {
		e.state.Mode = ModeIdle
	}
}

func (e *Engine) clearGesturePoints() {
	e.state.IsDrawing = false
	e.state.StartPoint = nil
	e.state.CurrentPoint = nil
	e.state.RawStartScreen = nil
	e.state.RawCurrentScreen = nil
}

func (e *Engine) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range e.drawings {
		if e.drawings[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) setCursor(c Cursor) {
	if c == e.cursor {
		return
	}
	e.cursor = c
	e.listener.OnCursorChange(c)
}

func (e *Engine) emitDrawings() {
	e.listener.OnDrawingsChange(cloneDrawings(e.drawings))
}

func (e *Engine) emitState() {
	e.listener.OnStateChange(e.state.clone())
}
