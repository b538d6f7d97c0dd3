package session

import (
	"fmt"
	"math"

	"github.com/contestboard/arena/internal/modules/drawing"
)

// CommandType names a client request
type CommandType string

const (
	CmdPointerDown    CommandType = "pointer_down"
	CmdPointerMove    CommandType = "pointer_move"
	CmdPointerUp      CommandType = "pointer_up"
	CmdSetTool        CommandType = "set_tool"
	CmdSelect         CommandType = "select"
	CmdDeselectAll    CommandType = "deselect_all"
	CmdDeleteSelected CommandType = "delete_selected"
	CmdClearAll       CommandType = "clear_all"
	CmdCancel         CommandType = "cancel"
	CmdSetSnap        CommandType = "set_snap"
	CmdSetTouch       CommandType = "set_touch"
	CmdLoad           CommandType = "load"
	CmdResize         CommandType = "resize"
)

// Command is one client message. Only the fields used by Type are read.
type Command struct {
	Type     CommandType       `json:"type"`
	X        float64           `json:"x,omitempty"`
	Y        float64           `json:"y,omitempty"`
	Tool     drawing.Tool      `json:"tool,omitempty"`
	ID       string            `json:"id,omitempty"`
	Enabled  bool              `json:"enabled,omitempty"`
	Drawings []drawing.Drawing `json:"drawings,omitempty"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
}

// apply runs cmd against the engine. It must only be called from the
// session loop.
func (s *Session) apply(cmd Command) error {
	e := s.engine

	switch cmd.Type {
	case CmdPointerDown:
		e.HandlePointerDown(cmd.X, cmd.Y)
	case CmdPointerMove:
		e.HandlePointerMove(cmd.X, cmd.Y)
	case CmdPointerUp:
		e.HandlePointerUp(cmd.X, cmd.Y)
	case CmdSetTool:
		if !cmd.Tool.Valid() {
			return fmt.Errorf("unknown tool %q", cmd.Tool)
		}
		e.SetTool(cmd.Tool)
	case CmdSelect:
		if !e.SelectDrawing(cmd.ID) {
			return fmt.Errorf("drawing %q not found", cmd.ID)
		}
	case CmdDeselectAll:
		e.DeselectAll()
	case CmdDeleteSelected:
		e.DeleteSelected()
	case CmdClearAll:
		e.ClearAll()
	case CmdCancel:
		e.CancelDrawing()
	case CmdSetSnap:
		e.SetSnapEnabled(cmd.Enabled)
	case CmdSetTouch:
		e.SetTouchMode(cmd.Enabled)
	case CmdLoad:
		for _, d := range cmd.Drawings {
			if err := validateDrawing(d); err != nil {
				return err
			}
		}
		e.SetDrawings(cmd.Drawings)
	case CmdResize:
		vp := s.bridge.Viewport()
		vp.Width, vp.Height = cmd.Width, cmd.Height
		if err := s.bridge.SetViewport(vp); err != nil {
			return fmt.Errorf("invalid viewport: %w", err)
		}
	case "":
		return fmt.Errorf("missing command type")
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}

func validateDrawing(d drawing.Drawing) error {
	var coords []float64
	switch d.Type {
	case drawing.KindHLine:
		coords = []float64{d.Price}
	case drawing.KindTrendLine, drawing.KindFib, drawing.KindRect:
		coords = append([]float64{d.Start.Time, d.Start.Price, d.End.Time, d.End.Price}, d.Levels...)
	default:
		return fmt.Errorf("drawing %q has unknown type %q", d.ID, d.Type)
	}

	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("drawing %q has non-finite geometry", d.ID)
		}
	}
	return nil
}
