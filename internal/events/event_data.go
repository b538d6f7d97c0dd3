// Package events defines the typed envelopes streamed to drawing session clients.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/contestboard/arena/internal/modules/drawing"
)

// EventType identifies the payload carried by an EventWithData
type EventType string

const (
	SessionReady    EventType = "ready"
	DrawingsChanged EventType = "drawings_changed"
	StateChanged    EventType = "state_changed"
	CursorChanged   EventType = "cursor_changed"
	ErrorOccurred   EventType = "error"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SessionReadyData is sent once after the connection is set up
type SessionReadyData struct {
	SessionID string           `json:"session_id"`
	Symbol    string           `json:"symbol"`
	Timeframe string           `json:"timeframe"`
	Viewport  drawing.Viewport `json:"viewport"`
	Candles   int              `json:"candles"`
}

// EventType returns the event type for SessionReadyData
func (d *SessionReadyData) EventType() EventType {
	return SessionReady
}

// DrawingsChangedData carries the full drawing list in z-order
type DrawingsChangedData struct {
	Drawings []drawing.Drawing `json:"drawings"`
}

// EventType returns the event type for DrawingsChangedData
func (d *DrawingsChangedData) EventType() EventType {
	return DrawingsChanged
}

// StateChangedData carries the interaction state
type StateChangedData struct {
	State drawing.State `json:"state"`
}

// EventType returns the event type for StateChangedData
func (d *StateChangedData) EventType() EventType {
	return StateChanged
}

// CursorChangedData carries the suggested pointer cursor
type CursorChangedData struct {
	Cursor drawing.Cursor `json:"cursor"`
}

// EventType returns the event type for CursorChangedData
func (d *CursorChangedData) EventType() EventType {
	return CursorChanged
}

// ErrorEventData reports a rejected command. The session stays open.
type ErrorEventData struct {
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// EventWithData represents an event with typed data
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// New wraps data in an envelope stamped with the current time
func New(module string, data EventData) *EventWithData {
	return &EventWithData{
		Type:      data.EventType(),
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	}
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 {
		return nil
	}

	eventData, err := newEventData(aux.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

// newEventData returns an empty payload for the given type
func newEventData(t EventType) (EventData, error) {
	switch t {
	case SessionReady:
		return &SessionReadyData{}, nil
	case DrawingsChanged:
		return &DrawingsChangedData{}, nil
	case StateChanged:
		return &StateChangedData{}, nil
	case CursorChanged:
		return &CursorChangedData{}, nil
	case ErrorOccurred:
		return &ErrorEventData{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}
