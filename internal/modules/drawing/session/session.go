// Package session hosts drawing engines behind WebSocket connections.
//
// Each connection owns one drawing.Engine. Commands are read and applied on a
// single goroutine, and the notifications they trigger are written back as
// event envelopes before the next command is read.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/contestboard/arena/internal/events"
	"github.com/contestboard/arena/internal/modules/drawing"
)

const (
	writeWait = 10 * time.Second
	readLimit = 1 << 20

	eventModule = "drawing"
)

// Setup is everything a session needs before its first command
type Setup struct {
	ID        string
	Symbol    string
	Timeframe string
	Viewport  drawing.Viewport
	Candles   []drawing.Candle
	NewID     drawing.IDGenerator
}

// Session binds one connection to one engine
type Session struct {
	id     string
	conn   *websocket.Conn
	codec  Codec
	engine *drawing.Engine
	bridge *drawing.LinearBridge
	setup  Setup

	// notifications raised by the command being applied
	pending []*events.EventWithData

	log zerolog.Logger
}

// New creates a session for an accepted connection
func New(conn *websocket.Conn, setup Setup, log zerolog.Logger) (*Session, error) {
	s, err := newSession(setup, CodecFor(conn.Subprotocol()), log)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	conn.SetReadLimit(readLimit)
	return s, nil
}

func newSession(setup Setup, codec Codec, log zerolog.Logger) (*Session, error) {
	bridge, err := drawing.NewLinearBridge(setup.Viewport)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinate bridge: %w", err)
	}
	bridge.SetTimeGrid(timeGrid(setup.Candles))

	s := &Session{
		id:     setup.ID,
		codec:  codec,
		bridge: bridge,
		setup:  setup,
		log: log.With().
			Str("session", setup.ID).
			Str("symbol", setup.Symbol).
			Logger(),
	}

	s.engine = drawing.New(bridge,
		drawing.WithIDGenerator(setup.NewID),
		drawing.WithListener(drawing.Callbacks{
			DrawingsChanged: func(d []drawing.Drawing) {
				s.queue(&events.DrawingsChangedData{Drawings: d})
			},
			StateChanged: func(st drawing.State) {
				s.queue(&events.StateChangedData{State: st})
			},
			CursorChanged: func(c drawing.Cursor) {
				s.queue(&events.CursorChangedData{Cursor: c})
			},
		}),
	)
	s.engine.SetCandleData(setup.Candles)
	return s, nil
}

// Run serves the connection until the client goes away or ctx is cancelled.
// A clean close returns nil.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info().Str("subprotocol", s.conn.Subprotocol()).Msg("Drawing session started")
	defer s.log.Info().Msg("Drawing session ended")

	ready := &events.SessionReadyData{
		SessionID: s.id,
		Symbol:    s.setup.Symbol,
		Timeframe: s.setup.Timeframe,
		Viewport:  s.bridge.Viewport(),
		Candles:   len(s.setup.Candles),
	}
	if err := s.send(ctx, events.New(eventModule, ready)); err != nil {
		return err
	}

	for {
		msgType, data, err := s.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}

		if msgType != s.codec.MessageType() {
			s.log.Debug().Int("type", int(msgType)).Msg("Ignoring frame of unexpected type")
			continue
		}

		var cmd Command
		if err := s.codec.Decode(data, &cmd); err != nil {
			s.queue(&events.ErrorEventData{Error: "malformed command: " + err.Error()})
		} else if err := s.apply(cmd); err != nil {
			s.log.Debug().Err(err).Str("command", string(cmd.Type)).Msg("Command rejected")
			s.queue(&events.ErrorEventData{Command: string(cmd.Type), Error: err.Error()})
		}

		if err := s.flush(ctx); err != nil {
			return err
		}
	}
}

// Engine exposes the session's engine. Callers must not use it while Run is
// active.
func (s *Session) Engine() *drawing.Engine {
	return s.engine
}

func (s *Session) queue(data events.EventData) {
	s.pending = append(s.pending, events.New(eventModule, data))
}

func (s *Session) flush(ctx context.Context) error {
	batch := s.pending
	s.pending = nil
	for _, ev := range batch {
		if err := s.send(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) send(ctx context.Context, ev *events.EventWithData) error {
	data, err := s.codec.Encode(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := s.conn.Write(writeCtx, s.codec.MessageType(), data); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to write %s event: %w", ev.Type, err)
	}
	return nil
}
