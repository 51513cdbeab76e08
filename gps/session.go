package gps

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaireichart/track-replay/events"
	"github.com/kaireichart/track-replay/playback"
)

const defaultFrameInterval = 16 * time.Millisecond

// Session is one connected browser player. A single loop goroutine owns the
// controller and is the only writer to the player socket.
type Session struct {
	id        string
	conn      *websocket.Conn
	out       jsonWriter
	ctrl      *playback.Controller
	transport *RemoteTransport
	hub       *Hub
	journal   *events.Journal
	interval  time.Duration
	log       *slog.Logger

	mu   sync.Mutex
	info SessionInfo

	done      chan struct{}
	closeOnce sync.Once
}

func (s *Session) ID() string { return s.id }

// Info returns the latest snapshot of the session state
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *Session) render(f playback.Frame) {
	msg := newPositionMessage(s.id, f)
	if err := s.out.WriteJSON(msg); err != nil {
		s.log.Warn("position_write_failed", "err", err)
	}
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
}

func (s *Session) snapshot() {
	pos := s.ctrl.Position()
	info := SessionInfo{
		ID:      s.id,
		Mode:    s.ctrl.Mode().String(),
		Readout: s.ctrl.Readout(),
		Lat:     pos.Lat,
		Lng:     pos.Lng,
	}
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
}

func (s *Session) record(eventType string) {
	if s.journal == nil {
		return
	}
	s.journal.Record(events.Event{
		Type:      eventType,
		Session:   s.id,
		MediaTime: s.ctrl.State().QueryTime,
	})
}

// run blocks until the socket fails or the session is closed
func (s *Session) run() {
	incoming := make(chan []byte, 64)
	readErr := make(chan error, 1)

	go func() {
		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case incoming <- data:
			case <-s.done:
				return
			}
		}
	}()

	interval := s.interval
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.record(events.TypeSessionOpen)
	defer s.record(events.TypeSessionClose)

	for {
		select {
		case data := <-incoming:
			s.handleMessage(data)
		case <-ticker.C:
			s.ctrl.Handle(playback.FrameTick{})
			s.snapshot()
		case err := <-readErr:
			if errors.Is(err, websocket.ErrReadLimit) || websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("session_read_failed", "err", err)
			}
			return
		case <-s.done:
			return
		}
	}
}

func (s *Session) handleMessage(data []byte) {
	msg, ev, err := decodeMessage(data)
	if err != nil {
		s.log.Error("session_bad_message", "err", err)
		return
	}

	s.transport.observe(msg)
	if msg.Type == "toggle" {
		s.ctrl.TogglePlay()
		return
	}
	s.ctrl.Handle(ev)
	s.snapshot()

	switch msg.Type {
	case "play":
		s.record(events.TypePlay)
	case "pause":
		s.record(events.TypePause)
	case "seekend":
		s.record(events.TypeSeekEnd)
	case "ended":
		s.record(events.TypeEnded)
	case "loadedmetadata":
		s.record(events.TypeSourceLoaded)
	}
}

// Close stops the loop and closes the socket
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
