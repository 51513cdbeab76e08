package gps

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kaireichart/track-replay/events"
	"github.com/kaireichart/track-replay/metrics"
	"github.com/kaireichart/track-replay/playback"
	"github.com/kaireichart/track-replay/track"
)

// Options configure a Server
type Options struct {
	CoalesceThreshold float64 // 0 selects the playback default
	DisableCoalescing bool
	FrameInterval     time.Duration
	Journal           *events.Journal // optional
	Logger            *slog.Logger
}

// Server owns the shared track, the viewer hub and the open player sessions
type Server struct {
	track    *track.Track
	hub      *Hub
	opts     Options
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

func NewServer(tr *track.Track, opts Options) *Server {
	if tr == nil {
		tr = track.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		track: tr,
		hub:   NewHub(opts.Logger),
		opts:  opts,
		log:   opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}
}

func (s *Server) Track() *track.Track { return s.track }
func (s *Server) Hub() *Hub           { return s.hub }

// serveSession runs a player session on conn until it ends
func (s *Server) serveSession(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessage)
	id := uuid.NewString()
	log := s.log.With("session", id)

	sess := &Session{
		id:       id,
		conn:     conn,
		out:      deadlineConn{conn},
		hub:      s.hub,
		journal:  s.opts.Journal,
		interval: s.opts.FrameInterval,
		log:      log,
		done:     make(chan struct{}),
	}
	sess.transport = newRemoteTransport(sess.out, log)
	sess.ctrl = playback.NewController(nil, sess.transport, playback.RendererFunc(sess.render), playback.Options{
		CoalesceThreshold: s.opts.CoalesceThreshold,
		DisableCoalescing: s.opts.DisableCoalescing,
		Logger:            log,
	})

	s.mu.Lock()
	s.sessions[id] = sess
	s.wg.Add(1)
	s.mu.Unlock()
	metrics.SessionsActive.Inc()
	log.Info("session_open", "remote", conn.RemoteAddr().String())

	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.Close()
		metrics.SessionsActive.Dec()
		log.Info("session_close")
		s.wg.Done()
	}()

	// Loading the track publishes the start position
	sess.ctrl.SetTrack(s.track)
	sess.snapshot()
	sess.run()
}

// Session returns the snapshot of an open session
func (s *Server) Session(id string) (SessionInfo, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return SessionInfo{}, false
	}
	return sess.Info(), true
}

// Sessions lists snapshots of every open session ordered by id
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.Unlock()

	out := make([]SessionInfo, 0, len(list))
	for _, sess := range list {
		out = append(out, sess.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close ends every session, disconnects viewers and waits for the session loops
func (s *Server) Close() {
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.mu.Unlock()
	s.hub.Close()
	s.wg.Wait()
}
