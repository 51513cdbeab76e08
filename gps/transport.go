package gps

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

type jsonWriter interface {
	WriteJSON(v any) error
}

// deadlineConn bounds every write to a player socket by writeWait
type deadlineConn struct {
	*websocket.Conn
}

func (c deadlineConn) WriteJSON(v any) error {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(v)
}

// RemoteTransport drives the browser's audio element over the session socket.
// It mirrors currentTime and duration from incoming client messages and is only
// used from the session loop, which is the socket's sole writer.
type RemoteTransport struct {
	conn     jsonWriter
	log      *slog.Logger
	current  float64
	duration float64
}

func newRemoteTransport(conn jsonWriter, log *slog.Logger) *RemoteTransport {
	return &RemoteTransport{conn: conn, log: log}
}

// observe updates the mirrored clock from a client message
func (t *RemoteTransport) observe(msg ClientMessage) {
	switch msg.Type {
	case "timeupdate":
		t.current = msg.Time
	case "loadedmetadata":
		t.duration = msg.Duration
		t.current = 0
	case "ended":
		t.current = 0
	}
}

func (t *RemoteTransport) CurrentTime() float64 { return t.current }
func (t *RemoteTransport) Duration() float64    { return t.duration }

func (t *RemoteTransport) Play()  { t.send(Command{Type: "play"}) }
func (t *RemoteTransport) Pause() { t.send(Command{Type: "pause"}) }

func (t *RemoteTransport) SeekTo(seconds float64) {
	t.current = seconds
	t.send(Command{Type: "seek", Time: seconds})
}

func (t *RemoteTransport) send(cmd Command) {
	if err := t.conn.WriteJSON(cmd); err != nil {
		t.log.Error("transport_command_failed", "command", cmd.Type, "err", err)
	}
}
