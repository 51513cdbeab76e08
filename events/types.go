package events

import "time"

// Event types journaled by player sessions
const (
	TypeSessionOpen  = "session_open"
	TypeSessionClose = "session_close"
	TypeSourceLoaded = "source_loaded"
	TypePlay         = "play"
	TypePause        = "pause"
	TypeSeekEnd      = "seek_end"
	TypeEnded        = "ended"
)

type Event struct {
	Type      string    `json:"type"`       // one of the Type constants
	Session   string    `json:"session"`    // player session id
	MediaTime float64   `json:"media_time"` // audio position in seconds when the event happened
	Timestamp time.Time `json:"timestamp"`  // when the event occurred
}
