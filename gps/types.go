package gps

import (
	"errors"

	"github.com/kaireichart/track-replay/playback"
)

// ErrUnknownMessage is returned for client messages with an unrecognised type
var ErrUnknownMessage = errors.New("unknown message type")

// ClientMessage is a transport event sent by the browser player
type ClientMessage struct {
	Type     string  `json:"type"`               // timeupdate, play, pause, ended, loadedmetadata, seekstart, seek, seekend, toggle
	Time     float64 `json:"time,omitempty"`     // audio currentTime
	Value    float64 `json:"value,omitempty"`    // scrubber value for seek
	Duration float64 `json:"duration,omitempty"` // audio duration for loadedmetadata
}

// PositionMessage is a published frame as sent to players and viewers
type PositionMessage struct {
	Type      string  `json:"type"` // always "position"
	Session   string  `json:"session"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Time      float64 `json:"time"`
	CoveredKm float64 `json:"covered_km"`
	TotalKm   float64 `json:"total_km"`
}

// Command asks the browser player to act on its audio element
type Command struct {
	Type string  `json:"type"` // seek, play or pause
	Time float64 `json:"time,omitempty"`
}

// SessionInfo summarises an open player session
type SessionInfo struct {
	ID      string           `json:"id"`
	Mode    string           `json:"mode"`
	Readout playback.Readout `json:"readout"`
	Lat     float64          `json:"lat"`
	Lng     float64          `json:"lng"`
}

func newPositionMessage(session string, f playback.Frame) PositionMessage {
	return PositionMessage{
		Type:      "position",
		Session:   session,
		Lat:       f.Position.Lat,
		Lng:       f.Position.Lng,
		Time:      f.QueryTime,
		CoveredKm: f.CoveredKm,
		TotalKm:   f.TotalKm,
	}
}
