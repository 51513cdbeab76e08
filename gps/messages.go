package gps

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/kaireichart/track-replay/playback"
)

// decodeMessage turns a raw client message into a controller event.
// A nil event with a nil error means the message is not a controller event (toggle).
func decodeMessage(data []byte) (ClientMessage, playback.Event, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, nil, fmt.Errorf("invalid message: %w", err)
	}

	for _, v := range []float64{msg.Time, msg.Value, msg.Duration} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return msg, nil, fmt.Errorf("invalid number in %q message", msg.Type)
		}
	}

	switch msg.Type {
	case "timeupdate":
		return msg, playback.TimeChanged{Time: msg.Time}, nil
	case "play":
		return msg, playback.PlayStateChanged{Playing: true}, nil
	case "pause":
		return msg, playback.PlayStateChanged{Playing: false}, nil
	case "ended":
		return msg, playback.Ended{}, nil
	case "loadedmetadata":
		return msg, playback.SourceLoaded{Duration: msg.Duration}, nil
	case "seekstart":
		return msg, playback.SeekStarted{}, nil
	case "seek":
		return msg, playback.SeekMoved{Value: msg.Value}, nil
	case "seekend":
		return msg, playback.SeekReleased{}, nil
	case "toggle":
		return msg, nil, nil
	default:
		return msg, nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}
