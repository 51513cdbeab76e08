package playback

import "github.com/kaireichart/track-replay/track"

// Transport is the audio transport the controller drives and reads from
type Transport interface {
	CurrentTime() float64
	Duration() float64
	Play()
	Pause()
	SeekTo(seconds float64)
}

// Renderer receives every published frame. Render must not block.
type Renderer interface {
	Render(frame Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(Frame)

// Render calls f(frame)
func (f RendererFunc) Render(frame Frame) { f(frame) }

// Frame is what the controller publishes to the map and the distance readouts
type Frame struct {
	Position  track.Position `json:"position"`
	QueryTime float64        `json:"time"`
	CoveredKm float64        `json:"covered_km"`
	TotalKm   float64        `json:"total_km"`
}

// State is the mutable playback state owned by a Controller
type State struct {
	QueryTime float64 `json:"query_time"`
	Seeking   bool    `json:"seeking"`
	Playing   bool    `json:"playing"`
}

// Mode is the write-gating view of State
type Mode int

const (
	Idle Mode = iota
	Playing
	Seeking
)

func (m Mode) String() string {
	switch m {
	case Playing:
		return "playing"
	case Seeking:
		return "seeking"
	default:
		return "idle"
	}
}

// Readout holds the plain numbers shown next to the map
type Readout struct {
	TotalDistanceKm   float64 `json:"total_distance_km"`
	DistanceCoveredKm float64 `json:"distance_covered_km"`
	CurrentTime       float64 `json:"current_time"`
	Duration          float64 `json:"duration"`
}
