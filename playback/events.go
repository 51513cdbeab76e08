package playback

// Event is the closed set of inputs the controller reacts to. Transport events,
// user scrub gestures and frame callbacks all arrive as Events.
type Event interface {
	event()
}

// TimeChanged is a clock tick from the transport
type TimeChanged struct {
	Time float64
}

// PlayStateChanged mirrors the transport's play/pause state
type PlayStateChanged struct {
	Playing bool
}

// Ended is emitted when the transport reaches the end of the media
type Ended struct{}

// SeekStarted is a pointer-down on the scrub control
type SeekStarted struct{}

// SeekMoved carries the scrub control's new value in seconds
type SeekMoved struct {
	Value float64
}

// SeekReleased ends a scrub gesture
type SeekReleased struct{}

// SourceLoaded is emitted when a new audio source has been loaded
type SourceLoaded struct {
	Duration float64
}

// FrameTick is the animation frame callback used to flush coalesced ticks
type FrameTick struct{}

func (TimeChanged) event()      {}
func (PlayStateChanged) event() {}
func (Ended) event()            {}
func (SeekStarted) event()      {}
func (SeekMoved) event()        {}
func (SeekReleased) event()     {}
func (SourceLoaded) event()     {}
func (FrameTick) event()        {}
