package playback

import (
	"log/slog"
	"math"

	"github.com/kaireichart/track-replay/metrics"
	"github.com/kaireichart/track-replay/track"
)

// DefaultCoalesceThreshold is the tick delta, in seconds, below which ticks are
// deferred to the next animation frame
const DefaultCoalesceThreshold = 0.1

// Options tune a Controller
type Options struct {
	// CoalesceThreshold of 0 or less selects DefaultCoalesceThreshold
	CoalesceThreshold float64
	// DisableCoalescing publishes on every tick
	DisableCoalescing bool
	Logger            *slog.Logger
}

// Controller keeps the displayed position in sync with an audio transport.
//
// All input goes through Handle, one event at a time; a Controller is not safe for
// concurrent use. While a scrub gesture is in progress transport ticks never touch
// the query time.
type Controller struct {
	track     *track.Track
	transport Transport
	renderer  Renderer
	threshold float64
	log       *slog.Logger

	state    State
	duration float64

	last      Frame
	published bool // last holds a published frame
	dirty     bool // query time changed since last was published
}

// NewController wires a controller to its track, transport and renderer.
// Any of them may be nil.
func NewController(tr *track.Track, transport Transport, renderer Renderer, opts Options) *Controller {
	if tr == nil {
		tr = track.New(nil)
	}
	if opts.CoalesceThreshold <= 0 {
		opts.CoalesceThreshold = DefaultCoalesceThreshold
	}
	if opts.DisableCoalescing {
		opts.CoalesceThreshold = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		track:     tr,
		transport: transport,
		renderer:  renderer,
		threshold: opts.CoalesceThreshold,
		log:       opts.Logger,
	}
}

// Handle applies one event to the state machine
func (c *Controller) Handle(ev Event) {
	switch e := ev.(type) {
	case TimeChanged:
		c.onTick(e.Time)
	case PlayStateChanged:
		c.state.Playing = e.Playing
	case SeekStarted:
		c.state.Seeking = true
	case SeekMoved:
		c.onSeekMoved(e.Value)
	case SeekReleased:
		c.onSeekReleased()
	case Ended:
		c.state.Playing = false
		c.state.QueryTime = 0
		c.publish()
	case SourceLoaded:
		c.state.QueryTime = 0
		c.duration = e.Duration
		c.publish()
	case FrameTick:
		if c.dirty {
			c.publish()
		}
	}
}

func (c *Controller) onTick(t float64) {
	metrics.TicksTotal.Inc()
	if c.state.Seeking {
		metrics.TicksIgnoredTotal.Inc()
		return
	}

	c.state.QueryTime = t
	if !c.published || math.Abs(t-c.last.QueryTime) >= c.threshold {
		c.publish()
		return
	}
	c.dirty = true
	metrics.TicksCoalescedTotal.Inc()
}

func (c *Controller) onSeekMoved(v float64) {
	c.state.QueryTime = v
	c.publish()

	// Without a gesture (keyboard input) the move is a complete seek on its own
	if !c.state.Seeking && c.transport != nil {
		c.transport.SeekTo(v)
	}
}

func (c *Controller) onSeekReleased() {
	c.state.Seeking = false
	c.log.Debug("seek_released", "time", c.state.QueryTime)
	if c.transport != nil {
		c.transport.SeekTo(c.state.QueryTime)
	}
}

func (c *Controller) publish() {
	q := c.state.QueryTime
	c.last = Frame{
		Position:  c.track.PositionAt(q),
		QueryTime: q,
		CoveredKm: c.track.DistanceCoveredKm(q),
		TotalKm:   c.track.TotalKm(),
	}
	c.published = true
	c.dirty = false

	metrics.FramesPublishedTotal.Inc()
	if c.renderer != nil {
		c.renderer.Render(c.last)
	}
}

// SetTrack replaces the sample sequence and republishes the current time
func (c *Controller) SetTrack(tr *track.Track) {
	if tr == nil {
		tr = track.New(nil)
	}
	c.track = tr
	c.publish()
}

// Track returns the sample sequence in use
func (c *Controller) Track() *track.Track {
	return c.track
}

// State returns a copy of the playback state
func (c *Controller) State() State {
	return c.state
}

// Mode reports Seeking over Playing over Idle
func (c *Controller) Mode() Mode {
	switch {
	case c.state.Seeking:
		return Seeking
	case c.state.Playing:
		return Playing
	default:
		return Idle
	}
}

// LastFrame returns the most recently published frame
func (c *Controller) LastFrame() (Frame, bool) {
	return c.last, c.published
}

// Position returns the position for the current query time
func (c *Controller) Position() track.Position {
	return c.track.PositionAt(c.state.QueryTime)
}

// Readout returns the distance and time values for display
func (c *Controller) Readout() Readout {
	duration := c.duration
	if c.transport != nil {
		if d := c.transport.Duration(); d > 0 {
			duration = d
		}
	}
	return Readout{
		TotalDistanceKm:   c.track.TotalKm(),
		DistanceCoveredKm: c.track.DistanceCoveredKm(c.state.QueryTime),
		CurrentTime:       c.state.QueryTime,
		Duration:          duration,
	}
}

// TogglePlay asks the transport to pause when playing and to play otherwise.
// The playing flag itself only changes when the transport reports it.
func (c *Controller) TogglePlay() {
	if c.transport == nil {
		return
	}
	if c.state.Playing {
		c.transport.Pause()
	} else {
		c.transport.Play()
	}
}
