package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reelcut/domain/media"
)

// ClockElement is a wall-clock simulation of a playback surface. It keeps
// no decoder state: position advances with real time while playing, and
// duration comes from probing the loaded source. Useful for driving the
// synchronization engine headlessly from the CLI.
type ClockElement struct {
	mu        sync.Mutex
	prober    media.Prober
	kind      media.Kind
	now       func() time.Time
	logger    zerolog.Logger
	source    string
	duration  float64
	base      float64
	startedAt time.Time
	playing   bool
	muted     bool
	volume    float64
}

// ClockElementOption is a functional option for configuring ClockElement
type ClockElementOption func(*ClockElement)

// WithClock sets the time source (for testing)
func WithClock(now func() time.Time) ClockElementOption {
	return func(e *ClockElement) {
		e.now = now
	}
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) ClockElementOption {
	return func(e *ClockElement) {
		e.logger = logger
	}
}

// NewClockElement creates a simulated element for the given media kind
func NewClockElement(prober media.Prober, kind media.Kind, opts ...ClockElementOption) *ClockElement {
	e := &ClockElement{
		prober: prober,
		kind:   kind,
		now:    time.Now,
		logger: zerolog.Nop(),
		volume: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSource implements media.Element
func (e *ClockElement) SetSource(sourceRef string) error {
	duration := e.prober.Probe(context.Background(), sourceRef, e.kind)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = sourceRef
	e.duration = duration
	e.base = 0
	e.startedAt = e.now()
	e.logger.Debug().Str("source", sourceRef).Float64("duration", duration).Msg("source loaded")
	return nil
}

// Source implements media.Element
func (e *ClockElement) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Play implements media.Element
func (e *ClockElement) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		return nil
	}
	e.base = e.positionLocked()
	e.startedAt = e.now()
	e.playing = true
	return nil
}

// Pause implements media.Element
func (e *ClockElement) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return nil
	}
	e.base = e.positionLocked()
	e.playing = false
	return nil
}

// Playing implements media.Element
func (e *ClockElement) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Seek implements media.Element
func (e *ClockElement) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}
	e.base = seconds
	e.startedAt = e.now()
	return nil
}

// Position implements media.Element
func (e *ClockElement) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *ClockElement) positionLocked() float64 {
	pos := e.base
	if e.playing {
		pos += e.now().Sub(e.startedAt).Seconds()
	}
	if e.duration > 0 && pos > e.duration {
		pos = e.duration
	}
	return pos
}

// Duration implements media.Element
func (e *ClockElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// SetMuted implements media.Element
func (e *ClockElement) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
}

// Muted reports the current mute state
func (e *ClockElement) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetVolume implements media.Element
func (e *ClockElement) SetVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	e.volume = volume
}

// Volume reports the current volume
func (e *ClockElement) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Close implements media.Element
func (e *ClockElement) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.source = ""
	e.duration = 0
	e.base = 0
	return nil
}

// Ensure ClockElement implements media.Element
var _ media.Element = (*ClockElement)(nil)
