package media

// Element encapsulates one playback surface (the preview video element, the
// narration audio element, or the hidden transition-preload element). The
// synchronization engine is the only writer; interactions reach an element
// solely through explicit seeks during trim drags.
type Element interface {
	// SetSource loads a new media source, replacing the current one.
	// Position resets to zero.
	SetSource(sourceRef string) error

	// Source returns the currently loaded source reference, or ""
	Source() string

	// Play starts advancing the playback position
	Play() error

	// Pause stops advancing the playback position
	Pause() error

	// Playing reports whether the element is advancing
	Playing() bool

	// Seek moves the playback position to an absolute media-local time
	Seek(seconds float64) error

	// Position returns the current media-local time in seconds
	Position() float64

	// Duration returns the loaded media's length in seconds, or 0 when
	// nothing is loaded
	Duration() float64

	// SetMuted toggles audio output without touching playback state
	SetMuted(muted bool)

	// SetVolume scales audio output, clamped to [0,1]
	SetVolume(volume float64)

	// Close releases the element's resources
	Close() error
}
