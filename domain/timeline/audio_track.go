package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// AudioTrack represents a trimmed, positioned, volume-scaled reference to an
// audio source. Offset places the trimmed range on the global timeline.
type AudioTrack struct {
	ID               string  `json:"id"`
	SourceRef        string  `json:"sourceRef"`
	OriginalDuration float64 `json:"originalDuration"`
	TrimStart        float64 `json:"trimStart"`
	TrimEnd          float64 `json:"trimEnd"`
	Offset           float64 `json:"offset"`
	Volume           float64 `json:"volume"`
}

// NewAudioTrack creates an audio track covering the full probed duration,
// placed at the start of the timeline at full volume
func NewAudioTrack(sourceRef string, originalDuration float64) (*AudioTrack, error) {
	if sourceRef == "" {
		return nil, fmt.Errorf("source reference is required")
	}
	if originalDuration < MinClipSeconds {
		return nil, fmt.Errorf("%w: source is %.2fs, need at least %.2fs", ErrBelowMinDuration, originalDuration, MinClipSeconds)
	}

	return &AudioTrack{
		ID:               uuid.NewString(),
		SourceRef:        sourceRef,
		OriginalDuration: originalDuration,
		TrimStart:        0,
		TrimEnd:          originalDuration,
		Offset:           0,
		Volume:           1,
	}, nil
}

// Seconds returns the trimmed playable duration of the track
func (t *AudioTrack) Seconds() float64 {
	return t.TrimEnd - t.TrimStart
}

// End returns the timeline position where the track stops sounding
func (t *AudioTrack) End() float64 {
	return t.Offset + t.Seconds()
}

// Contains reports whether the timeline position falls inside the track's span
func (t *AudioTrack) Contains(at float64) bool {
	return at >= t.Offset && at < t.End()
}

// Validate checks the trim, offset and volume invariants
func (t *AudioTrack) Validate() error {
	if err := validateTrim(t.TrimStart, t.TrimEnd, t.OriginalDuration); err != nil {
		return err
	}
	if t.Offset < 0 {
		return fmt.Errorf("offset %.3f is negative", t.Offset)
	}
	if t.Volume < 0 || t.Volume > 1 {
		return fmt.Errorf("volume %.3f is outside [0,1]", t.Volume)
	}
	return nil
}
