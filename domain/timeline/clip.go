package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// MinClipSeconds is the shortest trimmed range any timeline entity may carry.
// Trim, split and restore operations all enforce it.
const MinClipSeconds = 0.5

// Clip represents a trimmed reference to a video source placed on the timeline.
// The ID is stable across reorders; trim bounds select the played sub-range of
// the source media.
type Clip struct {
	ID               string          `json:"id"`
	SourceRef        string          `json:"sourceRef"`
	OriginalDuration float64         `json:"originalDuration"`
	TrimStart        float64         `json:"trimStart"`
	TrimEnd          float64         `json:"trimEnd"`
	Muted            bool            `json:"muted"`
	TransitionOut    *TransitionSpec `json:"transitionOut,omitempty"`
}

// NewClip creates a clip covering the full probed duration of the source
func NewClip(sourceRef string, originalDuration float64) (*Clip, error) {
	if sourceRef == "" {
		return nil, fmt.Errorf("source reference is required")
	}
	if originalDuration < MinClipSeconds {
		return nil, fmt.Errorf("%w: source is %.2fs, need at least %.2fs", ErrBelowMinDuration, originalDuration, MinClipSeconds)
	}

	return &Clip{
		ID:               uuid.NewString(),
		SourceRef:        sourceRef,
		OriginalDuration: originalDuration,
		TrimStart:        0,
		TrimEnd:          originalDuration,
	}, nil
}

// Seconds returns the trimmed playable duration of the clip
func (c *Clip) Seconds() float64 {
	return c.TrimEnd - c.TrimStart
}

// Validate checks the trim invariants against the source duration
func (c *Clip) Validate() error {
	return validateTrim(c.TrimStart, c.TrimEnd, c.OriginalDuration)
}

// validateTrim holds the trim invariant shared by clips and audio tracks:
// 0 <= start < end <= original and end-start >= MinClipSeconds.
func validateTrim(start, end, original float64) error {
	if start < 0 {
		return fmt.Errorf("trim start %.3f is negative", start)
	}
	if end > original {
		return fmt.Errorf("trim end %.3f exceeds source duration %.3f", end, original)
	}
	if end-start < MinClipSeconds {
		return fmt.Errorf("%w: trimmed range is %.3fs, need at least %.2fs", ErrBelowMinDuration, end-start, MinClipSeconds)
	}
	return nil
}
