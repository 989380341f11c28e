package timeline

// Trimmable is the shared surface of clips and audio tracks: anything with a
// trimmed sub-range of a fixed-length source. Trim clamping and split math
// operate on this interface so the clip/audio branching lives in one place.
type Trimmable interface {
	TrimBounds() (start, end float64)
	SetTrimBounds(start, end float64)
	SourceDuration() float64
}

// TrimBounds implements Trimmable
func (c *Clip) TrimBounds() (float64, float64) { return c.TrimStart, c.TrimEnd }

// SetTrimBounds implements Trimmable
func (c *Clip) SetTrimBounds(start, end float64) {
	c.TrimStart = start
	c.TrimEnd = end
}

// SourceDuration implements Trimmable
func (c *Clip) SourceDuration() float64 { return c.OriginalDuration }

// TrimBounds implements Trimmable
func (t *AudioTrack) TrimBounds() (float64, float64) { return t.TrimStart, t.TrimEnd }

// SetTrimBounds implements Trimmable
func (t *AudioTrack) SetTrimBounds(start, end float64) {
	t.TrimStart = start
	t.TrimEnd = end
}

// SourceDuration implements Trimmable
func (t *AudioTrack) SourceDuration() float64 { return t.OriginalDuration }

// ClampTrimStart moves the start bound toward candidate, keeping it inside
// [0, end-MinClipSeconds]. Returns the bound actually applied.
func ClampTrimStart(t Trimmable, candidate float64) float64 {
	_, end := t.TrimBounds()
	start := clamp(candidate, 0, end-MinClipSeconds)
	t.SetTrimBounds(start, end)
	return start
}

// ClampTrimEnd moves the end bound toward candidate, keeping it inside
// [start+MinClipSeconds, source duration]. Returns the bound actually applied.
func ClampTrimEnd(t Trimmable, candidate float64) float64 {
	start, _ := t.TrimBounds()
	end := clamp(candidate, start+MinClipSeconds, t.SourceDuration())
	t.SetTrimBounds(start, end)
	return end
}

// splitBounds partitions a trimmed range at the source-media timestamp
// mediaAt. Both halves must keep MinClipSeconds.
func splitBounds(start, end, mediaAt float64) error {
	if mediaAt-start < MinClipSeconds || end-mediaAt < MinClipSeconds {
		return ErrBelowMinDuration
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	_ Trimmable = (*Clip)(nil)
	_ Trimmable = (*AudioTrack)(nil)
)
