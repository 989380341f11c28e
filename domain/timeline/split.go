package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// SplitClip partitions a clip at the source-media timestamp mediaAt into two
// clips sharing the original source and probed duration. The outgoing
// transition moves to the right half; the new internal seam is a hard cut.
// Both halves must keep MinClipSeconds or the clip is left untouched.
func SplitClip(c *Clip, mediaAt float64) (*Clip, *Clip, error) {
	if err := splitBounds(c.TrimStart, c.TrimEnd, mediaAt); err != nil {
		return nil, nil, fmt.Errorf("split at %.3fs: %w", mediaAt, err)
	}

	left := &Clip{
		ID:               uuid.NewString(),
		SourceRef:        c.SourceRef,
		OriginalDuration: c.OriginalDuration,
		TrimStart:        c.TrimStart,
		TrimEnd:          mediaAt,
		Muted:            c.Muted,
	}
	right := &Clip{
		ID:               uuid.NewString(),
		SourceRef:        c.SourceRef,
		OriginalDuration: c.OriginalDuration,
		TrimStart:        mediaAt,
		TrimEnd:          c.TrimEnd,
		Muted:            c.Muted,
		TransitionOut:    c.TransitionOut,
	}
	return left, right, nil
}

// SplitAudioTrack partitions an audio track at the source-media timestamp
// mediaAt. The right half keeps its timeline position: its offset advances by
// the length of the left half.
func SplitAudioTrack(t *AudioTrack, mediaAt float64) (*AudioTrack, *AudioTrack, error) {
	if err := splitBounds(t.TrimStart, t.TrimEnd, mediaAt); err != nil {
		return nil, nil, fmt.Errorf("split at %.3fs: %w", mediaAt, err)
	}

	left := &AudioTrack{
		ID:               uuid.NewString(),
		SourceRef:        t.SourceRef,
		OriginalDuration: t.OriginalDuration,
		TrimStart:        t.TrimStart,
		TrimEnd:          mediaAt,
		Offset:           t.Offset,
		Volume:           t.Volume,
	}
	right := &AudioTrack{
		ID:               uuid.NewString(),
		SourceRef:        t.SourceRef,
		OriginalDuration: t.OriginalDuration,
		TrimStart:        mediaAt,
		TrimEnd:          t.TrimEnd,
		Offset:           t.Offset + (mediaAt - t.TrimStart),
		Volume:           t.Volume,
	}
	return left, right, nil
}
