package playback

import "reelcut/domain/timeline"

// Preview is the transition-preview signal consumed by the presentation
// layer to blend the outgoing and incoming frames: opacity for fades and
// dissolves, positional offset for slides, a growing or shrinking clip
// region for wipes and circles, scale for zoom.
type Preview struct {
	Active   bool
	Progress float64
	Type     timeline.TransitionType
}
