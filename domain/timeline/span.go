package timeline

// Pure derivations over the timeline. Nothing here is cached: callers
// recompute after every mutation, and recomputing on unchanged input always
// yields the same result.

// SeamOverlap returns the effective transition overlap at the seam between
// clips[i] and clips[i+1]. A configured transition longer than either
// adjoining trimmed clip is shrunk to fit, so re-trimming a clip below its
// transition length never produces a negative span.
func SeamOverlap(clips []*Clip, i int) float64 {
	if i < 0 || i >= len(clips)-1 {
		return 0
	}
	overlap := clips[i].TransitionOut.Overlap()
	if overlap == 0 {
		return 0
	}
	if d := clips[i].Seconds(); d < overlap {
		overlap = d
	}
	if d := clips[i+1].Seconds(); d < overlap {
		overlap = d
	}
	return overlap
}

// VideoSpan returns the total video length: the sum of trimmed clip
// durations minus the transition overlaps between adjacent clips.
func VideoSpan(clips []*Clip) float64 {
	var span float64
	for _, c := range clips {
		span += c.Seconds()
	}
	for i := 0; i < len(clips)-1; i++ {
		span -= SeamOverlap(clips, i)
	}
	return span
}

// AudioSpan returns the furthest timeline position any audio track reaches
func AudioSpan(tracks []*AudioTrack) float64 {
	var span float64
	for _, t := range tracks {
		if end := t.End(); end > span {
			span = end
		}
	}
	return span
}

// TotalDuration returns the composition length: the longer of the video and
// audio spans.
func TotalDuration(clips []*Clip, tracks []*AudioTrack) float64 {
	video := VideoSpan(clips)
	audio := AudioSpan(tracks)
	if audio > video {
		return audio
	}
	return video
}

// ClipOffset returns the global timeline position where clips[i] starts:
// the overlap-adjusted cumulative span of the clips before it.
func ClipOffset(clips []*Clip, i int) float64 {
	var offset float64
	for j := 0; j < i && j < len(clips); j++ {
		offset += clips[j].Seconds() - SeamOverlap(clips, j)
	}
	return offset
}

// ClipAt resolves the index of the clip whose half-open timeline interval
// [offset, offset+duration) contains at. Returns -1 when no clip does.
func ClipAt(clips []*Clip, at float64) int {
	for i := range clips {
		offset := ClipOffset(clips, i)
		if at >= offset && at < offset+clips[i].Seconds() {
			return i
		}
	}
	return -1
}

// AudioAt resolves the index of the first audio track sounding at the
// timeline position. Returns -1 when none does.
func AudioAt(tracks []*AudioTrack, at float64) int {
	for i, t := range tracks {
		if t.Contains(at) {
			return i
		}
	}
	return -1
}
