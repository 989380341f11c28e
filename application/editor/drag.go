package editor

import (
	"fmt"

	"reelcut/domain/timeline"
)

// Side identifies which trim handle a drag grabs
type Side string

const (
	SideStart Side = "start"
	SideEnd   Side = "end"
)

type dragKind int

const (
	dragClipTrim dragKind = iota
	dragAudioTrim
	dragReorder
	dragScrub
	dragAudioMove
)

// DragSession is one pointer-down-to-pointer-up interaction. It captures the
// grabbed target and its starting values; every Drag call derives a
// candidate from the accumulated pixel delta, clamps it and writes it back.
// Exactly one session is live at a time and it never outlives the gesture.
type DragSession struct {
	editor *Editor
	kind   dragKind

	targetID string
	side     Side

	startValue  float64 // trim bound, offset or playhead at pointer-down
	startValue2 float64 // opposite trim bound, kept for reference
}

// begin installs a session if none is active. Callers hold the lock.
func (e *Editor) begin(s *DragSession) (*DragSession, error) {
	if e.session != nil {
		return nil, ErrSessionActive
	}
	s.editor = e
	e.session = s
	return s, nil
}

// BeginClipTrim starts a trim drag on one handle of a clip
func (e *Editor) BeginClipTrim(clipID string, side Side) (*DragSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.ClipIndex(clipID)
	if i < 0 {
		return nil, fmt.Errorf("%w: clip %s", timeline.ErrNotFound, clipID)
	}
	c := e.state.Clips[i]
	s := &DragSession{kind: dragClipTrim, targetID: clipID, side: side}
	if side == SideStart {
		s.startValue, s.startValue2 = c.TrimStart, c.TrimEnd
	} else {
		s.startValue, s.startValue2 = c.TrimEnd, c.TrimStart
	}
	return e.begin(s)
}

// BeginAudioTrim starts a trim drag on one handle of an audio track
func (e *Editor) BeginAudioTrim(trackID string, side Side) (*DragSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.AudioIndex(trackID)
	if i < 0 {
		return nil, fmt.Errorf("%w: audio track %s", timeline.ErrNotFound, trackID)
	}
	t := e.state.AudioTracks[i]
	s := &DragSession{kind: dragAudioTrim, targetID: trackID, side: side}
	if side == SideStart {
		s.startValue, s.startValue2 = t.TrimStart, t.TrimEnd
	} else {
		s.startValue, s.startValue2 = t.TrimEnd, t.TrimStart
	}
	return e.begin(s)
}

// BeginReorder starts a clip drag-and-drop
func (e *Editor) BeginReorder(clipID string) (*DragSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.ClipIndex(clipID) < 0 {
		return nil, fmt.Errorf("%w: clip %s", timeline.ErrNotFound, clipID)
	}
	return e.begin(&DragSession{kind: dragReorder, targetID: clipID})
}

// BeginScrub starts a playhead drag
func (e *Editor) BeginScrub() (*DragSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.begin(&DragSession{kind: dragScrub, startValue: e.state.CurrentTime})
}

// BeginAudioMove starts an audio reposition drag
func (e *Editor) BeginAudioMove(trackID string) (*DragSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.AudioIndex(trackID)
	if i < 0 {
		return nil, fmt.Errorf("%w: audio track %s", timeline.ErrNotFound, trackID)
	}
	return e.begin(&DragSession{kind: dragAudioMove, targetID: trackID, startValue: e.state.AudioTracks[i].Offset})
}

// Drag applies the accumulated pointer delta in pixels since pointer-down.
// The candidate value is clamped to the entity's invariants before being
// written back; the applied value is returned.
func (s *DragSession) Drag(pixelDelta float64) float64 {
	e := s.editor
	e.mu.Lock()

	delta := pixelDelta / e.pixelsPerSecond
	candidate := s.startValue + delta
	var applied float64

	switch s.kind {
	case dragClipTrim:
		applied = s.dragClipTrimLocked(candidate)
	case dragAudioTrim:
		applied = s.dragAudioTrimLocked(candidate)
	case dragScrub:
		e.mu.Unlock()
		return e.Scrub(candidate)
	case dragAudioMove:
		applied = s.dragAudioMoveLocked(candidate)
	case dragReorder:
		// Reorder reacts to drag-over targets, not pixel deltas.
		applied = 0
	}

	e.changed()
	e.mu.Unlock()
	return applied
}

func (s *DragSession) dragClipTrimLocked(candidate float64) float64 {
	e := s.editor
	i := e.state.ClipIndex(s.targetID)
	if i < 0 {
		return 0
	}
	c := e.state.Clips[i]

	var applied float64
	if s.side == SideStart {
		applied = timeline.ClampTrimStart(c, candidate)
	} else {
		applied = timeline.ClampTrimEnd(c, candidate)
	}
	e.clampPlayhead()

	// Live-seek the preview to the edited boundary for visual feedback.
	if e.preview != nil && e.preview.Source() == c.SourceRef {
		if err := e.preview.Seek(applied); err != nil {
			e.logger.Warn().Err(err).Str("clip", c.ID).Msg("trim preview seek failed")
		}
	}
	return applied
}

func (s *DragSession) dragAudioTrimLocked(candidate float64) float64 {
	e := s.editor
	i := e.state.AudioIndex(s.targetID)
	if i < 0 {
		return 0
	}
	t := e.state.AudioTracks[i]

	var applied float64
	if s.side == SideStart {
		applied = timeline.ClampTrimStart(t, candidate)
	} else {
		applied = timeline.ClampTrimEnd(t, candidate)
	}
	e.clampPlayhead()
	return applied
}

func (s *DragSession) dragAudioMoveLocked(candidate float64) float64 {
	e := s.editor
	i := e.state.AudioIndex(s.targetID)
	if i < 0 {
		return 0
	}
	if candidate < 0 {
		candidate = 0
	}
	e.state.AudioTracks[i].Offset = candidate
	e.clampPlayhead()
	return candidate
}

// DragOver splices the dragged clip to the hovered clip's index. Only
// meaningful for reorder sessions.
func (s *DragSession) DragOver(targetClipID string) error {
	if s.kind != dragReorder {
		return fmt.Errorf("drag-over only applies to reorder sessions")
	}
	e := s.editor
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.state.ClipIndex(s.targetID)
	to := e.state.ClipIndex(targetClipID)
	if from < 0 || to < 0 {
		return fmt.Errorf("%w: clip", timeline.ErrNotFound)
	}
	if from == to {
		return nil
	}

	// Splice the dragged clip to the hovered clip's index.
	c := e.state.Clips[from]
	clips := make([]*timeline.Clip, 0, len(e.state.Clips))
	clips = append(clips, e.state.Clips[:from]...)
	clips = append(clips, e.state.Clips[from+1:]...)
	clips = append(clips[:to], append([]*timeline.Clip{c}, clips[to:]...)...)
	e.state.Clips = clips
	e.changed()
	return nil
}

// End discards the session. The last applied values stay in the state.
func (s *DragSession) End() {
	e := s.editor
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == s {
		e.session = nil
	}
}
