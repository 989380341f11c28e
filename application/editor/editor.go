package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"reelcut/domain/media"
	"reelcut/domain/timeline"
)

// DefaultPixelsPerSecond is the timeline ruler scale used to convert drag
// pixel deltas into seconds.
const DefaultPixelsPerSecond = 50.0

// ErrSessionActive is returned when a drag begins while another is live
var ErrSessionActive = errors.New("another drag session is active")

// Editor is the interaction engine: it owns the editing session state and is
// the only component that mutates it. Mutations are applied synchronously
// under the session lock, so the playback loop sees them on its next frame.
type Editor struct {
	mu    sync.Mutex
	state *timeline.State

	prober  media.Prober
	preview media.Element // video element, seeked for trim-drag feedback

	pixelsPerSecond float64
	session         *DragSession

	onChange func()           // draft saver hook, fired after each mutation
	onSeek   func(to float64) // playback engine hook, fired after scrubs

	logger zerolog.Logger
}

// Option is a functional option for configuring the Editor
type Option func(*Editor)

// WithPixelsPerSecond overrides the ruler scale
func WithPixelsPerSecond(pps float64) Option {
	return func(e *Editor) {
		if pps > 0 {
			e.pixelsPerSecond = pps
		}
	}
}

// WithPreviewElement attaches the video element used for trim-drag seeks
func WithPreviewElement(el media.Element) Option {
	return func(e *Editor) {
		e.preview = el
	}
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New creates an editor over an empty session state
func New(prober media.Prober, opts ...Option) *Editor {
	e := &Editor{
		state:           timeline.NewState(),
		prober:          prober,
		pixelsPerSecond: DefaultPixelsPerSecond,
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Adopt replaces the session state, used when restoring a draft
func (e *Editor) Adopt(s *timeline.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// Update runs fn with exclusive access to the session state. The playback
// engine drives its per-frame reads and writes through this.
func (e *Editor) Update(fn func(*timeline.State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}

// SetOnChange registers the hook fired after every successful mutation
func (e *Editor) SetOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// SetOnSeek registers the hook fired after the playhead is relocated
func (e *Editor) SetOnSeek(fn func(to float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSeek = fn
}

// changed fires the mutation hook. Callers hold the lock.
func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// AddClip probes the source and appends a clip covering its full duration.
// The new clip becomes the selection.
func (e *Editor) AddClip(ctx context.Context, sourceRef string) (*timeline.Clip, error) {
	duration := e.prober.Probe(ctx, sourceRef, media.KindVideo)

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := timeline.NewClip(sourceRef, duration)
	if err != nil {
		return nil, err
	}
	e.state.Clips = append(e.state.Clips, c)
	e.state.SelectClip(c.ID)
	e.changed()
	return c, nil
}

// AddAudioTrack probes the source and appends an audio track at offset zero
func (e *Editor) AddAudioTrack(ctx context.Context, sourceRef string) (*timeline.AudioTrack, error) {
	duration := e.prober.Probe(ctx, sourceRef, media.KindAudio)

	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := timeline.NewAudioTrack(sourceRef, duration)
	if err != nil {
		return nil, err
	}
	e.state.AudioTracks = append(e.state.AudioTracks, t)
	e.state.SelectAudio(t.ID)
	e.changed()
	return t, nil
}

// SelectClip selects a clip, clearing any audio selection
func (e *Editor) SelectClip(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.ClipIndex(id) < 0 {
		return fmt.Errorf("%w: clip %s", timeline.ErrNotFound, id)
	}
	e.state.SelectClip(id)
	e.changed()
	return nil
}

// SelectAudio selects an audio track, clearing any clip selection
func (e *Editor) SelectAudio(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.AudioIndex(id) < 0 {
		return fmt.Errorf("%w: audio track %s", timeline.ErrNotFound, id)
	}
	e.state.SelectAudio(id)
	e.changed()
	return nil
}

// DeleteClip removes a clip. The last remaining clip cannot be removed when
// no audio is left either; a selected clip's selection is cleared.
func (e *Editor) DeleteClip(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.ClipIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: clip %s", timeline.ErrNotFound, id)
	}
	if len(e.state.Clips) == 1 && len(e.state.AudioTracks) == 0 {
		return timeline.ErrLastClip
	}

	e.state.Clips = append(e.state.Clips[:i], e.state.Clips[i+1:]...)
	if e.state.SelectedClipID == id {
		e.state.ClearSelection()
	}
	e.clampPlayhead()
	e.changed()
	return nil
}

// DeleteAudio removes an audio track
func (e *Editor) DeleteAudio(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.AudioIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: audio track %s", timeline.ErrNotFound, id)
	}

	e.state.AudioTracks = append(e.state.AudioTracks[:i], e.state.AudioTracks[i+1:]...)
	if e.state.SelectedAudioID == id {
		e.state.ClearSelection()
	}
	e.clampPlayhead()
	e.changed()
	return nil
}

// ToggleMute flips a clip's mute flag. Audio tracks are unaffected.
func (e *Editor) ToggleMute(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.state.ClipIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: clip %s", timeline.ErrNotFound, id)
	}
	e.state.Clips[i].Muted = !e.state.Clips[i].Muted
	e.changed()
	return nil
}

// SetTransition assigns the transition at the seam between clips[seam] and
// clips[seam+1]
func (e *Editor) SetTransition(seam int, typ timeline.TransitionType, duration float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seam < 0 || seam >= len(e.state.Clips)-1 {
		return fmt.Errorf("%w: seam %d", timeline.ErrNotFound, seam)
	}
	spec, err := timeline.NewTransitionSpec(typ, duration)
	if err != nil {
		return err
	}
	e.state.Clips[seam].TransitionOut = spec
	e.clampPlayhead()
	e.changed()
	return nil
}

// ClearTransition removes the transition at a seam, restoring a hard cut
func (e *Editor) ClearTransition(seam int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seam < 0 || seam >= len(e.state.Clips)-1 {
		return fmt.Errorf("%w: seam %d", timeline.ErrNotFound, seam)
	}
	e.state.Clips[seam].TransitionOut = nil
	e.clampPlayhead()
	e.changed()
	return nil
}

// Scrub relocates the playhead, clamped to the composition bounds, and
// notifies the playback engine so the media elements reseek immediately.
func (e *Editor) Scrub(to float64) float64 {
	e.mu.Lock()

	total := e.state.TotalDuration()
	if to < 0 {
		to = 0
	}
	if to > total {
		to = total
	}
	e.state.CurrentTime = to
	onSeek := e.onSeek
	e.changed()
	e.mu.Unlock()

	if onSeek != nil {
		onSeek(to)
	}
	return to
}

// SplitAtPlayhead splits the entity under the playhead: the selected audio
// track when one is selected, otherwise the clip whose span contains the
// playhead. Both halves must keep the minimum duration or the state is left
// unchanged.
func (e *Editor) SplitAtPlayhead() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := e.state.CurrentTime

	if id := e.state.SelectedAudioID; id != "" {
		i := e.state.AudioIndex(id)
		if i < 0 || !e.state.AudioTracks[i].Contains(at) {
			return fmt.Errorf("%w at %s", timeline.ErrNoMediaAtTime, timeline.FormatTimecode(at))
		}
		track := e.state.AudioTracks[i]
		mediaAt := track.TrimStart + (at - track.Offset)
		left, right, err := timeline.SplitAudioTrack(track, mediaAt)
		if err != nil {
			return err
		}
		e.state.AudioTracks = append(e.state.AudioTracks[:i], append([]*timeline.AudioTrack{left, right}, e.state.AudioTracks[i+1:]...)...)
		e.state.SelectAudio(left.ID)
		e.changed()
		return nil
	}

	i := timeline.ClipAt(e.state.Clips, at)
	if i < 0 {
		return fmt.Errorf("%w at %s", timeline.ErrNoMediaAtTime, timeline.FormatTimecode(at))
	}
	clip := e.state.Clips[i]
	mediaAt := clip.TrimStart + (at - timeline.ClipOffset(e.state.Clips, i))
	left, right, err := timeline.SplitClip(clip, mediaAt)
	if err != nil {
		return err
	}
	e.state.Clips = append(e.state.Clips[:i], append([]*timeline.Clip{left, right}, e.state.Clips[i+1:]...)...)
	e.state.SelectClip(left.ID)
	e.changed()
	return nil
}

// clampPlayhead keeps the playhead inside the composition after an edit
// shortened it. Callers hold the lock.
func (e *Editor) clampPlayhead() {
	if total := e.state.TotalDuration(); e.state.CurrentTime > total {
		e.state.CurrentTime = total
	}
}
