package playback

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"reelcut/domain/media"
	"reelcut/domain/timeline"
)

const (
	// DefaultTick is the frame interval of the synchronization loop
	DefaultTick = 16 * time.Millisecond

	// audioDriftTolerance is how far the audio element may stray from the
	// position implied by the playhead before a hard reseek
	audioDriftTolerance = 0.3

	// mirrorResolution throttles playhead writes derived from element time
	mirrorResolution = 0.01
)

// Timeline provides locked access to the editing session state. The editor
// implements it; mutations applied there are visible to the next frame.
type Timeline interface {
	Update(fn func(*timeline.State))
}

// Engine is the playback synchronization engine. It runs a continuous frame
// loop while the editor session is open, maps timeline time to per-medium
// local time, drives the video and audio elements, computes the transition
// preview and detects end-of-timeline conditions. It is the exclusive owner
// of the three playback elements.
type Engine struct {
	tl      Timeline
	video   media.Element
	audio   media.Element
	preload media.Element // hidden, muted; seeded during transition previews

	tick   time.Duration
	logger zerolog.Logger

	activeClipID string
	preview      Preview
	onPreview    func(Preview)
}

// Option is a functional option for configuring the Engine
type Option func(*Engine)

// WithTick overrides the frame interval
func WithTick(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tick = d
		}
	}
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPreviewHook registers the hook receiving transition-preview signals
func WithPreviewHook(fn func(Preview)) Option {
	return func(e *Engine) {
		e.onPreview = fn
	}
}

// New creates an engine over the session timeline and its three elements
func New(tl Timeline, video, audio, preload media.Element, opts ...Option) *Engine {
	e := &Engine{
		tl:      tl,
		video:   video,
		audio:   audio,
		preload: preload,
		tick:    DefaultTick,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.preload.SetMuted(true)
	return e
}

// Run drives the frame loop until the context is cancelled. The loop is not
// stopped while idle; the playing branch is simply skipped, so drag feedback
// and previews stay immediate. On cancellation playback is stopped and the
// elements are released.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return
		case <-ticker.C:
			e.frame()
		}
	}
}

// Play transitions the transport state machine into the given mode.
// Starting video pauses audio and vice versa; all starts both. PlayNone is
// equivalent to Stop.
func (e *Engine) Play(mode timeline.PlayMode) {
	if mode == timeline.PlayNone {
		e.Stop()
		return
	}

	e.tl.Update(func(s *timeline.State) {
		s.PlayMode = mode
		s.IsPlaying = true

		// Restart from the top when play is hit at the very end.
		if s.CurrentTime >= s.TotalDuration() && s.TotalDuration() > 0 {
			s.CurrentTime = 0
			e.activeClipID = ""
		}

		switch mode {
		case timeline.PlayVideo:
			e.pauseElement(e.audio)
			e.seekVideoTo(s, s.CurrentTime)
			e.playElement(e.video)
		case timeline.PlayAudio:
			e.pauseElement(e.video)
			e.seekAudioTo(s, s.CurrentTime)
			e.playElement(e.audio)
		case timeline.PlayAll:
			e.seekVideoTo(s, s.CurrentTime)
			e.seekAudioTo(s, s.CurrentTime)
			e.playElement(e.video)
			e.syncAudio(s) // starts audio only if the playhead is inside the track
		}
	})
}

// Stop pauses both elements and returns the transport to PlayNone
func (e *Engine) Stop() {
	e.tl.Update(func(s *timeline.State) {
		e.stopLocked(s)
	})
}

func (e *Engine) stopLocked(s *timeline.State) {
	s.PlayMode = timeline.PlayNone
	s.IsPlaying = false
	e.pauseElement(e.video)
	e.pauseElement(e.audio)
	e.clearPreview()
}

// HandleSeek is the lighter non-playing path keeping the elements consistent
// with manual scrubs and trims. Registered as the editor's seek hook.
func (e *Engine) HandleSeek(to float64) {
	e.tl.Update(func(s *timeline.State) {
		// Past the video span only the audio tail applies; leave the video
		// element parked on its last frame.
		if to <= s.VideoSpan() {
			e.seekVideoTo(s, to)
		}
		e.seekAudioTo(s, to)
	})
}

// CurrentPreview returns the last emitted transition-preview signal
func (e *Engine) CurrentPreview() Preview {
	var p Preview
	e.tl.Update(func(*timeline.State) { p = e.preview })
	return p
}

// frame is one iteration of the synchronization loop
func (e *Engine) frame() {
	e.tl.Update(func(s *timeline.State) {
		if !s.IsPlaying {
			return
		}

		switch s.PlayMode {
		case timeline.PlayAudio:
			e.frameAudioOnly(s)
		case timeline.PlayVideo, timeline.PlayAll:
			e.frameVideo(s)
		}
	})
}

// frameVideo drives the playhead from the video element and, in all mode,
// keeps the audio element within the drift tolerance.
func (e *Engine) frameVideo(s *timeline.State) {
	i := timeline.ClipAt(s.Clips, s.CurrentTime)
	if i < 0 {
		e.frameVideoTail(s)
		return
	}

	clip := s.Clips[i]
	if e.activeClipID != clip.ID {
		e.activateClip(s, i)
	}
	e.video.SetMuted(clip.Muted)

	local := e.video.Position()

	// Clip advance: the trimmed range is exhausted.
	if local >= clip.TrimEnd {
		if i+1 < len(s.Clips) {
			e.advanceTo(s, i+1)
		} else {
			e.finishVideo(s)
		}
		return
	}

	// Mirror element time into the playhead, throttled.
	t := timeline.ClipOffset(s.Clips, i) + (local - clip.TrimStart)
	if diff := t - s.CurrentTime; diff > mirrorResolution || diff < -mirrorResolution {
		s.CurrentTime = t
	}

	e.updateTransitionPreview(s, i, local)

	if s.PlayMode == timeline.PlayAll {
		e.syncAudio(s)
	}
}

// frameVideoTail handles a playhead past the last clip while video is the
// driving medium.
func (e *Engine) frameVideoTail(s *timeline.State) {
	if s.PlayMode == timeline.PlayAll && s.CurrentTime < s.AudioSpan() {
		// The narration extends beyond the video; keep audio running alone.
		e.pauseElement(e.video)
		e.frameAudioOnly(s)
		return
	}
	e.finishTimeline(s)
}

// frameAudioOnly drives the playhead from the audio element
func (e *Engine) frameAudioOnly(s *timeline.State) {
	i := timeline.AudioAt(s.AudioTracks, s.CurrentTime)
	if i < 0 {
		// Between or past tracks: advance the playhead to the next track
		// start, or finish.
		if next := nextAudioStart(s.AudioTracks, s.CurrentTime); next >= 0 {
			s.CurrentTime = next
			e.seekAudioTo(s, next)
			e.playElement(e.audio)
			return
		}
		e.finishTimeline(s)
		return
	}

	track := s.AudioTracks[i]
	if e.audio.Source() != track.SourceRef {
		e.setSource(e.audio, track.SourceRef)
		e.seekElement(e.audio, track.TrimStart+(s.CurrentTime-track.Offset))
	}
	e.audio.SetVolume(track.Volume)
	if !e.audio.Playing() {
		e.playElement(e.audio)
	}

	local := e.audio.Position()
	if local >= track.TrimEnd {
		s.CurrentTime = track.End()
		return // next frame resolves the following track or the finish
	}

	t := track.Offset + (local - track.TrimStart)
	if diff := t - s.CurrentTime; diff > mirrorResolution || diff < -mirrorResolution {
		s.CurrentTime = t
	}
}

// syncAudio keeps the audio element aligned with the playhead in all mode:
// start/stop as the playhead enters/exits the track span, hard reseek when
// drift exceeds the tolerance.
func (e *Engine) syncAudio(s *timeline.State) {
	i := timeline.AudioAt(s.AudioTracks, s.CurrentTime)
	if i < 0 {
		if e.audio.Playing() {
			e.pauseElement(e.audio)
		}
		return
	}

	track := s.AudioTracks[i]
	if e.audio.Source() != track.SourceRef {
		e.setSource(e.audio, track.SourceRef)
	}
	e.audio.SetVolume(track.Volume)

	implied := track.TrimStart + (s.CurrentTime - track.Offset)
	if drift := e.audio.Position() - implied; drift > audioDriftTolerance || drift < -audioDriftTolerance {
		e.seekElement(e.audio, implied)
	}
	if !e.audio.Playing() {
		e.playElement(e.audio)
	}
}

// updateTransitionPreview emits the preview signal when the active clip has
// entered the final transition window of its trimmed range, and preloads the
// incoming clip into the hidden element.
func (e *Engine) updateTransitionPreview(s *timeline.State, i int, local float64) {
	overlap := timeline.SeamOverlap(s.Clips, i)
	if overlap == 0 || i+1 >= len(s.Clips) {
		e.clearPreview()
		return
	}

	clip := s.Clips[i]
	windowStart := clip.TrimEnd - overlap
	if local < windowStart {
		e.clearPreview()
		return
	}

	elapsed := local - windowStart
	progress := elapsed / overlap
	if progress >= 1 {
		e.clearPreview()
		return
	}

	next := s.Clips[i+1]
	if e.preload.Source() != next.SourceRef {
		e.setSource(e.preload, next.SourceRef)
	}
	e.seekElement(e.preload, next.TrimStart+elapsed)

	e.emitPreview(Preview{Active: true, Progress: progress, Type: clip.TransitionOut.Type})
}

// activateClip points the video element at clips[i] without assuming any
// prior position, reloading only when the source differs. The active clip
// becomes the selection.
func (e *Engine) activateClip(s *timeline.State, i int) {
	clip := s.Clips[i]
	local := clip.TrimStart + (s.CurrentTime - timeline.ClipOffset(s.Clips, i))
	if local < clip.TrimStart || local > clip.TrimEnd {
		local = clip.TrimStart
	}

	if e.video.Source() != clip.SourceRef {
		e.setSource(e.video, clip.SourceRef)
	}
	e.seekElement(e.video, local)
	e.video.SetMuted(clip.Muted)
	e.activeClipID = clip.ID
	s.SelectClip(clip.ID)
	if s.IsPlaying && !e.video.Playing() {
		e.playElement(e.video)
	}
}

// advanceTo switches playback to clips[next]. Split siblings share a source
// and seek in place; anything else swaps the source first.
func (e *Engine) advanceTo(s *timeline.State, next int) {
	clip := s.Clips[next]
	if e.video.Source() != clip.SourceRef {
		e.setSource(e.video, clip.SourceRef)
	}
	e.seekElement(e.video, clip.TrimStart)
	e.video.SetMuted(clip.Muted)
	e.activeClipID = clip.ID
	s.SelectClip(clip.ID)
	s.CurrentTime = timeline.ClipOffset(s.Clips, next)
	e.clearPreview()
	if !e.video.Playing() {
		e.playElement(e.video)
	}
}

// finishVideo handles the last clip running out of trimmed range
func (e *Engine) finishVideo(s *timeline.State) {
	s.CurrentTime = s.VideoSpan()
	e.frameVideoTail(s)
}

// finishTimeline is the natural end-of-timeline transition: pause both
// elements, return to PlayNone and clamp the playhead.
func (e *Engine) finishTimeline(s *timeline.State) {
	e.stopLocked(s)
	s.CurrentTime = s.TotalDuration()
	e.activeClipID = ""
}

// seekVideoTo points the video element at the clip under the timeline
// position when not necessarily playing
func (e *Engine) seekVideoTo(s *timeline.State, to float64) {
	i := timeline.ClipAt(s.Clips, to)
	if i < 0 {
		if len(s.Clips) == 0 {
			return
		}
		// Park on the last clip's final frame.
		i = len(s.Clips) - 1
		last := s.Clips[i]
		if e.video.Source() != last.SourceRef {
			e.setSource(e.video, last.SourceRef)
		}
		e.seekElement(e.video, last.TrimEnd)
		e.activeClipID = last.ID
		return
	}

	clip := s.Clips[i]
	if e.video.Source() != clip.SourceRef {
		e.setSource(e.video, clip.SourceRef)
	}
	e.seekElement(e.video, clip.TrimStart+(to-timeline.ClipOffset(s.Clips, i)))
	e.video.SetMuted(clip.Muted)
	e.activeClipID = clip.ID
}

// seekAudioTo aligns the audio element with the timeline position
func (e *Engine) seekAudioTo(s *timeline.State, to float64) {
	i := timeline.AudioAt(s.AudioTracks, to)
	if i < 0 {
		e.pauseElement(e.audio)
		return
	}
	track := s.AudioTracks[i]
	if e.audio.Source() != track.SourceRef {
		e.setSource(e.audio, track.SourceRef)
	}
	e.audio.SetVolume(track.Volume)
	e.seekElement(e.audio, track.TrimStart+(to-track.Offset))
}

func (e *Engine) emitPreview(p Preview) {
	if p == e.preview {
		return
	}
	e.preview = p
	if e.onPreview != nil {
		e.onPreview(p)
	}
}

func (e *Engine) clearPreview() {
	e.emitPreview(Preview{})
}

// Element failures are non-fatal: log and keep the transport advancing on
// the last known timing.

func (e *Engine) setSource(el media.Element, ref string) {
	if err := el.SetSource(ref); err != nil {
		e.logger.Warn().Err(err).Str("source", ref).Msg("media load failed")
	}
}

func (e *Engine) seekElement(el media.Element, to float64) {
	if err := el.Seek(to); err != nil {
		e.logger.Warn().Err(err).Float64("to", to).Msg("media seek failed")
	}
}

func (e *Engine) playElement(el media.Element) {
	if err := el.Play(); err != nil {
		e.logger.Warn().Err(err).Msg("media play failed")
	}
}

func (e *Engine) pauseElement(el media.Element) {
	if err := el.Pause(); err != nil {
		e.logger.Warn().Err(err).Msg("media pause failed")
	}
}

// nextAudioStart returns the earliest track offset after the given position,
// or -1 when none follows
func nextAudioStart(tracks []*timeline.AudioTrack, after float64) float64 {
	next := -1.0
	for _, t := range tracks {
		if t.Offset >= after && (next < 0 || t.Offset < next) {
			next = t.Offset
		}
	}
	return next
}
