package playback

import (
	"sync"
	"testing"

	"reelcut/domain/timeline"
)

// testTimeline is a minimal lock-carrying Timeline for engine tests
type testTimeline struct {
	mu    sync.Mutex
	state *timeline.State
}

func (t *testTimeline) Update(fn func(*timeline.State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.state)
}

// fakeElement is a scriptable media element: tests set Position directly to
// simulate element-driven playback between frames.
type fakeElement struct {
	source  string
	pos     float64
	playing bool
	muted   bool
	volume  float64

	setSourceCalls int
	seekCalls      int
}

func (f *fakeElement) SetSource(ref string) error {
	f.setSourceCalls++
	f.source = ref
	f.pos = 0
	return nil
}
func (f *fakeElement) Source() string       { return f.source }
func (f *fakeElement) Play() error          { f.playing = true; return nil }
func (f *fakeElement) Pause() error         { f.playing = false; return nil }
func (f *fakeElement) Playing() bool        { return f.playing }
func (f *fakeElement) Seek(s float64) error { f.seekCalls++; f.pos = s; return nil }
func (f *fakeElement) Position() float64    { return f.pos }
func (f *fakeElement) Duration() float64    { return 0 }
func (f *fakeElement) SetMuted(m bool)      { f.muted = m }
func (f *fakeElement) SetVolume(v float64)  { f.volume = v }
func (f *fakeElement) Close() error         { return nil }

type rig struct {
	tl      *testTimeline
	video   *fakeElement
	audio   *fakeElement
	preload *fakeElement
	engine  *Engine
}

func newRig(s *timeline.State, opts ...Option) *rig {
	r := &rig{
		tl:      &testTimeline{state: s},
		video:   &fakeElement{},
		audio:   &fakeElement{},
		preload: &fakeElement{},
	}
	r.engine = New(r.tl, r.video, r.audio, r.preload, opts...)
	return r
}

func (r *rig) state() *timeline.State {
	var s *timeline.State
	r.tl.Update(func(st *timeline.State) { s = st })
	return s
}

func clipOf(source string, trimStart, trimEnd, original float64, spec *timeline.TransitionSpec) *timeline.Clip {
	c, err := timeline.NewClip(source, original)
	if err != nil {
		panic(err)
	}
	c.TrimStart = trimStart
	c.TrimEnd = trimEnd
	c.TransitionOut = spec
	return c
}

func trackOf(source string, offset, trimStart, trimEnd, original float64) *timeline.AudioTrack {
	t, err := timeline.NewAudioTrack(source, original)
	if err != nil {
		panic(err)
	}
	t.Offset = offset
	t.TrimStart = trimStart
	t.TrimEnd = trimEnd
	return t
}

func twoClipState() *timeline.State {
	s := timeline.NewState()
	s.Clips = []*timeline.Clip{
		clipOf("a.mp4", 0, 5, 10, nil),
		clipOf("b.mp4", 0, 4, 10, nil),
	}
	return s
}

func TestPlayVideoStartsVideoAndPausesAudio(t *testing.T) {
	r := newRig(twoClipState())
	r.audio.playing = true

	r.engine.Play(timeline.PlayVideo)

	if !r.video.playing {
		t.Error("video element not playing")
	}
	if r.audio.playing {
		t.Error("audio element still playing after video-only start")
	}
	s := r.state()
	if s.PlayMode != timeline.PlayVideo || !s.IsPlaying {
		t.Errorf("transport = (%v, %v), want (video, true)", s.PlayMode, s.IsPlaying)
	}
	if r.video.source != "a.mp4" {
		t.Errorf("video source = %q, want a.mp4", r.video.source)
	}
}

func TestFrameMirrorsElementTimeThrottled(t *testing.T) {
	r := newRig(twoClipState())
	r.engine.Play(timeline.PlayVideo)

	r.video.pos = 2.5
	r.engine.frame()
	if got := r.state().CurrentTime; got != 2.5 {
		t.Errorf("CurrentTime = %v, want 2.5", got)
	}

	// Writes below the mirror resolution are skipped.
	r.video.pos = 2.505
	r.engine.frame()
	if got := r.state().CurrentTime; got != 2.5 {
		t.Errorf("CurrentTime = %v, want unchanged 2.5", got)
	}
}

func TestClipAdvanceSwapsSource(t *testing.T) {
	r := newRig(twoClipState())
	r.engine.Play(timeline.PlayVideo)

	r.video.pos = 5 // reached a.mp4's trim end
	r.engine.frame()

	if r.video.source != "b.mp4" {
		t.Errorf("video source = %q, want b.mp4", r.video.source)
	}
	if r.video.pos != 0 {
		t.Errorf("video position = %v, want trim start 0", r.video.pos)
	}
	s := r.state()
	if s.CurrentTime != 5 {
		t.Errorf("CurrentTime = %v, want 5 (offset of second clip)", s.CurrentTime)
	}
	// The newly active clip becomes the selection.
	if s.SelectedClipID != s.Clips[1].ID {
		t.Errorf("selection = %q, want second clip", s.SelectedClipID)
	}
}

func TestSplitSiblingAdvanceSeeksInPlace(t *testing.T) {
	s := timeline.NewState()
	s.Clips = []*timeline.Clip{
		clipOf("a.mp4", 0, 3, 10, nil),
		clipOf("a.mp4", 3, 6, 10, nil), // split sibling, same source
	}
	r := newRig(s)
	r.engine.Play(timeline.PlayVideo)
	loads := r.video.setSourceCalls

	r.video.pos = 3
	r.engine.frame()

	if r.video.setSourceCalls != loads {
		t.Error("advance between split siblings must not reload the source")
	}
	if r.video.pos != 3 {
		t.Errorf("video position = %v, want 3 (right half trim start)", r.video.pos)
	}
}

func TestEndOfTimelineStops(t *testing.T) {
	r := newRig(twoClipState())
	r.engine.Play(timeline.PlayVideo)

	r.tl.Update(func(s *timeline.State) { s.CurrentTime = 8.5 })
	r.engine.frame() // activates the second clip under the playhead
	r.video.pos = 4  // its trimmed range is now exhausted
	r.engine.frame()

	s := r.state()
	if s.PlayMode != timeline.PlayNone || s.IsPlaying {
		t.Errorf("transport = (%v, %v), want (none, false)", s.PlayMode, s.IsPlaying)
	}
	if s.CurrentTime != 9 {
		t.Errorf("CurrentTime = %v, want clamped to total 9", s.CurrentTime)
	}
	if r.video.playing || r.audio.playing {
		t.Error("elements still playing after end of timeline")
	}
}

func TestAudioDriftResync(t *testing.T) {
	s := twoClipState()
	s.AudioTracks = []*timeline.AudioTrack{trackOf("n.mp3", 0, 0, 9, 12)}
	r := newRig(s)
	r.engine.Play(timeline.PlayAll)

	r.video.pos = 2
	r.audio.pos = 2.1 // within tolerance
	seeks := r.audio.seekCalls
	r.engine.frame()
	if r.audio.seekCalls != seeks {
		t.Error("audio reseeked despite drift within tolerance")
	}

	r.video.pos = 3
	r.audio.pos = 3.5 // past the ±0.3s tolerance
	r.engine.frame()
	if r.audio.seekCalls != seeks+1 {
		t.Error("audio not reseeked on excessive drift")
	}
	if r.audio.pos != 3 {
		t.Errorf("audio position = %v, want 3", r.audio.pos)
	}
}

func TestAudioStartsWhenPlayheadEntersSpan(t *testing.T) {
	s := twoClipState()
	s.AudioTracks = []*timeline.AudioTrack{trackOf("n.mp3", 6, 0, 5, 10)}
	r := newRig(s)
	r.engine.Play(timeline.PlayAll)

	r.video.pos = 2
	r.engine.frame()
	if r.audio.playing {
		t.Error("audio playing before the playhead reached its span")
	}

	// Jump into the second clip, past the track offset.
	r.tl.Update(func(st *timeline.State) { st.CurrentTime = 6.5 })
	r.video.pos = 1.5 // b.mp4 local time for timeline 6.5
	r.engine.frame()
	if !r.audio.playing {
		t.Error("audio not started when the playhead entered its span")
	}
	if r.audio.volume != 1 {
		t.Errorf("audio volume = %v, want track volume 1", r.audio.volume)
	}
}

func TestAudioTailKeepsPlayingAfterVideoEnds(t *testing.T) {
	s := timeline.NewState()
	s.Clips = []*timeline.Clip{
		clipOf("a.mp4", 0, 5, 10, &timeline.TransitionSpec{Type: timeline.TransitionFade, Duration: 1}),
		clipOf("b.mp4", 0, 4, 10, nil),
	}
	s.AudioTracks = []*timeline.AudioTrack{trackOf("n.mp3", 6, 0, 5, 10)}
	r := newRig(s)
	// videoSpan = 8, audioSpan = 11

	r.engine.Play(timeline.PlayAll)
	r.tl.Update(func(st *timeline.State) { st.CurrentTime = 7.9 })
	r.engine.frame() // activates the last clip under the playhead
	r.video.pos = 4  // last clip exhausted
	r.engine.frame()

	st := r.state()
	if st.PlayMode != timeline.PlayAll || !st.IsPlaying {
		t.Fatalf("transport = (%v, %v), want audio tail still in all mode", st.PlayMode, st.IsPlaying)
	}
	if r.video.playing {
		t.Error("video element still playing in the audio tail")
	}

	// Audio runs out: position reaches its trim end.
	r.audio.pos = 5
	r.engine.frame() // playhead snaps to the track end
	r.engine.frame() // finish

	st = r.state()
	if st.PlayMode != timeline.PlayNone || st.IsPlaying {
		t.Errorf("transport = (%v, %v), want stopped", st.PlayMode, st.IsPlaying)
	}
	if st.CurrentTime != 11 {
		t.Errorf("CurrentTime = %v, want 11", st.CurrentTime)
	}
}

func TestTransitionPreview(t *testing.T) {
	s := timeline.NewState()
	s.Clips = []*timeline.Clip{
		clipOf("a.mp4", 0, 5, 10, &timeline.TransitionSpec{Type: timeline.TransitionFade, Duration: 1}),
		clipOf("b.mp4", 0, 4, 10, nil),
	}
	var signals []Preview
	r := newRig(s, WithPreviewHook(func(p Preview) { signals = append(signals, p) }))
	r.engine.Play(timeline.PlayVideo)

	// Before the transition window: no signal.
	r.video.pos = 3
	r.engine.frame()
	if got := r.engine.CurrentPreview(); got.Active {
		t.Error("preview active before the transition window")
	}

	// Halfway through the 1s window starting at 4s.
	r.video.pos = 4.5
	r.engine.frame()
	got := r.engine.CurrentPreview()
	if !got.Active || got.Type != timeline.TransitionFade {
		t.Fatalf("preview = %+v, want active fade", got)
	}
	if got.Progress != 0.5 {
		t.Errorf("progress = %v, want 0.5", got.Progress)
	}
	// The incoming clip is preloaded into the hidden muted element.
	if r.preload.source != "b.mp4" {
		t.Errorf("preload source = %q, want b.mp4", r.preload.source)
	}
	if !r.preload.muted {
		t.Error("preload element must stay muted")
	}
	if r.preload.pos != 0.5 {
		t.Errorf("preload position = %v, want 0.5", r.preload.pos)
	}

	// Advancing past the clip end clears the signal.
	r.video.pos = 5
	r.engine.frame()
	if got := r.engine.CurrentPreview(); got.Active {
		t.Error("preview still active after the clip advanced")
	}
	if len(signals) < 2 {
		t.Fatalf("signals = %d, want at least an activation and a clear", len(signals))
	}
	if last := signals[len(signals)-1]; last.Active {
		t.Error("last signal must be the clear")
	}
}

func TestHandleSeekWhilePaused(t *testing.T) {
	r := newRig(twoClipState())

	r.engine.HandleSeek(6.5)
	if r.video.source != "b.mp4" {
		t.Errorf("video source = %q, want b.mp4", r.video.source)
	}
	if r.video.pos != 1.5 {
		t.Errorf("video position = %v, want 1.5", r.video.pos)
	}
	if r.video.playing {
		t.Error("seek while paused must not start playback")
	}
}

func TestHandleSeekPastVideoSpanLeavesVideoParked(t *testing.T) {
	s := twoClipState()
	s.AudioTracks = []*timeline.AudioTrack{trackOf("n.mp3", 6, 0, 5, 10)}
	r := newRig(s)

	r.engine.HandleSeek(4)
	videoSeeks := r.video.seekCalls

	// Past the 9s video span only the audio tail applies.
	r.engine.HandleSeek(10)
	if r.video.seekCalls != videoSeeks {
		t.Error("video reseeked for a position past the video span")
	}
	if r.audio.pos != 4 {
		t.Errorf("audio position = %v, want 4", r.audio.pos)
	}
}

func TestPlayAudioPausesVideo(t *testing.T) {
	s := twoClipState()
	s.AudioTracks = []*timeline.AudioTrack{trackOf("n.mp3", 0, 0, 8, 10)}
	r := newRig(s)
	r.video.playing = true

	r.engine.Play(timeline.PlayAudio)
	if r.video.playing {
		t.Error("video element still playing after audio-only start")
	}
	if !r.audio.playing {
		t.Error("audio element not playing")
	}

	r.audio.pos = 3
	r.engine.frame()
	if got := r.state().CurrentTime; got != 3 {
		t.Errorf("CurrentTime = %v, want 3 (audio-driven)", got)
	}
}

func TestStopPausesEverything(t *testing.T) {
	r := newRig(twoClipState())
	r.engine.Play(timeline.PlayVideo)

	r.engine.Stop()
	s := r.state()
	if s.PlayMode != timeline.PlayNone || s.IsPlaying {
		t.Errorf("transport = (%v, %v), want stopped", s.PlayMode, s.IsPlaying)
	}
	if r.video.playing || r.audio.playing {
		t.Error("elements still playing after stop")
	}
}

func TestPlayRestartsFromTopAtEnd(t *testing.T) {
	r := newRig(twoClipState())
	r.tl.Update(func(s *timeline.State) { s.CurrentTime = 9 })

	r.engine.Play(timeline.PlayVideo)
	s := r.state()
	if s.CurrentTime != 0 {
		t.Errorf("CurrentTime = %v, want restart at 0", s.CurrentTime)
	}
	if r.video.source != "a.mp4" || r.video.pos != 0 {
		t.Errorf("video = (%q, %v), want a.mp4 at 0", r.video.source, r.video.pos)
	}
}
