package editor

import (
	"context"
	"errors"
	"testing"

	"reelcut/domain/timeline"
)

// fakeElement records seeks issued during trim drags
type fakeElement struct {
	source string
	seeks  []float64
}

func (f *fakeElement) SetSource(ref string) error { f.source = ref; return nil }
func (f *fakeElement) Source() string             { return f.source }
func (f *fakeElement) Play() error                { return nil }
func (f *fakeElement) Pause() error               { return nil }
func (f *fakeElement) Playing() bool              { return false }
func (f *fakeElement) Seek(s float64) error       { f.seeks = append(f.seeks, s); return nil }
func (f *fakeElement) Position() float64          { return 0 }
func (f *fakeElement) Duration() float64          { return 0 }
func (f *fakeElement) SetMuted(bool)              {}
func (f *fakeElement) SetVolume(float64)          {}
func (f *fakeElement) Close() error               { return nil }

func TestTrimDragClampsAndSeeks(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"a.mp4": 10}}
	el := &fakeElement{}
	e := New(p, WithPreviewElement(el), WithPixelsPerSecond(100))
	c, _ := e.AddClip(context.Background(), "a.mp4")
	el.SetSource("a.mp4")

	s, err := e.BeginClipTrim(c.ID, SideEnd)
	if err != nil {
		t.Fatalf("BeginClipTrim() unexpected error: %v", err)
	}

	// 100 px/s: dragging -300px moves the end bound from 10s to 7s.
	if got := s.Drag(-300); got != 7 {
		t.Errorf("Drag(-300) = %v, want 7", got)
	}
	// Dragging far past the start clamps to the minimum separation.
	if got := s.Drag(-2000); got != timeline.MinClipSeconds {
		t.Errorf("Drag(-2000) = %v, want %v", got, timeline.MinClipSeconds)
	}
	s.End()

	if len(el.seeks) != 2 {
		t.Fatalf("preview seeks = %d, want 2", len(el.seeks))
	}
	if el.seeks[0] != 7 {
		t.Errorf("first preview seek = %v, want 7", el.seeks[0])
	}

	e.Update(func(st *timeline.State) {
		if err := st.Clips[0].Validate(); err != nil {
			t.Errorf("clip invalid after drag: %v", err)
		}
	})
}

func TestTrimDragStartSide(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"a.mp4": 10}}
	e := New(p, WithPixelsPerSecond(50))
	c, _ := e.AddClip(context.Background(), "a.mp4")

	s, _ := e.BeginClipTrim(c.ID, SideStart)
	if got := s.Drag(100); got != 2 {
		t.Errorf("Drag(100) = %v, want 2", got)
	}
	if got := s.Drag(-100); got != 0 {
		t.Errorf("Drag(-100) = %v, want 0 (clamped)", got)
	}
	s.End()
}

func TestOnlyOneSessionAtATime(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"a.mp4": 10}}
	e := New(p)
	c, _ := e.AddClip(context.Background(), "a.mp4")

	s, err := e.BeginClipTrim(c.ID, SideEnd)
	if err != nil {
		t.Fatalf("BeginClipTrim() unexpected error: %v", err)
	}
	if _, err := e.BeginScrub(); !errors.Is(err, ErrSessionActive) {
		t.Errorf("BeginScrub() error = %v, want ErrSessionActive", err)
	}
	s.End()
	if _, err := e.BeginScrub(); err != nil {
		t.Errorf("BeginScrub() after End() unexpected error: %v", err)
	}
}

func TestReorderDrag(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"a.mp4": 5, "b.mp4": 4, "c.mp4": 3}}
	e := New(p)
	a, _ := e.AddClip(context.Background(), "a.mp4")
	e.AddClip(context.Background(), "b.mp4")
	c, _ := e.AddClip(context.Background(), "c.mp4")

	s, err := e.BeginReorder(a.ID)
	if err != nil {
		t.Fatalf("BeginReorder() unexpected error: %v", err)
	}
	if err := s.DragOver(c.ID); err != nil {
		t.Fatalf("DragOver() unexpected error: %v", err)
	}
	s.End()

	e.Update(func(st *timeline.State) {
		got := []string{st.Clips[0].SourceRef, st.Clips[1].SourceRef, st.Clips[2].SourceRef}
		want := []string{"b.mp4", "c.mp4", "a.mp4"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("order[%d] = %s, want %s", i, got[i], want[i])
			}
		}
		// IDs are stable across reorders.
		if st.Clips[2].ID != a.ID {
			t.Error("dragged clip lost its identity")
		}
	})
}

func TestAudioMoveDrag(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"n.mp3": 10}}
	e := New(p, WithPixelsPerSecond(50))
	track, _ := e.AddAudioTrack(context.Background(), "n.mp3")

	s, err := e.BeginAudioMove(track.ID)
	if err != nil {
		t.Fatalf("BeginAudioMove() unexpected error: %v", err)
	}
	if got := s.Drag(150); got != 3 {
		t.Errorf("Drag(150) = %v, want 3", got)
	}
	// Offsets never go negative.
	if got := s.Drag(-500); got != 0 {
		t.Errorf("Drag(-500) = %v, want 0", got)
	}
	s.End()

	e.Update(func(st *timeline.State) {
		if st.AudioTracks[0].Offset != 0 {
			t.Errorf("offset = %v, want 0", st.AudioTracks[0].Offset)
		}
		// Trim bounds are untouched by repositioning.
		if st.AudioTracks[0].TrimStart != 0 || st.AudioTracks[0].TrimEnd != 10 {
			t.Error("audio move changed trim bounds")
		}
	})
}

func TestScrubDrag(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"a.mp4": 10}}
	e := New(p, WithPixelsPerSecond(50))
	e.AddClip(context.Background(), "a.mp4")
	e.Scrub(4)

	s, _ := e.BeginScrub()
	if got := s.Drag(100); got != 6 {
		t.Errorf("Drag(100) = %v, want 6", got)
	}
	if got := s.Drag(1000); got != 10 {
		t.Errorf("Drag(1000) = %v, want 10 (clamped to total)", got)
	}
	s.End()
}

func TestAudioTrimDrag(t *testing.T) {
	p := &stubProber{durations: map[string]float64{"n.mp3": 10}}
	e := New(p, WithPixelsPerSecond(50))
	track, _ := e.AddAudioTrack(context.Background(), "n.mp3")

	s, _ := e.BeginAudioTrim(track.ID, SideEnd)
	if got := s.Drag(-250); got != 5 {
		t.Errorf("Drag(-250) = %v, want 5", got)
	}
	s.End()

	e.Update(func(st *timeline.State) {
		if st.AudioTracks[0].TrimEnd != 5 {
			t.Errorf("trim end = %v, want 5", st.AudioTracks[0].TrimEnd)
		}
	})
}
