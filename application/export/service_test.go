package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"reelcut/domain/draft"
	"reelcut/domain/render"
	"reelcut/domain/timeline"
)

// mockEngine records the request and returns a canned result
type mockEngine struct {
	req        render.Request
	phases     []render.Phase
	shouldFail bool
}

func (m *mockEngine) Render(_ context.Context, req render.Request, progress render.ProgressFunc) (*render.Output, error) {
	m.req = req
	report := func(p render.Phase, f float64) {
		m.phases = append(m.phases, p)
		if progress != nil {
			progress(p, f)
		}
	}
	report(render.PhaseLoading, 0)
	if m.shouldFail {
		return nil, &render.EngineError{Phase: render.PhaseProcessing, Message: "codec mismatch"}
	}
	report(render.PhaseProcessing, 0.5)
	report(render.PhaseFinalizing, 1)
	return &render.Output{Data: []byte("rendered"), DurationSeconds: 9}, nil
}

// mockRegistrar records stored blobs and registered assets
type mockRegistrar struct {
	stored     map[string][]byte
	registered []render.ComposedAsset
	failStore  bool
}

func newMockRegistrar() *mockRegistrar {
	return &mockRegistrar{stored: map[string][]byte{}}
}

func (m *mockRegistrar) StoreComposition(_ context.Context, filename string, data []byte) (string, error) {
	if m.failStore {
		return "", errors.New("gallery unavailable")
	}
	m.stored[filename] = data
	return "gallery://" + filename, nil
}

func (m *mockRegistrar) RegisterAsset(_ context.Context, asset render.ComposedAsset) error {
	m.registered = append(m.registered, asset)
	return nil
}

// mockDrafts is a draft.Store tracking deletions
type mockDrafts struct {
	drafts map[string]*draft.Draft
}

func newMockDrafts(ids ...string) *mockDrafts {
	m := &mockDrafts{drafts: map[string]*draft.Draft{}}
	for _, id := range ids {
		m.drafts[id] = &draft.Draft{}
	}
	return m
}

func (m *mockDrafts) Save(_ context.Context, id string, d *draft.Draft) error {
	m.drafts[id] = d
	return nil
}

func (m *mockDrafts) Load(_ context.Context, id string) (*draft.Draft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return nil, draft.ErrNotFound
	}
	return d, nil
}

func (m *mockDrafts) Delete(_ context.Context, id string) error {
	delete(m.drafts, id)
	return nil
}

func (m *mockDrafts) List(_ context.Context) ([]string, error) { return nil, nil }

func exportState(t *testing.T) *timeline.State {
	t.Helper()
	s := timeline.NewState()
	a, err := timeline.NewClip("a.mp4", 10)
	if err != nil {
		t.Fatal(err)
	}
	a.TrimEnd = 5
	a.TransitionOut = &timeline.TransitionSpec{Type: timeline.TransitionFade, Duration: 1}
	b, err := timeline.NewClip("b.mp4", 4)
	if err != nil {
		t.Fatal(err)
	}
	b.Muted = true
	s.Clips = []*timeline.Clip{a, b}

	track, err := timeline.NewAudioTrack("n.mp3", 10)
	if err != nil {
		t.Fatal(err)
	}
	track.Offset = 6
	track.TrimEnd = 5
	track.Volume = 0.8
	s.AudioTracks = []*timeline.AudioTrack{track}
	return s
}

func TestBuildRequest(t *testing.T) {
	s := exportState(t)

	req, err := BuildRequest(s, true, "")
	if err != nil {
		t.Fatalf("BuildRequest() unexpected error: %v", err)
	}

	if len(req.Videos) != 2 {
		t.Fatalf("videos = %d, want 2", len(req.Videos))
	}
	first := req.Videos[0]
	if first.URL != "a.mp4" || first.SequenceIndex != 0 || first.Duration != 5 {
		t.Errorf("first input = %+v", first)
	}
	if first.TrimStart == nil || *first.TrimStart != 0 || first.TrimEnd == nil || *first.TrimEnd != 5 {
		t.Error("trimmed clip must carry explicit trim bounds")
	}
	if first.TransitionOut == nil || first.TransitionOut.Type != "fade" || first.TransitionOut.Duration != 1 {
		t.Errorf("transitionOut = %+v, want fade 1s", first.TransitionOut)
	}

	second := req.Videos[1]
	if !second.Mute {
		t.Error("muted clip must carry the mute flag")
	}
	if second.TrimStart != nil {
		t.Error("untrimmed clip must omit trim bounds")
	}
	if second.TransitionOut != nil {
		t.Error("final clip must not carry a transition")
	}

	if req.Audio == nil {
		t.Fatal("audio input missing")
	}
	if req.Audio.OffsetSeconds != 6 || req.Audio.Volume != 0.8 || req.Audio.TrimEnd != 5 {
		t.Errorf("audio input = %+v", req.Audio)
	}
	if !req.RemoveSilence {
		t.Error("removeSilence flag not carried through")
	}
	if req.OutputFormat != "mp4" {
		t.Errorf("outputFormat = %q, want default mp4", req.OutputFormat)
	}
}

func TestBuildRequestEmptyTimeline(t *testing.T) {
	if _, err := BuildRequest(timeline.NewState(), false, ""); err == nil {
		t.Error("BuildRequest() on an empty timeline must fail")
	}
}

func TestExportSuccess(t *testing.T) {
	engine := &mockEngine{}
	registrar := newMockRegistrar()
	drafts := newMockDrafts("proj-1")
	var out bytes.Buffer
	svc := NewService(engine, registrar, drafts, &out, zerolog.Nop())

	var phases []render.Phase
	result, err := svc.Export(context.Background(), exportState(t), Input{
		ProjectID:   "proj-1",
		AspectRatio: "9:16",
		Progress:    func(p render.Phase, _ float64) { phases = append(phases, p) },
	})
	if err != nil {
		t.Fatalf("Export() unexpected error: %v", err)
	}

	if result.URL == "" || result.Size != len("rendered") {
		t.Errorf("result = %+v", result)
	}
	if result.DurationSeconds != 9 {
		t.Errorf("duration = %v, want engine-reported 9", result.DurationSeconds)
	}

	if len(registrar.registered) != 1 {
		t.Fatalf("registered assets = %d, want 1", len(registrar.registered))
	}
	asset := registrar.registered[0]
	if asset.Kind != "video" || asset.AspectRatio != "9:16" || asset.LinkID != "proj-1" {
		t.Errorf("asset = %+v", asset)
	}

	// Successful export clears the draft.
	if _, err := drafts.Load(context.Background(), "proj-1"); !errors.Is(err, draft.ErrNotFound) {
		t.Errorf("draft still present after export: %v", err)
	}

	wantPhases := []render.Phase{render.PhaseLoading, render.PhaseProcessing, render.PhaseFinalizing}
	if len(phases) != len(wantPhases) {
		t.Fatalf("progress phases = %v, want %v", phases, wantPhases)
	}
	for i := range wantPhases {
		if phases[i] != wantPhases[i] {
			t.Errorf("phase[%d] = %v, want %v", i, phases[i], wantPhases[i])
		}
	}

	if !strings.Contains(out.String(), "Export finished") {
		t.Errorf("output missing completion message: %q", out.String())
	}
}

func TestExportFailureKeepsDraft(t *testing.T) {
	engine := &mockEngine{shouldFail: true}
	registrar := newMockRegistrar()
	drafts := newMockDrafts("proj-1")
	svc := NewService(engine, registrar, drafts, &bytes.Buffer{}, zerolog.Nop())

	_, err := svc.Export(context.Background(), exportState(t), Input{ProjectID: "proj-1"})
	if err == nil {
		t.Fatal("Export() expected error")
	}

	var engineErr *render.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %T, want *render.EngineError", err)
	}
	if engineErr.Phase != render.PhaseProcessing {
		t.Errorf("phase = %v, want processing", engineErr.Phase)
	}

	// The draft survives a failed export so the edit can be retried.
	if _, err := drafts.Load(context.Background(), "proj-1"); err != nil {
		t.Errorf("draft lost after failed export: %v", err)
	}
	if len(registrar.registered) != 0 {
		t.Error("asset registered despite render failure")
	}
}

func TestExportStoreFailureKeepsDraft(t *testing.T) {
	engine := &mockEngine{}
	registrar := newMockRegistrar()
	registrar.failStore = true
	drafts := newMockDrafts("proj-1")
	svc := NewService(engine, registrar, drafts, &bytes.Buffer{}, zerolog.Nop())

	if _, err := svc.Export(context.Background(), exportState(t), Input{ProjectID: "proj-1"}); err == nil {
		t.Fatal("Export() expected error")
	}
	if _, err := drafts.Load(context.Background(), "proj-1"); err != nil {
		t.Errorf("draft lost after failed store: %v", err)
	}
}
