package ffmpeg

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"reelcut/domain/render"
)

// mockRunner records the ffmpeg invocation and fabricates the output file
type mockRunner struct {
	runErr  error
	written []byte

	gotArgs []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.gotArgs = args
	if m.runErr != nil {
		return m.runErr
	}
	// Last arg is the output path.
	return os.WriteFile(args[len(args)-1], m.written, 0o644)
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("ffmpeg version 6.0"), nil
}

func floatPtr(v float64) *float64 { return &v }

func sampleRequest() render.Request {
	return render.Request{
		Videos: []render.VideoInput{
			{
				URL:           "a.mp4",
				SequenceIndex: 0,
				Duration:      5,
				TrimStart:     floatPtr(1),
				TrimEnd:       floatPtr(6),
				TransitionOut: &render.TransitionOut{Type: "fade", Duration: 1},
			},
			{
				URL:           "b.mp4",
				SequenceIndex: 1,
				Duration:      4,
				Mute:          true,
			},
		},
		Audio: &render.AudioInput{
			URL:           "music.mp3",
			OffsetSeconds: 2,
			Volume:        0.8,
			TrimEnd:       6,
		},
		OutputFormat: "mp4",
	}
}

func TestRenderBuildsFilterGraph(t *testing.T) {
	runner := &mockRunner{written: []byte("rendered")}
	engine := NewEngine(WithCommandRunner(runner), WithWorkDir(t.TempDir()))

	out, err := engine.Render(context.Background(), sampleRequest(), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(out.Data) != "rendered" {
		t.Errorf("output data = %q, want %q", out.Data, "rendered")
	}
	// videoSpan 5+4-1, music ends at 8 and does not extend it.
	if out.DurationSeconds != 8 {
		t.Errorf("duration = %v, want 8", out.DurationSeconds)
	}

	graph := extractFilterGraph(t, runner.gotArgs)
	for _, want := range []string{
		"[0:v]trim=start=1:end=6,setpts=PTS-STARTPTS[v0]",
		"[1:a]atrim=start=0:end=4,asetpts=PTS-STARTPTS,volume=0[a1]",
		"[v0][v1]xfade=transition=fade:duration=1:offset=4[vx1]",
		"[a0][a1]acrossfade=d=1[ax1]",
		"volume=0.8,adelay=2000:all=1[music]",
		"[ax1][music]amix=inputs=2:duration=longest:normalize=0[amix]",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("filter graph missing %q\ngraph: %s", want, graph)
		}
	}
	if strings.Contains(graph, "silenceremove") {
		t.Errorf("unexpected silenceremove in graph: %s", graph)
	}
}

func TestRenderHardCutUsesConcat(t *testing.T) {
	runner := &mockRunner{written: []byte("x")}
	engine := NewEngine(WithCommandRunner(runner), WithWorkDir(t.TempDir()))

	req := sampleRequest()
	req.Videos[0].TransitionOut = nil
	req.Audio = nil

	out, err := engine.Render(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out.DurationSeconds != 9 {
		t.Errorf("duration = %v, want 9", out.DurationSeconds)
	}

	graph := extractFilterGraph(t, runner.gotArgs)
	if !strings.Contains(graph, "[v0][v1]concat=n=2:v=1:a=0[vx1]") {
		t.Errorf("expected concat join, got: %s", graph)
	}
	if strings.Contains(graph, "xfade") {
		t.Errorf("unexpected xfade in graph: %s", graph)
	}
}

func TestRenderRemoveSilence(t *testing.T) {
	runner := &mockRunner{written: []byte("x")}
	engine := NewEngine(WithCommandRunner(runner), WithWorkDir(t.TempDir()))

	req := sampleRequest()
	req.RemoveSilence = true

	if _, err := engine.Render(context.Background(), req, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	graph := extractFilterGraph(t, runner.gotArgs)
	if !strings.Contains(graph, "silenceremove=") {
		t.Errorf("expected silenceremove in graph: %s", graph)
	}
	if !strings.Contains(strings.Join(runner.gotArgs, " "), "-map [atrimmed]") {
		t.Errorf("expected final audio map to follow silenceremove, args: %v", runner.gotArgs)
	}
}

func TestRenderReportsPhases(t *testing.T) {
	runner := &mockRunner{written: []byte("x")}
	engine := NewEngine(WithCommandRunner(runner), WithWorkDir(t.TempDir()))

	var phases []render.Phase
	progress := func(phase render.Phase, fraction float64) {
		if len(phases) == 0 || phases[len(phases)-1] != phase {
			phases = append(phases, phase)
		}
	}

	if _, err := engine.Render(context.Background(), sampleRequest(), progress); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := []render.Phase{render.PhaseLoading, render.PhaseProcessing, render.PhaseFinalizing}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phases[%d] = %v, want %v", i, phases[i], want[i])
		}
	}
}

func TestRenderFailures(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		engine := NewEngine(WithCommandRunner(&mockRunner{}), WithWorkDir(t.TempDir()))
		_, err := engine.Render(context.Background(), render.Request{}, nil)
		assertPhase(t, err, render.PhaseLoading)
	})

	t.Run("ffmpeg failure", func(t *testing.T) {
		runner := &mockRunner{runErr: errors.New("exit status 1")}
		engine := NewEngine(WithCommandRunner(runner), WithWorkDir(t.TempDir()))
		_, err := engine.Render(context.Background(), sampleRequest(), nil)
		assertPhase(t, err, render.PhaseProcessing)
	})
}

func assertPhase(t *testing.T, err error, want render.Phase) {
	t.Helper()
	var engineErr *render.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("error = %v, want *render.EngineError", err)
	}
	if engineErr.Phase != want {
		t.Errorf("phase = %v, want %v", engineErr.Phase, want)
	}
}

func extractFilterGraph(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-filter_complex" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("no -filter_complex in args: %v", args)
	return ""
}
