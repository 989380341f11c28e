package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"reelcut/domain/render"
)

// xfadeNames maps transition identifiers to ffmpeg xfade filter names
var xfadeNames = map[string]string{
	"fade":        "fade",
	"dissolve":    "dissolve",
	"wipeleft":    "wipeleft",
	"wiperight":   "wiperight",
	"slideleft":   "slideleft",
	"slideright":  "slideright",
	"circleopen":  "circleopen",
	"circleclose": "circleclose",
	"zoom":        "zoomin",
}

// Engine implements render.Engine by driving an ffmpeg filter_complex
// graph: per-input trim chains joined pairwise with concat or xfade,
// plus an optional delayed music bed mixed under the clip audio.
type Engine struct {
	ffmpegPath string
	runner     CommandRunner
	workDir    string
	logger     zerolog.Logger
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EngineOption {
	return func(e *Engine) {
		e.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = runner
	}
}

// WithWorkDir sets the directory render scratch files are created under
func WithWorkDir(dir string) EngineOption {
	return func(e *Engine) {
		e.workDir = dir
	}
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new FFmpeg-based concatenation engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Render implements render.Engine
func (e *Engine) Render(ctx context.Context, req render.Request, progress render.ProgressFunc) (*render.Output, error) {
	report(progress, render.PhaseLoading, 0)

	if len(req.Videos) == 0 {
		return nil, &render.EngineError{Phase: render.PhaseLoading, Message: "no video inputs"}
	}

	videos := make([]render.VideoInput, len(req.Videos))
	copy(videos, req.Videos)
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].SequenceIndex < videos[j].SequenceIndex
	})

	format := req.OutputFormat
	if format == "" {
		format = "mp4"
	}

	dir, err := os.MkdirTemp(e.workDir, "reelcut-render-*")
	if err != nil {
		return nil, &render.EngineError{Phase: render.PhaseLoading, Message: "could not create scratch directory", Err: err}
	}
	defer os.RemoveAll(dir)

	outPath := filepath.Join(dir, "composition."+format)
	args, duration := e.buildArgs(videos, req.Audio, req.RemoveSilence, format, outPath)
	report(progress, render.PhaseLoading, 1)

	e.logger.Debug().Strs("args", args).Msg("rendering composition")
	report(progress, render.PhaseProcessing, 0)
	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return nil, &render.EngineError{Phase: render.PhaseProcessing, Message: "ffmpeg concatenation failed", Err: err}
	}
	report(progress, render.PhaseProcessing, 1)

	report(progress, render.PhaseFinalizing, 0)
	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &render.EngineError{Phase: render.PhaseFinalizing, Message: "could not read rendered output", Err: err}
	}
	report(progress, render.PhaseFinalizing, 1)

	return &render.Output{Data: data, DurationSeconds: duration}, nil
}

// buildArgs assembles the full ffmpeg invocation and the expected
// composition duration. Inputs must already be in sequence order.
func (e *Engine) buildArgs(videos []render.VideoInput, audio *render.AudioInput, removeSilence bool, format, outPath string) ([]string, float64) {
	var args []string
	for _, v := range videos {
		args = append(args, "-i", v.URL)
	}
	if audio != nil {
		args = append(args, "-i", audio.URL)
	}

	var graph []string

	// Per-input trim chains normalized to zero-based timestamps.
	for i, v := range videos {
		start := 0.0
		if v.TrimStart != nil {
			start = *v.TrimStart
		}
		end := start + v.Duration
		graph = append(graph, fmt.Sprintf("[%d:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d]", i, ffFloat(start), ffFloat(end), i))

		achain := fmt.Sprintf("[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS", i, ffFloat(start), ffFloat(end))
		if v.Mute {
			achain += ",volume=0"
		}
		graph = append(graph, achain+fmt.Sprintf("[a%d]", i))
	}

	// Pairwise join: xfade/acrossfade when the outgoing clip carries a
	// transition, plain concat otherwise.
	cv, ca := "v0", "a0"
	pos := videos[0].Duration
	for i := 1; i < len(videos); i++ {
		prev := videos[i-1]
		name, overlap := xfadeFor(prev.TransitionOut)
		nextV, nextA := fmt.Sprintf("vx%d", i), fmt.Sprintf("ax%d", i)
		if overlap > 0 {
			graph = append(graph, fmt.Sprintf("[%s][v%d]xfade=transition=%s:duration=%s:offset=%s[%s]",
				cv, i, name, ffFloat(overlap), ffFloat(pos-overlap), nextV))
			graph = append(graph, fmt.Sprintf("[%s][a%d]acrossfade=d=%s[%s]", ca, i, ffFloat(overlap), nextA))
			pos += videos[i].Duration - overlap
		} else {
			graph = append(graph, fmt.Sprintf("[%s][v%d]concat=n=2:v=1:a=0[%s]", cv, i, nextV))
			graph = append(graph, fmt.Sprintf("[%s][a%d]concat=n=2:v=0:a=1[%s]", ca, i, nextA))
			pos += videos[i].Duration
		}
		cv, ca = nextV, nextA
	}

	duration := pos
	if audio != nil {
		musicIndex := len(videos)
		delayMS := int(audio.OffsetSeconds * 1000)
		graph = append(graph, fmt.Sprintf("[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS,volume=%s,adelay=%d:all=1[music]",
			musicIndex, ffFloat(audio.TrimStart), ffFloat(audio.TrimEnd), ffFloat(audio.Volume), delayMS))
		graph = append(graph, fmt.Sprintf("[%s][music]amix=inputs=2:duration=longest:normalize=0[amix]", ca))
		ca = "amix"

		audioEnd := audio.OffsetSeconds + (audio.TrimEnd - audio.TrimStart)
		if audioEnd > duration {
			duration = audioEnd
		}
	}

	if removeSilence {
		graph = append(graph, fmt.Sprintf("[%s]silenceremove=stop_periods=-1:stop_duration=0.5:stop_threshold=-40dB[atrimmed]", ca))
		ca = "atrimmed"
	}

	args = append(args,
		"-filter_complex", strings.Join(graph, ";"),
		"-map", "["+cv+"]",
		"-map", "["+ca+"]",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
	)
	if format == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, "-y", outPath)

	return args, duration
}

// xfadeFor resolves a transition to its xfade filter name and overlap.
// Unknown types degrade to a hard cut.
func xfadeFor(t *render.TransitionOut) (string, float64) {
	if t == nil || t.Duration <= 0 {
		return "", 0
	}
	name, ok := xfadeNames[t.Type]
	if !ok {
		return "", 0
	}
	return name, t.Duration
}

// ffFloat formats a seconds value the way ffmpeg filter args expect
func ffFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

// VerifyInstalled checks that ffmpeg is available
func (e *Engine) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// report guards against a nil progress callback
func report(progress render.ProgressFunc, phase render.Phase, fraction float64) {
	if progress != nil {
		progress(phase, fraction)
	}
}

// Ensure Engine implements render.Engine
var _ render.Engine = (*Engine)(nil)
