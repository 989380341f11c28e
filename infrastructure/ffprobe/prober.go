package ffprobe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"reelcut/domain/media"
)

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// probeResult is the subset of ffprobe's JSON output we read
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Prober implements media.Prober using ffprobe. It never fails: any probe
// error resolves to the fallback duration for the media kind.
type Prober struct {
	ffprobePath string
	runner      CommandRunner
	timeout     time.Duration
	logger      zerolog.Logger
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) ProberOption {
	return func(p *Prober) {
		p.ffprobePath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// WithTimeout bounds a single probe invocation
func WithTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates an ffprobe-based duration prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
		timeout:     10 * time.Second,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe implements media.Prober
func (p *Prober) Probe(ctx context.Context, sourceRef string, kind media.Kind) float64 {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		sourceRef,
	}
	out, err := p.runner.Output(ctx, p.ffprobePath, args...)
	if err != nil {
		return p.fallback(sourceRef, kind, err)
	}

	var result probeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return p.fallback(sourceRef, kind, err)
	}

	seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil || seconds <= 0 {
		return p.fallback(sourceRef, kind, err)
	}
	return seconds
}

func (p *Prober) fallback(sourceRef string, kind media.Kind, err error) float64 {
	fb := media.Fallback(kind)
	p.logger.Warn().Err(err).Str("source", sourceRef).Float64("fallback", fb).Msg("duration probe failed")
	return fb
}

// VerifyInstalled checks that ffprobe is available
func (p *Prober) VerifyInstalled(ctx context.Context) error {
	_, err := p.runner.Output(ctx, p.ffprobePath, "-version")
	return err
}

// Ensure Prober implements media.Prober
var _ media.Prober = (*Prober)(nil)
