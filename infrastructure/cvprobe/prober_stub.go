//go:build !cv

package cvprobe

import (
	"context"

	"github.com/rs/zerolog"

	"reelcut/domain/media"
)

// Prober is a pass-through when OpenCV is not available
// (requires building with -tags=cv for frame-accurate probing)
type Prober struct {
	next media.Prober
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithLogger is a no-op in stub mode
func WithLogger(logger zerolog.Logger) ProberOption {
	return func(p *Prober) {}
}

// NewProber creates a pass-through prober
func NewProber(next media.Prober, opts ...ProberOption) *Prober {
	return &Prober{next: next}
}

// Probe delegates to the wrapped prober
func (p *Prober) Probe(ctx context.Context, sourceRef string, kind media.Kind) float64 {
	return p.next.Probe(ctx, sourceRef, kind)
}

// Ensure Prober implements media.Prober
var _ media.Prober = (*Prober)(nil)
