package media

import "context"

// Kind distinguishes video sources from audio sources
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Fallback durations substituted when a source cannot be probed. The entity
// stays usable and the user can correct the length by re-trimming.
const (
	FallbackVideoSeconds = 8.0
	FallbackAudioSeconds = 10.0
)

// Prober resolves the true playable duration of a media source in seconds.
// Implementations never fail: on any error they return the fallback for the
// kind. Called once per clip or track at insertion time.
type Prober interface {
	Probe(ctx context.Context, sourceRef string, kind Kind) float64
}

// Fallback returns the substitute duration for a kind
func Fallback(kind Kind) float64 {
	if kind == KindAudio {
		return FallbackAudioSeconds
	}
	return FallbackVideoSeconds
}
