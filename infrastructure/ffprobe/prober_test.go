package ffprobe

import (
	"context"
	"errors"
	"testing"

	"reelcut/domain/media"
)

// mockRunner returns canned output
type mockRunner struct {
	output []byte
	err    error

	gotName string
	gotArgs []string
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.gotName = name
	m.gotArgs = args
	return m.output, m.err
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		output []byte
		err    error
		kind   media.Kind
		want   float64
	}{
		{
			name:   "valid video duration",
			output: []byte(`{"format":{"duration":"12.480000"}}`),
			kind:   media.KindVideo,
			want:   12.48,
		},
		{
			name:   "valid audio duration",
			output: []byte(`{"format":{"duration":"187.2"}}`),
			kind:   media.KindAudio,
			want:   187.2,
		},
		{
			name: "command failure falls back for video",
			err:  errors.New("exit status 1"),
			kind: media.KindVideo,
			want: media.FallbackVideoSeconds,
		},
		{
			name: "command failure falls back for audio",
			err:  errors.New("exit status 1"),
			kind: media.KindAudio,
			want: media.FallbackAudioSeconds,
		},
		{
			name:   "malformed json falls back",
			output: []byte(`not json`),
			kind:   media.KindVideo,
			want:   media.FallbackVideoSeconds,
		},
		{
			name:   "missing duration falls back",
			output: []byte(`{"format":{}}`),
			kind:   media.KindVideo,
			want:   media.FallbackVideoSeconds,
		},
		{
			name:   "zero duration falls back",
			output: []byte(`{"format":{"duration":"0.0"}}`),
			kind:   media.KindAudio,
			want:   media.FallbackAudioSeconds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{output: tt.output, err: tt.err}
			prober := NewProber(WithCommandRunner(runner))

			got := prober.Probe(context.Background(), "clip.mp4", tt.kind)
			if got != tt.want {
				t.Errorf("Probe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbeCommandArgs(t *testing.T) {
	runner := &mockRunner{output: []byte(`{"format":{"duration":"3.0"}}`)}
	prober := NewProber(WithCommandRunner(runner), WithFFprobePath("/opt/bin/ffprobe"))

	prober.Probe(context.Background(), "media/take-1.mov", media.KindVideo)

	if runner.gotName != "/opt/bin/ffprobe" {
		t.Errorf("command = %q, want /opt/bin/ffprobe", runner.gotName)
	}
	wantArgs := []string{"-v", "quiet", "-print_format", "json", "-show_format", "media/take-1.mov"}
	if len(runner.gotArgs) != len(wantArgs) {
		t.Fatalf("args = %v, want %v", runner.gotArgs, wantArgs)
	}
	for i, arg := range wantArgs {
		if runner.gotArgs[i] != arg {
			t.Errorf("args[%d] = %q, want %q", i, runner.gotArgs[i], arg)
		}
	}
}
