package timeline

import (
	"errors"
	"testing"
)

func TestSplitClip(t *testing.T) {
	tests := []struct {
		name      string
		trimStart float64
		trimEnd   float64
		mediaAt   float64
		wantErr   bool
	}{
		{name: "middle split", trimStart: 1, trimEnd: 9, mediaAt: 5},
		{name: "split at minimum from start", trimStart: 1, trimEnd: 9, mediaAt: 1.5},
		{name: "split at minimum from end", trimStart: 1, trimEnd: 9, mediaAt: 8.5},
		{name: "too close to start", trimStart: 1, trimEnd: 9, mediaAt: 1.2, wantErr: true},
		{name: "too close to end", trimStart: 1, trimEnd: 9, mediaAt: 8.8, wantErr: true},
		{name: "clip shorter than two minimums", trimStart: 0, trimEnd: 0.8, mediaAt: 0.4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := clipWith(tt.trimStart, tt.trimEnd, 10, &TransitionSpec{Type: TransitionFade, Duration: 1})
			orig.Muted = true

			left, right, err := SplitClip(orig, tt.mediaAt)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SplitClip() expected error, got nil")
				}
				if !errors.Is(err, ErrBelowMinDuration) {
					t.Errorf("SplitClip() error = %v, want ErrBelowMinDuration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitClip() unexpected error: %v", err)
			}

			// Round trip: rejoining the halves reconstructs the original range.
			if left.TrimStart != tt.trimStart || right.TrimEnd != tt.trimEnd {
				t.Errorf("halves cover [%v,%v], want [%v,%v]", left.TrimStart, right.TrimEnd, tt.trimStart, tt.trimEnd)
			}
			if left.TrimEnd != tt.mediaAt || right.TrimStart != tt.mediaAt {
				t.Errorf("seam at %v/%v, want %v", left.TrimEnd, right.TrimStart, tt.mediaAt)
			}
			if !almostEqual(left.Seconds()+right.Seconds(), orig.Seconds()) {
				t.Errorf("halves sum to %v, original was %v", left.Seconds()+right.Seconds(), orig.Seconds())
			}

			if left.SourceRef != orig.SourceRef || right.SourceRef != orig.SourceRef {
				t.Error("halves must share the original source")
			}
			if !left.Muted || !right.Muted {
				t.Error("halves must inherit the mute flag")
			}
			if left.TransitionOut != nil {
				t.Error("left half must not inherit the outgoing transition")
			}
			if right.TransitionOut == nil || right.TransitionOut.Type != TransitionFade {
				t.Error("right half must inherit the outgoing transition")
			}
			if left.ID == orig.ID || right.ID == orig.ID || left.ID == right.ID {
				t.Error("halves must carry fresh distinct IDs")
			}
		})
	}
}

func TestSplitAudioTrack(t *testing.T) {
	orig := trackWith(6, 1, 9, 10)
	orig.Volume = 0.7

	left, right, err := SplitAudioTrack(orig, 4)
	if err != nil {
		t.Fatalf("SplitAudioTrack() unexpected error: %v", err)
	}

	if left.Offset != 6 {
		t.Errorf("left offset = %v, want 6", left.Offset)
	}
	// Right half starts where the left half ends on the timeline.
	if !almostEqual(right.Offset, 9) {
		t.Errorf("right offset = %v, want 9", right.Offset)
	}
	if left.Volume != 0.7 || right.Volume != 0.7 {
		t.Error("halves must inherit the volume")
	}
	if !almostEqual(left.End(), right.Offset) {
		t.Errorf("left ends at %v but right starts at %v", left.End(), right.Offset)
	}
}

func TestSplitAudioTrackBelowMinimum(t *testing.T) {
	orig := trackWith(0, 0, 0.8, 10)

	if _, _, err := SplitAudioTrack(orig, 0.4); !errors.Is(err, ErrBelowMinDuration) {
		t.Errorf("SplitAudioTrack() error = %v, want ErrBelowMinDuration", err)
	}
}
