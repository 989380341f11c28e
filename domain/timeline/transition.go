package timeline

import "fmt"

// TransitionType identifies the visual blend between two adjacent clips
type TransitionType string

// Supported transition types. None and Cut both mean a hard cut and
// contribute no overlap to the timeline.
const (
	TransitionNone        TransitionType = "none"
	TransitionCut         TransitionType = "cut"
	TransitionFade        TransitionType = "fade"
	TransitionDissolve    TransitionType = "dissolve"
	TransitionWipeLeft    TransitionType = "wipeleft"
	TransitionWipeRight   TransitionType = "wiperight"
	TransitionSlideLeft   TransitionType = "slideleft"
	TransitionSlideRight  TransitionType = "slideright"
	TransitionCircleOpen  TransitionType = "circleopen"
	TransitionCircleClose TransitionType = "circleclose"
	TransitionZoom        TransitionType = "zoom"
)

// TransitionDurations lists the selectable transition lengths in seconds
var TransitionDurations = []float64{0.3, 0.5, 1, 1.5, 2}

// TransitionSpec describes the transition out of a clip into the next one
type TransitionSpec struct {
	Type     TransitionType `json:"type"`
	Duration float64        `json:"duration"`
}

// ParseTransitionType validates and normalizes a transition type name
func ParseTransitionType(s string) (TransitionType, error) {
	switch TransitionType(s) {
	case TransitionNone, TransitionCut, TransitionFade, TransitionDissolve,
		TransitionWipeLeft, TransitionWipeRight, TransitionSlideLeft,
		TransitionSlideRight, TransitionCircleOpen, TransitionCircleClose,
		TransitionZoom:
		return TransitionType(s), nil
	}
	return "", fmt.Errorf("unknown transition type %q", s)
}

// NewTransitionSpec builds a spec, checking the duration against the
// selectable set
func NewTransitionSpec(typ TransitionType, duration float64) (*TransitionSpec, error) {
	if typ == TransitionNone || typ == TransitionCut {
		return nil, nil
	}
	for _, d := range TransitionDurations {
		if d == duration {
			return &TransitionSpec{Type: typ, Duration: duration}, nil
		}
	}
	return nil, fmt.Errorf("transition duration %.2fs is not one of the selectable lengths", duration)
}

// Overlap reports how many seconds the transition overlaps the next clip.
// A nil spec, a cut, or a none type contributes zero.
func (s *TransitionSpec) Overlap() float64 {
	if s == nil || s.Type == TransitionNone || s.Type == TransitionCut {
		return 0
	}
	return s.Duration
}
