package render

import (
	"context"
	"fmt"
)

// Phase tags the stage an engine reports progress for, or the stage a
// failure occurred in.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseProcessing Phase = "processing"
	PhaseFinalizing Phase = "finalizing"
	PhaseError      Phase = "error"
)

// TransitionOut mirrors the clip transition on the engine's wire contract
type TransitionOut struct {
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

// VideoInput is one ordered entry of the concatenation contract
type VideoInput struct {
	URL           string         `json:"url"`
	SequenceIndex int            `json:"sequenceIndex"`
	Duration      float64        `json:"duration"`
	TrimStart     *float64       `json:"trimStart,omitempty"`
	TrimEnd       *float64       `json:"trimEnd,omitempty"`
	Mute          bool           `json:"mute,omitempty"`
	TransitionOut *TransitionOut `json:"transitionOut,omitempty"`
}

// AudioInput is the optional single narration entry of the contract
type AudioInput struct {
	URL           string  `json:"url"`
	OffsetSeconds float64 `json:"offsetSeconds"`
	Volume        float64 `json:"volume"`
	TrimStart     float64 `json:"trimStart"`
	TrimEnd       float64 `json:"trimEnd"`
}

// Request is the full input contract handed to the concatenation engine
type Request struct {
	Videos        []VideoInput `json:"videos"`
	Audio         *AudioInput  `json:"audio,omitempty"`
	RemoveSilence bool         `json:"removeSilence"`
	OutputFormat  string       `json:"outputFormat"`
}

// Output is the rendered composition returned by the engine
type Output struct {
	Data            []byte
	DurationSeconds float64
}

// ProgressFunc receives phase transitions and a completion fraction in [0,1]
type ProgressFunc func(phase Phase, fraction float64)

// Engine is the external concatenation engine boundary. Implementations
// render the composition described by the request into a single media blob.
type Engine interface {
	Render(ctx context.Context, req Request, progress ProgressFunc) (*Output, error)
}

// EngineError is a typed engine failure carrying the phase it occurred in
// and a human-readable message for the UI.
type EngineError struct {
	Phase   Phase
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render failed during %s: %s: %v", e.Phase, e.Message, e.Err)
	}
	return fmt.Sprintf("render failed during %s: %s", e.Phase, e.Message)
}

func (e *EngineError) Unwrap() error { return e.Err }
