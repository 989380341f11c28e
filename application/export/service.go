package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"reelcut/domain/draft"
	"reelcut/domain/render"
	"reelcut/domain/timeline"
)

// DefaultOutputFormat is the container handed to the concatenation engine
const DefaultOutputFormat = "mp4"

// Service orchestrates the export workflow: build the concatenation
// contract from the timeline, invoke the engine, persist and register the
// rendered composition, then clear the draft. On failure the draft is left
// intact so the edit can be retried without rebuilding the timeline.
type Service struct {
	engine    render.Engine
	registrar render.Registrar
	drafts    draft.Store
	output    io.Writer
	logger    zerolog.Logger
}

// NewService creates an export service
func NewService(engine render.Engine, registrar render.Registrar, drafts draft.Store, output io.Writer, logger zerolog.Logger) *Service {
	return &Service{
		engine:    engine,
		registrar: registrar,
		drafts:    drafts,
		output:    output,
		logger:    logger,
	}
}

// Input contains the export parameters
type Input struct {
	ProjectID     string
	AspectRatio   string // e.g. "9:16" for vertical clips
	RemoveSilence bool
	OutputFormat  string // defaults to mp4
	Progress      render.ProgressFunc
}

// Result contains the outcome of a successful export
type Result struct {
	URL             string
	DurationSeconds float64
	Size            int
}

// BuildRequest converts the editing state into the engine's input contract:
// one ordered video input per clip and at most one audio input.
func BuildRequest(s *timeline.State, removeSilence bool, outputFormat string) (render.Request, error) {
	if len(s.Clips) == 0 {
		return render.Request{}, fmt.Errorf("nothing to export: the timeline has no clips")
	}
	if outputFormat == "" {
		outputFormat = DefaultOutputFormat
	}

	req := render.Request{
		RemoveSilence: removeSilence,
		OutputFormat:  outputFormat,
	}

	for i, c := range s.Clips {
		if err := c.Validate(); err != nil {
			return render.Request{}, fmt.Errorf("clip %d: %w", i, err)
		}
		in := render.VideoInput{
			URL:           c.SourceRef,
			SequenceIndex: i,
			Duration:      c.Seconds(),
			Mute:          c.Muted,
		}
		if c.TrimStart > 0 || c.TrimEnd < c.OriginalDuration {
			start, end := c.TrimStart, c.TrimEnd
			in.TrimStart = &start
			in.TrimEnd = &end
		}
		// A transition on the final clip has no seam to apply to.
		if i < len(s.Clips)-1 && c.TransitionOut.Overlap() > 0 {
			in.TransitionOut = &render.TransitionOut{
				Type:     string(c.TransitionOut.Type),
				Duration: timeline.SeamOverlap(s.Clips, i),
			}
		}
		req.Videos = append(req.Videos, in)
	}

	if len(s.AudioTracks) > 0 {
		t := s.AudioTracks[0]
		if err := t.Validate(); err != nil {
			return render.Request{}, fmt.Errorf("audio track: %w", err)
		}
		req.Audio = &render.AudioInput{
			URL:           t.SourceRef,
			OffsetSeconds: t.Offset,
			Volume:        t.Volume,
			TrimStart:     t.TrimStart,
			TrimEnd:       t.TrimEnd,
		}
	}

	return req, nil
}

// Export runs the full workflow against the given editing state
func (s *Service) Export(ctx context.Context, state *timeline.State, input Input) (*Result, error) {
	req, err := BuildRequest(state, input.RemoveSilence, input.OutputFormat)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.output, "Rendering %d clip(s)...\n", len(req.Videos))
	started := time.Now()

	out, err := s.engine.Render(ctx, req, input.Progress)
	if err != nil {
		s.logger.Error().Err(err).Str("project", input.ProjectID).Msg("render failed")
		return nil, err
	}

	duration := out.DurationSeconds
	if duration == 0 {
		duration = state.TotalDuration()
	}

	filename := fmt.Sprintf("%s-%s.%s", input.ProjectID, started.UTC().Format("20060102-150405"), req.OutputFormat)
	url, err := s.registrar.StoreComposition(ctx, filename, out.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store rendered composition: %w", err)
	}

	asset := render.ComposedAsset{
		URL:             url,
		Kind:            "video",
		DurationSeconds: duration,
		AspectRatio:     input.AspectRatio,
		LinkID:          input.ProjectID,
	}
	if err := s.registrar.RegisterAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to register composed asset: %w", err)
	}

	// The finished edit supersedes the draft.
	if err := s.drafts.Delete(ctx, input.ProjectID); err != nil {
		s.logger.Warn().Err(err).Str("project", input.ProjectID).Msg("draft cleanup failed")
	}

	fmt.Fprintf(s.output, "Export finished in %s: %s\n", time.Since(started).Round(time.Millisecond), url)

	return &Result{
		URL:             url,
		DurationSeconds: duration,
		Size:            len(out.Data),
	}, nil
}
