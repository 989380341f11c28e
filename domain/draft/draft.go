package draft

import (
	"context"
	"errors"
	"time"

	"reelcut/domain/timeline"
)

// ErrNotFound is returned when no draft exists for a project
var ErrNotFound = errors.New("no draft for project")

// Draft is the persisted snapshot of an in-progress editing session. It is
// the JSON payload stored under draft:{projectID}. TotalDuration is stored
// for display but recomputed from the entities on restore.
type Draft struct {
	Clips           []*timeline.Clip       `json:"clips"`
	AudioTracks     []*timeline.AudioTrack `json:"audioTracks"`
	CurrentTime     float64                `json:"currentTime"`
	SelectedClipID  string                 `json:"selectedClipId"`
	SelectedAudioID string                 `json:"selectedAudioId"`
	TotalDuration   float64                `json:"totalDuration"`
	SavedAt         time.Time              `json:"savedAt"`
}

// Snapshot captures the restorable parts of an editor state
func Snapshot(s *timeline.State) *Draft {
	return &Draft{
		Clips:           s.Clips,
		AudioTracks:     s.AudioTracks,
		CurrentTime:     s.CurrentTime,
		SelectedClipID:  s.SelectedClipID,
		SelectedAudioID: s.SelectedAudioID,
		TotalDuration:   s.TotalDuration(),
		SavedAt:         time.Now().UTC(),
	}
}

// Restore rebuilds an editor state from the snapshot. The playhead is
// clamped to the recomputed total duration to guard against stale stored
// derivations.
func (d *Draft) Restore() *timeline.State {
	s := timeline.NewState()
	s.Clips = d.Clips
	s.AudioTracks = d.AudioTracks
	s.SelectedClipID = d.SelectedClipID
	s.SelectedAudioID = d.SelectedAudioID

	total := s.TotalDuration()
	s.CurrentTime = d.CurrentTime
	if s.CurrentTime > total {
		s.CurrentTime = total
	}
	if s.CurrentTime < 0 {
		s.CurrentTime = 0
	}
	return s
}

// Store is the durable key-value boundary for drafts, scoped by project
type Store interface {
	// Save persists the draft for a project, replacing any previous one
	Save(ctx context.Context, projectID string, d *Draft) error

	// Load retrieves the draft for a project, or ErrNotFound
	Load(ctx context.Context, projectID string) (*Draft, error)

	// Delete discards the draft for a project. Deleting a missing draft
	// is not an error.
	Delete(ctx context.Context, projectID string) error

	// List returns the project IDs that currently have drafts
	List(ctx context.Context) ([]string, error)
}
