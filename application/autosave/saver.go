package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reelcut/domain/draft"
)

// DefaultDebounce is how long after the last mutation a draft save fires
const DefaultDebounce = 500 * time.Millisecond

// SnapshotFunc captures the current editor state as a draft. It must take
// the session lock itself.
type SnapshotFunc func() *draft.Draft

// Saver debounces draft persistence: every mutation resets a timer, and the
// snapshot is written once the editor has been quiet for the debounce
// window. Saves are fire-and-forget; failures are logged, never surfaced.
type Saver struct {
	store     draft.Store
	snapshot  SnapshotFunc
	projectID string
	debounce  time.Duration
	logger    zerolog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	dirty  bool
	closed bool
}

// Option is a functional option for configuring the Saver
type Option func(*Saver)

// WithDebounce overrides the quiet window before a save
func WithDebounce(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger attaches a structured logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Saver) {
		s.logger = logger
	}
}

// New creates a saver for one project's editing session
func New(store draft.Store, snapshot SnapshotFunc, projectID string, opts ...Option) *Saver {
	s := &Saver{
		store:     store,
		snapshot:  snapshot,
		projectID: projectID,
		debounce:  DefaultDebounce,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Changed schedules a save after the debounce window. Registered as the
// editor's mutation hook; safe to call from under the session lock because
// the save itself runs on the timer goroutine.
func (s *Saver) Changed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.Flush(context.Background())
	})
}

// Flush writes the current snapshot immediately if there are unsaved
// changes. A failed write leaves the saver dirty so a later flush retries.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.closed || !s.dirty {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	s.mu.Unlock()

	d := s.snapshot()
	if err := s.store.Save(ctx, s.projectID, d); err != nil {
		s.logger.Warn().Err(err).Str("project", s.projectID).Msg("draft save failed")
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}

// Exported marks the saver clean after the stored draft has been cleared by
// a successful export. Any pending save is cancelled and the close-time
// flush is suppressed until the next mutation, so the exported draft stays
// cleared.
func (s *Saver) Exported() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.dirty = false
}

// Discard drops any pending save and deletes the stored draft
func (s *Saver) Discard(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.dirty = false
	s.mu.Unlock()

	return s.store.Delete(ctx, s.projectID)
}

// Close stops the timer and writes a final snapshot so no edits are lost
// when the editor exits.
func (s *Saver) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.Flush(ctx)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
