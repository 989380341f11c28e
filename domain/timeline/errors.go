package timeline

import "errors"

// Errors raised by timeline mutations. All are validation failures: the
// state is left unchanged when one is returned.
var (
	ErrBelowMinDuration = errors.New("duration below minimum")
	ErrNotFound         = errors.New("timeline entity not found")
	ErrLastClip         = errors.New("cannot remove the last remaining clip")
	ErrNoMediaAtTime    = errors.New("no media under the playhead")
)
