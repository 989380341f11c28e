package media

// SourceChecker verifies media sources before they enter a timeline.
// Remote sources (http URLs) are always considered present.
type SourceChecker interface {
	// Exists reports whether the source can be read
	Exists(sourceRef string) bool

	// Size returns the source's size in bytes, or 0 when unknown
	Size(sourceRef string) int64
}
