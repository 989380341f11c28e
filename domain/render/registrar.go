package render

import "context"

// ComposedAsset is the metadata recorded for a rendered composition so the
// owning project can retrieve it from the gallery.
type ComposedAsset struct {
	URL             string  `json:"url"`
	Kind            string  `json:"kind"`
	DurationSeconds float64 `json:"durationSeconds"`
	AspectRatio     string  `json:"aspectRatio"`
	LinkID          string  `json:"linkId"`
}

// Registrar persists a rendered composition externally and records it as a
// composed asset linked back to the originating project.
type Registrar interface {
	// StoreComposition uploads the rendered blob under the given filename
	// and returns its retrievable URL
	StoreComposition(ctx context.Context, filename string, data []byte) (string, error)

	// RegisterAsset records the composed asset's metadata
	RegisterAsset(ctx context.Context, asset ComposedAsset) error
}
