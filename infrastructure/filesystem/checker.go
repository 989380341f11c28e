package filesystem

import (
	"os"
	"strings"

	"reelcut/domain/media"
)

// Checker implements media.SourceChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the source is a readable local file or a URL
func (c *Checker) Exists(sourceRef string) bool {
	if isRemote(sourceRef) {
		return true
	}
	_, err := os.Stat(sourceRef)
	return err == nil
}

// Size returns the local file size in bytes, or 0 for URLs and errors
func (c *Checker) Size(sourceRef string) int64 {
	if isRemote(sourceRef) {
		return 0
	}
	info, err := os.Stat(sourceRef)
	if err != nil {
		return 0
	}
	return info.Size()
}

func isRemote(sourceRef string) bool {
	return strings.HasPrefix(sourceRef, "http://") || strings.HasPrefix(sourceRef, "https://")
}

// Ensure Checker implements media.SourceChecker
var _ media.SourceChecker = (*Checker)(nil)
