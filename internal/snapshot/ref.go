// Package snapshot captures accessibility snapshots of a page and its
// nested frames, and resolves the element references they contain back
// to live driver handles.
package snapshot

import (
	"errors"
	"regexp"
	"strconv"
)

var (
	// ErrNoSnapshot is returned when a reference is resolved before any
	// snapshot has been captured (or after it was cleared by navigation).
	ErrNoSnapshot = errors.New("no snapshot captured, take one first")

	// ErrFrameMissing is returned when a reference names a frame index
	// that does not exist in the current snapshot.
	ErrFrameMissing = errors.New("frame does not exist")
)

var framePrefixRe = regexp.MustCompile(`^f(\d+)(.+)$`)

// EncodeRef namespaces a frame-local element id by frame index.
// Index 0 is the main frame and carries no prefix, so refs captured on
// single-frame pages stay short.
func EncodeRef(frameIndex int, localID string) string {
	if frameIndex == 0 {
		return localID
	}
	return "f" + strconv.Itoa(frameIndex) + localID
}

// DecodeRef splits a reference into its frame index and frame-local id.
// A missing prefix means the main frame. The codec never checks that
// the frame actually exists; that is the resolver's job.
func DecodeRef(ref string) (frameIndex int, localID string) {
	m := framePrefixRe.FindStringSubmatch(ref)
	if m == nil {
		return 0, ref
	}
	n, _ := strconv.Atoi(m[1])
	return n, m[2]
}
