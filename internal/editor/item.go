// Package editor holds the frame-sequence editing state of one session: the
// ordered frames, per-frame durations, the selection, the clipboard and the
// bounded undo log. Every mutation of the sequence remaps the index-keyed
// structures in the same step.
package editor

import (
	"github.com/google/uuid"
)

const (
	// DefaultDurationMs applies to frames with no explicit duration.
	DefaultDurationMs = 100
	MinDurationMs     = 50
	MaxDurationMs     = 2000
)

// FrameItem is one source image. It is never mutated after creation; the
// sequence only reorders, duplicates or drops pointers to it.
type FrameItem struct {
	ID   string
	Name string
	MIME string
	Data []byte
}

func NewFrameItem(name, mime string, data []byte) *FrameItem {
	return &FrameItem{
		ID:   uuid.NewString(),
		Name: name,
		MIME: mime,
		Data: data,
	}
}

// ValidDuration reports whether ms lies in the accepted duration range.
func ValidDuration(ms int) bool {
	return ms >= MinDurationMs && ms <= MaxDurationMs
}

// TimedFrame pairs a frame with the duration it is shown for.
type TimedFrame struct {
	Item       *FrameItem
	DurationMs int
}
