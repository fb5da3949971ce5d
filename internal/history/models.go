// Package history keeps finished animations and the encode jobs that
// produced them in the agent's SQLite database.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID             string    `json:"id"`
	FileName       string    `json:"file_name"`
	Size           int64     `json:"size"`
	FrameCount     int       `json:"frame_count"`
	AverageDelayMs int       `json:"average_delay_ms"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	CreatedAt      time.Time `json:"created_at"`
}

// Metadata describes an artifact offered to the history store.
type Metadata struct {
	FileName       string
	FrameCount     int
	AverageDelayMs int
	Width          int
	Height         int
}

// Stats summarises the stored entries.
type Stats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// Job is one encode run.
type Job struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	FrameCount int       `json:"frame_count"`
	Background string    `json:"background"`
	Progress   int       `json:"progress"`
	HistoryID  string    `json:"history_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Terminal reports whether the job has stopped.
func (j *Job) Terminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

func NewID() string {
	return uuid.NewString()
}

// DefaultFileName names an artifact after its creation time, e.g.
// animation_20240301T100000.gif.
func DefaultFileName(t time.Time) string {
	return fmt.Sprintf("animation_%s.gif", t.UTC().Format("20060102T150405"))
}
