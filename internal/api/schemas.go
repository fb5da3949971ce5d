package api

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/framereel/framereel-agent/internal/history"
	"github.com/framereel/framereel-agent/internal/studio"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ImportResponse struct {
	Mode     string `json:"mode"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Frames   int    `json:"frames"`
}

type CommandResponse struct {
	Result   studio.Result `json:"result"`
	Revision uint64        `json:"revision"`
}

type ShortcutRequest struct {
	Key string `json:"key"`
}

type EncodeRequest struct {
	Background     string `json:"background,omitempty"`
	DefaultDelayMs int    `json:"default_delay_ms,omitempty"`
	FileName       string `json:"file_name,omitempty"`
	SkipHistory    bool   `json:"skip_history,omitempty"`
}

type JobResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	FrameCount int    `json:"frame_count"`
	Background string `json:"background"`
	Progress   int    `json:"progress"`
	HistoryID  string `json:"history_id,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type EntryResponse struct {
	ID             string `json:"id"`
	FileName       string `json:"file_name"`
	Size           int64  `json:"size"`
	SizeHuman      string `json:"size_human"`
	FrameCount     int    `json:"frame_count"`
	AverageDelayMs int    `json:"average_delay_ms"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	CreatedAt      string `json:"created_at"`
}

type HistoryResponse struct {
	Entries    []EntryResponse `json:"entries"`
	Count      int             `json:"count"`
	TotalBytes int64           `json:"total_bytes"`
	TotalHuman string          `json:"total_human"`
	MaxItems   int             `json:"max_items"`
	MaxBytes   int64           `json:"max_bytes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func JobToResponse(j *history.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		Status:     j.Status,
		FrameCount: j.FrameCount,
		Background: j.Background,
		Progress:   j.Progress,
		HistoryID:  j.HistoryID,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}

func EntryToResponse(e *history.Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		FileName:       e.FileName,
		Size:           e.Size,
		SizeHuman:      humanize.IBytes(uint64(e.Size)),
		FrameCount:     e.FrameCount,
		AverageDelayMs: e.AverageDelayMs,
		Width:          e.Width,
		Height:         e.Height,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
}
