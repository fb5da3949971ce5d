package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/framereel/framereel-agent/internal/editor"
	"github.com/framereel/framereel-agent/internal/encoder"
	"github.com/framereel/framereel-agent/internal/history"
	"github.com/framereel/framereel-agent/internal/logging"
)

var (
	ErrNoEncode    = errors.New("no encode is running")
	ErrClosed      = errors.New("studio is closed")
	ErrJobNotFound = errors.New("encode job not found")
	ErrNoEncoder   = errors.New("no encoder configured")
)

type EncodeOptions struct {
	Background encoder.Background
	// DefaultDelayMs overrides the studio default for frames without an
	// explicit duration. Zero keeps the studio default.
	DefaultDelayMs int
	// SkipHistory leaves the artifact out of the history store.
	SkipHistory bool
	// FileName names the history entry; empty means a timestamped name.
	FileName string
}

// Outcome is the result of a finished encode.
type Outcome struct {
	Job      *history.Job
	Artifact *encoder.Artifact
	Entry    *history.Entry
}

// StartEncode snapshots the current frames and encodes them in the
// background. Structural edits are refused until it finishes.
func (s *Studio) StartEncode(opts EncodeOptions) (*history.Job, error) {
	job, req, ctx, err := s.beginEncode(opts)
	if err != nil {
		return nil, err
	}

	started := *job
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runEncode(ctx, job, req, opts)
	}()
	return &started, nil
}

// Encode runs an encode to completion on the caller's goroutine.
func (s *Studio) Encode(ctx context.Context, opts EncodeOptions) (*Outcome, error) {
	job, req, jobCtx, err := s.beginEncode(opts)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, s.cancelRunning(job.ID))
	defer stop()

	return s.runEncode(jobCtx, job, req, opts)
}

// CancelEncode aborts the running encode. The job ends as cancelled.
func (s *Studio) CancelEncode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		return ErrNoEncode
	}
	s.running.cancel()
	return nil
}

// CurrentJob returns the running job, or the most recent one when idle.
func (s *Studio) CurrentJob() (*history.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running != nil {
		j := *s.running.job
		return &j, true
	}
	if s.lastJob != nil {
		j := *s.lastJob
		return &j, true
	}
	return nil, false
}

// Job looks up an encode job by ID.
func (s *Studio) Job(ctx context.Context, id string) (*history.Job, error) {
	if cur, ok := s.CurrentJob(); ok && cur.ID == id {
		return cur, nil
	}
	if s.jobs == nil {
		return nil, ErrJobNotFound
	}
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Jobs lists recent encode jobs, newest first.
func (s *Studio) Jobs(ctx context.Context, limit int) ([]*history.Job, error) {
	if s.jobs == nil {
		if cur, ok := s.CurrentJob(); ok {
			return []*history.Job{cur}, nil
		}
		return nil, nil
	}
	return s.jobs.ListJobs(ctx, limit)
}

func (s *Studio) beginEncode(opts EncodeOptions) (*history.Job, encoder.Request, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return nil, encoder.Request{}, nil, ErrClosed
	case s.encoder == nil:
		return nil, encoder.Request{}, nil, ErrNoEncoder
	case s.running != nil:
		return nil, encoder.Request{}, nil, ErrBusy
	case s.editor.Len() == 0:
		return nil, encoder.Request{}, nil, editor.ErrNoItems
	}

	delay := opts.DefaultDelayMs
	if delay == 0 {
		delay = s.delayMs
	}
	if !editor.ValidDuration(delay) {
		return nil, encoder.Request{}, nil, editor.ErrInvalidDuration
	}

	req := encoder.Request{
		Frames:     s.editor.Timeline(delay),
		Background: opts.Background,
	}

	now := time.Now()
	job := &history.Job{
		ID:         history.NewID(),
		Status:     history.JobStatusRunning,
		FrameCount: len(req.Frames),
		Background: opts.Background.String(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if s.jobs != nil {
		if err := s.jobs.CreateJob(context.Background(), job); err != nil {
			return nil, encoder.Request{}, nil, fmt.Errorf("create encode job: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = &runningJob{job: job, cancel: cancel}
	s.editor.Notifier().Notify()

	if s.logger != nil {
		logging.WithJobID(s.logger, job.ID).Info("encode started",
			"frames", job.FrameCount, "background", job.Background)
	}
	return job, req, ctx, nil
}

func (s *Studio) cancelRunning(id string) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.running != nil && s.running.job.ID == id {
			s.running.cancel()
		}
	}
}

// runEncode never touches the editor; a failed or cancelled encode leaves
// the session exactly as it was.
func (s *Studio) runEncode(ctx context.Context, job *history.Job, req encoder.Request, opts EncodeOptions) (*Outcome, error) {
	logger := s.logger
	if logger != nil {
		logger = logging.WithJobID(logger, job.ID)
	}

	lastPct := -1
	art, err := s.encoder.Encode(ctx, req, func(done, total int) {
		pct := done * 100 / total
		if pct == lastPct {
			return
		}
		lastPct = pct
		s.setProgress(job.ID, pct)
	})
	if err != nil {
		status := history.JobStatusFailed
		if errors.Is(err, encoder.ErrAborted) {
			status = history.JobStatusCancelled
		}
		s.finish(job.ID, status, "", err.Error())
		if logger != nil {
			logger.Warn("encode ended without output", "status", status, "error", err)
		}
		return nil, err
	}

	out := &Outcome{Artifact: art}
	historyID := ""
	if s.history != nil && !opts.SkipHistory {
		entry, err := s.history.Save(context.Background(), art.Data, history.Metadata{
			FileName:       opts.FileName,
			FrameCount:     art.FrameCount,
			AverageDelayMs: art.AverageDelayMs,
			Width:          art.Width,
			Height:         art.Height,
		})
		if err != nil {
			// The animation is still returned; history is best effort.
			if logger != nil {
				logger.Warn("failed to save to history", "error", err)
			}
		} else {
			out.Entry = entry
			historyID = entry.ID
		}
	}

	out.Job = s.finish(job.ID, history.JobStatusCompleted, historyID, "")
	if logger != nil {
		logger.Info("encode completed",
			"frames", art.FrameCount,
			"bytes", len(art.Data),
			"history_id", historyID)
	}
	return out, nil
}

func (s *Studio) setProgress(id string, pct int) {
	s.mu.Lock()
	if s.running == nil || s.running.job.ID != id {
		s.mu.Unlock()
		return
	}
	s.running.job.Progress = pct
	s.running.job.UpdatedAt = time.Now()
	s.mu.Unlock()

	if s.jobs != nil {
		if err := s.jobs.UpdateJobProgress(context.Background(), id, pct); err != nil && s.logger != nil {
			s.logger.Warn("failed to record encode progress", "job_id", id, "error", err)
		}
	}
	s.editor.Notifier().Notify()
}

func (s *Studio) finish(id, status, historyID, errMsg string) *history.Job {
	s.mu.Lock()
	job := s.running.job
	s.running.cancel()
	s.running = nil

	job.Status = status
	job.Error = errMsg
	job.HistoryID = historyID
	job.UpdatedAt = time.Now()
	if status == history.JobStatusCompleted {
		job.Progress = 100
	}
	s.lastJob = job
	snapshot := *job
	s.mu.Unlock()

	if s.jobs != nil {
		var err error
		if status == history.JobStatusCompleted {
			err = s.jobs.CompleteJob(context.Background(), id, historyID)
		} else {
			err = s.jobs.UpdateJobStatus(context.Background(), id, status, errMsg)
		}
		if err != nil && s.logger != nil {
			s.logger.Warn("failed to record encode result", "job_id", id, "error", err)
		}
	}
	s.editor.Notifier().Notify()
	return &snapshot
}
