// Package studio owns one editing session: it serialises gestures onto the
// editor, runs encodes in the background and hands finished animations to
// the history store.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/framereel/framereel-agent/internal/editor"
	"github.com/framereel/framereel-agent/internal/encoder"
	"github.com/framereel/framereel-agent/internal/history"
	"github.com/framereel/framereel-agent/internal/ingest"
)

// ErrBusy is returned for edits that would change the frames an in-flight
// encode is reading.
var ErrBusy = errors.New("an encode is in progress")

// HistoryStore receives finished animations.
type HistoryStore interface {
	Save(ctx context.Context, data []byte, meta history.Metadata) (*history.Entry, error)
}

// JobStore persists encode job state.
type JobStore interface {
	CreateJob(ctx context.Context, job *history.Job) error
	GetJob(ctx context.Context, id string) (*history.Job, error)
	ListJobs(ctx context.Context, limit int) ([]*history.Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	CompleteJob(ctx context.Context, id, historyID string) error
}

// Studio is safe for concurrent use. State-change listeners run while the
// studio lock is held and must not call back into the studio; they should
// signal another goroutine instead.
type Studio struct {
	mu      sync.Mutex
	editor  *editor.Editor
	encoder encoder.Encoder
	history HistoryStore
	jobs    JobStore
	delayMs int
	logger  *slog.Logger
	running *runningJob
	lastJob *history.Job
	wg      sync.WaitGroup
	closed  bool
}

type runningJob struct {
	job    *history.Job
	cancel context.CancelFunc
}

type Options struct {
	Encoder encoder.Encoder
	// History may be nil, in which case finished animations are not kept.
	History HistoryStore
	Jobs    JobStore
	// DefaultDelayMs applies to frames without an explicit duration.
	DefaultDelayMs int
	Logger         *slog.Logger
	EditorOptions  []editor.Option
}

func New(opts Options) *Studio {
	delay := opts.DefaultDelayMs
	if !editor.ValidDuration(delay) {
		delay = editor.DefaultDurationMs
	}
	return &Studio{
		editor:  editor.New(nil, opts.Logger, opts.EditorOptions...),
		encoder: opts.Encoder,
		history: opts.History,
		jobs:    opts.Jobs,
		delayMs: delay,
		logger:  opts.Logger,
	}
}

// Subscribe registers a state-change listener.
func (s *Studio) Subscribe(fn func()) (cancel func()) {
	return s.editor.Notifier().Subscribe(fn)
}

// Dispatch runs one named command.
func (s *Studio) Dispatch(cmd Command) (Result, error) {
	h, err := lookup(cmd.Name)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if h.structural && s.running != nil {
		return Result{}, ErrBusy
	}
	res, err := h.run(s.editor, cmd)
	res.Command = cmd.Name
	if err != nil {
		if s.logger != nil && !editor.IsUserError(err) {
			s.logger.Error("command failed", "command", cmd.Name, "error", err)
		}
		return Result{Command: cmd.Name}, err
	}
	return res, nil
}

// Shortcut runs the command bound to a key chord such as "ctrl+z".
func (s *Studio) Shortcut(key string) (Result, error) {
	name, ok := shortcuts[key]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownShortcut, key)
	}
	return s.Dispatch(Command{Name: name})
}

// Import loads filtered frames, either replacing the session or appending
// to it. It returns the number of frames added.
func (s *Studio) Import(res ingest.Result, appendMode bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running != nil {
		return 0, ErrBusy
	}
	if len(res.Items) == 0 {
		return 0, editor.ErrNoItems
	}

	if appendMode && s.editor.Len() > 0 {
		n, err := s.editor.AppendImport(res.Items)
		if err == nil && s.logger != nil {
			s.logger.Info("frames appended", "count", n, "skipped", res.Skipped)
		}
		return n, err
	}
	if err := s.editor.Load(res.Items); err != nil {
		return 0, err
	}
	if s.logger != nil {
		s.logger.Info("frames loaded", "count", len(res.Items), "skipped", res.Skipped)
	}
	return len(res.Items), nil
}

// Reset clears the session.
func (s *Studio) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running != nil {
		return ErrBusy
	}
	s.editor.Reset()
	return nil
}

// Frame returns the frame at index.
func (s *Studio) Frame(index int) (*editor.FrameItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Item(index)
}

func (s *Studio) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running != nil
}

func (s *Studio) DefaultDelayMs() int {
	return s.delayMs
}

// Close cancels a running encode and waits for it to finish.
func (s *Studio) Close() {
	s.mu.Lock()
	s.closed = true
	if s.running != nil {
		s.running.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
