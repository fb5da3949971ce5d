package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	ErrNotFound = errors.New("history entry not found")
	ErrEmpty    = errors.New("artifact is empty")
	ErrTooLarge = errors.New("artifact exceeds the history size limit")
)

// Limits bound the store. The oldest entries are evicted until both hold.
type Limits struct {
	MaxItems int
	MaxBytes int64
}

type Service struct {
	repo   Repository
	limits Limits
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, limits Limits, logger *slog.Logger) *Service {
	return &Service{repo: repo, limits: limits, logger: logger, now: time.Now}
}

// Save stores an artifact as the newest entry and evicts the oldest
// entries that no longer fit.
func (s *Service) Save(ctx context.Context, data []byte, meta Metadata) (*Entry, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if s.limits.MaxBytes > 0 && int64(len(data)) > s.limits.MaxBytes {
		return nil, fmt.Errorf("%w: %s > %s", ErrTooLarge,
			humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(s.limits.MaxBytes)))
	}

	now := s.now()
	entry := &Entry{
		ID:             NewID(),
		FileName:       meta.FileName,
		Size:           int64(len(data)),
		FrameCount:     meta.FrameCount,
		AverageDelayMs: meta.AverageDelayMs,
		Width:          meta.Width,
		Height:         meta.Height,
		CreatedAt:      now,
	}
	if entry.FileName == "" {
		entry.FileName = DefaultFileName(now)
	}

	if err := s.repo.CreateEntry(ctx, entry, data); err != nil {
		return nil, fmt.Errorf("store history entry: %w", err)
	}

	evicted, err := s.evict(ctx)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("history entry saved",
			"history_id", entry.ID,
			"file_name", entry.FileName,
			"size", humanize.IBytes(uint64(entry.Size)),
			"evicted", evicted)
	}
	return entry, nil
}

// evict drops the oldest entries beyond the item and byte limits.
func (s *Service) evict(ctx context.Context) (int, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("list history: %w", err)
	}

	var total int64
	evicted := 0
	for i, e := range entries {
		total += e.Size
		overCount := s.limits.MaxItems > 0 && i >= s.limits.MaxItems
		overBytes := s.limits.MaxBytes > 0 && total > s.limits.MaxBytes
		if !overCount && !overBytes {
			continue
		}
		if err := s.repo.DeleteEntry(ctx, e.ID); err != nil {
			return evicted, fmt.Errorf("evict history entry %s: %w", e.ID, err)
		}
		evicted++
	}
	return evicted, nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	return s.repo.ListEntries(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// Data returns an entry together with its bytes.
func (s *Service) Data(ctx context.Context, id string) (*Entry, []byte, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.repo.GetEntryData(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, ErrNotFound
	}
	return e, data, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("history entry deleted", "history_id", id)
	}
	return nil
}

// Clear removes every entry and returns how many there were.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteAllEntries(ctx)
	if err != nil {
		return 0, err
	}
	if s.logger != nil {
		s.logger.Info("history cleared", "count", n)
	}
	return n, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.EntryStats(ctx)
}

func (s *Service) Limits() Limits {
	return s.limits
}
