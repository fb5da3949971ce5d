package editor

import (
	"log/slog"
	"slices"

	"golang.org/x/text/language"
)

// Editor is the editing state of one session and the operations over it.
// It is not safe for concurrent use; callers serialise gestures.
type Editor struct {
	store     *Store
	clipboard []*FrameItem
	undo      *UndoLog
	menu      ContextMenu
	notifier  *Notifier
	locale    language.Tag
	logger    *slog.Logger
}

type Option func(*Editor)

// WithLocale sets the collation used when ordering frames by name.
func WithLocale(tag language.Tag) Option {
	return func(e *Editor) {
		e.locale = tag
	}
}

func WithUndoCapacity(capacity int) Option {
	return func(e *Editor) {
		e.undo = NewUndoLog(capacity)
	}
}

func New(notifier *Notifier, logger *slog.Logger, opts ...Option) *Editor {
	if notifier == nil {
		notifier = NewNotifier(logger)
	}
	e := &Editor{
		store:    newStore(),
		undo:     NewUndoLog(UndoCapacity),
		notifier: notifier,
		locale:   language.Und,
		logger:   logger,
	}
	e.menu.Close()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Notifier() *Notifier {
	return e.notifier
}

func (e *Editor) Len() int {
	return e.store.Len()
}

func (e *Editor) Items() []*FrameItem {
	return e.store.Items()
}

// Item returns the frame at i, or false when i is out of range.
func (e *Editor) Item(i int) (*FrameItem, bool) {
	if !e.store.validIndex(i) {
		return nil, false
	}
	return e.store.Item(i), true
}

func (e *Editor) Duration(i int) (int, bool) {
	return e.store.Duration(i)
}

func (e *Editor) EffectiveDuration(i int) int {
	return e.store.EffectiveDuration(i, DefaultDurationMs)
}

func (e *Editor) Durations() map[int]int {
	return e.store.Durations()
}

func (e *Editor) IsSelected(i int) bool {
	return e.store.IsSelected(i)
}

func (e *Editor) SelectedIndices() []int {
	return e.store.SelectedIndices()
}

func (e *Editor) Clipboard() []*FrameItem {
	return slices.Clone(e.clipboard)
}

func (e *Editor) CanUndo() bool {
	return e.undo.Len() > 0
}

func (e *Editor) UndoDepth() int {
	return e.undo.Len()
}

// LastUndoKind names the operation the next Undo would reverse.
func (e *Editor) LastUndoKind() (OpKind, bool) {
	rec, ok := e.undo.Peek()
	return rec.Kind, ok
}

func (e *Editor) Menu() ContextMenu {
	return e.menu
}

// Timeline returns the frames with their effective durations, using
// fallbackMs for frames without an explicit duration. The result shares
// frame pointers but no mutable state with the editor, so it may be handed
// to a long-running encode.
func (e *Editor) Timeline(fallbackMs int) []TimedFrame {
	if !ValidDuration(fallbackMs) {
		fallbackMs = DefaultDurationMs
	}
	out := make([]TimedFrame, e.store.Len())
	for i, item := range e.store.items {
		out[i] = TimedFrame{
			Item:       item,
			DurationMs: e.store.EffectiveDuration(i, fallbackMs),
		}
	}
	return out
}

// Snapshot is a read-only copy of the state for renderers.
type Snapshot struct {
	Revision   uint64
	Items      []*FrameItem
	Durations  map[int]int
	Selection  []int
	Clipboard  int
	UndoDepth  int
	LastUndo   OpKind
	MenuOpen   bool
	MenuTarget int
}

func (e *Editor) Snapshot() Snapshot {
	last, _ := e.LastUndoKind()
	target, _ := e.menu.Target()
	return Snapshot{
		Revision:   e.notifier.Revision(),
		Items:      e.store.Items(),
		Durations:  e.store.Durations(),
		Selection:  e.store.SelectedIndices(),
		Clipboard:  len(e.clipboard),
		UndoDepth:  e.undo.Len(),
		LastUndo:   last,
		MenuOpen:   e.menu.IsOpen(),
		MenuTarget: target,
	}
}

func (e *Editor) changed(op string, args ...any) {
	if e.logger != nil {
		e.logger.Debug("editor state changed", append([]any{"op", op, "frames", e.store.Len()}, args...)...)
	}
	e.notifier.Notify()
}
