package editor

import (
	"time"
)

// UndoCapacity is the number of records the undo log keeps.
const UndoCapacity = 20

// OpKind names an undoable operation.
type OpKind string

const (
	OpPasteAppend  OpKind = "paste"
	OpPasteAt      OpKind = "paste-at-position"
	OpDelete       OpKind = "delete"
	OpMove         OpKind = "drag-sort"
	OpAppendImport OpKind = "append-import"
	OpDuration     OpKind = "batch-duration"
)

// Inverse is the data needed to reverse one operation. The set of
// implementations is closed; undo switches over it.
type Inverse interface {
	Kind() OpKind
	sealed()
}

type PasteAppendInverse struct {
	Count          int
	OriginalLength int
}

type PasteAtInverse struct {
	TargetIndex int
	Count       int
}

// PriorDuration records what the duration map held at Index before a
// change. Present is false when no explicit duration was set.
type PriorDuration struct {
	Index   int
	Ms      int
	Present bool
}

// DeleteInverse keeps the removed frames in ascending index order; Items[k]
// and Durations[k] belong to Indices[k].
type DeleteInverse struct {
	Indices   []int
	Items     []*FrameItem
	Durations []PriorDuration
}

type MoveInverse struct {
	Snapshot []*FrameItem
}

type AppendImportInverse struct {
	OriginalLength int
	Count          int
}

type DurationInverse struct {
	Previous []PriorDuration
}

func (PasteAppendInverse) Kind() OpKind  { return OpPasteAppend }
func (PasteAtInverse) Kind() OpKind      { return OpPasteAt }
func (DeleteInverse) Kind() OpKind       { return OpDelete }
func (MoveInverse) Kind() OpKind         { return OpMove }
func (AppendImportInverse) Kind() OpKind { return OpAppendImport }
func (DurationInverse) Kind() OpKind     { return OpDuration }

func (PasteAppendInverse) sealed()  {}
func (PasteAtInverse) sealed()      {}
func (DeleteInverse) sealed()       {}
func (MoveInverse) sealed()         {}
func (AppendImportInverse) sealed() {}
func (DurationInverse) sealed()     {}

type UndoRecord struct {
	Kind      OpKind
	Inverse   Inverse
	Timestamp time.Time
}

// UndoLog is a bounded LIFO of undo records. It stores records without
// interpreting them. Overflow silently drops the oldest record.
type UndoLog struct {
	records  []UndoRecord
	capacity int
	now      func() time.Time
}

func NewUndoLog(capacity int) *UndoLog {
	if capacity <= 0 {
		capacity = UndoCapacity
	}
	return &UndoLog{
		records:  make([]UndoRecord, 0, capacity+1),
		capacity: capacity,
		now:      time.Now,
	}
}

func (l *UndoLog) Push(inv Inverse) {
	l.records = append(l.records, UndoRecord{
		Kind:      inv.Kind(),
		Inverse:   inv,
		Timestamp: l.now(),
	})
	if len(l.records) > l.capacity {
		l.records[0] = UndoRecord{}
		l.records = l.records[1:]
	}
}

// Pop removes and returns the most recent record. ok is false when the log
// is empty.
func (l *UndoLog) Pop() (rec UndoRecord, ok bool) {
	n := len(l.records)
	if n == 0 {
		return UndoRecord{}, false
	}
	rec = l.records[n-1]
	l.records[n-1] = UndoRecord{}
	l.records = l.records[:n-1]
	return rec, true
}

func (l *UndoLog) Peek() (UndoRecord, bool) {
	if len(l.records) == 0 {
		return UndoRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

func (l *UndoLog) Len() int {
	return len(l.records)
}

func (l *UndoLog) Capacity() int {
	return l.capacity
}

func (l *UndoLog) Clear() {
	clear(l.records)
	l.records = l.records[:0]
}
