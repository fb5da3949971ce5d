package editor

import (
	"maps"
	"slices"
)

// Load replaces the sequence with items ordered by name and resets the
// selection, durations, clipboard and undo log.
func (e *Editor) Load(items []*FrameItem) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	e.store.replace(sortByName(items, e.locale))
	e.clipboard = nil
	e.undo.Clear()
	e.menu.Close()
	e.changed("load", "count", len(items))
	return nil
}

// Reset empties the session.
func (e *Editor) Reset() {
	e.store.replace(nil)
	e.clipboard = nil
	e.undo.Clear()
	e.menu.Close()
	e.changed("reset")
}

func (e *Editor) ToggleSelect(i int, on bool) error {
	if !e.store.validIndex(i) {
		return ErrIndexOutOfRange
	}
	if on {
		e.store.selectIndex(i)
	} else {
		e.store.deselect(i)
	}
	e.changed("toggle_select", "index", i, "on", on)
	return nil
}

func (e *Editor) SelectAll() {
	e.store.selectAll()
	e.changed("select_all")
}

func (e *Editor) ClearSelection() {
	e.store.clearSelection()
	e.changed("clear_selection")
}

// Copy snapshots the selected frames, in index order, into the clipboard.
// The sequence, durations and selection are not touched.
func (e *Editor) Copy() (int, error) {
	if e.store.SelectionLen() == 0 {
		return 0, ErrEmptySelection
	}
	e.clipboard = e.store.SelectedItems()
	e.changed("copy", "count", len(e.clipboard))
	return len(e.clipboard), nil
}

// PasteAppend appends the clipboard to the end of the sequence.
func (e *Editor) PasteAppend() (int, error) {
	if len(e.clipboard) == 0 {
		return 0, ErrEmptyClipboard
	}
	items := slices.Clone(e.clipboard)
	length := e.store.Len()
	e.undo.Push(PasteAppendInverse{Count: len(items), OriginalLength: length})
	e.store.insertAt(length, items)
	e.changed("paste", "count", len(items))
	return len(items), nil
}

// PasteAt inserts the clipboard right after target and selects exactly the
// inserted range.
func (e *Editor) PasteAt(target int) (int, error) {
	if len(e.clipboard) == 0 {
		return 0, ErrEmptyClipboard
	}
	if !e.store.validIndex(target) {
		return 0, ErrIndexOutOfRange
	}
	items := slices.Clone(e.clipboard)
	e.undo.Push(PasteAtInverse{TargetIndex: target, Count: len(items)})
	e.store.insertAt(target+1, items)
	e.store.clearSelection()
	for i := range items {
		e.store.selectIndex(target + 1 + i)
	}
	e.changed("paste_at", "target", target, "count", len(items))
	return len(items), nil
}

// DeleteSelected removes every selected frame.
func (e *Editor) DeleteSelected() (int, error) {
	if e.store.SelectionLen() == 0 {
		return 0, ErrEmptySelection
	}
	indices := e.store.SelectedIndices()
	inv := DeleteInverse{
		Indices:   indices,
		Items:     make([]*FrameItem, len(indices)),
		Durations: make([]PriorDuration, len(indices)),
	}
	for k, i := range indices {
		inv.Items[k] = e.store.Item(i)
		inv.Durations[k] = e.priorDuration(i)
	}
	e.undo.Push(inv)
	e.store.removeAt(indices)
	e.store.clearSelection()
	e.changed("delete", "count", len(indices))
	return len(indices), nil
}

// Move drags the frame at from onto insertion point to, where to counts
// positions before the frame is lifted (0 <= to <= Len). It returns the final
// index of the frame. Selection and durations follow their frames.
func (e *Editor) Move(from, to int) (int, error) {
	n := e.store.Len()
	if from < 0 || from >= n || to < 0 || to > n {
		return 0, ErrIndexOutOfRange
	}
	if InsertionTarget(from, to) == from {
		return from, ErrNoMove
	}
	e.undo.Push(MoveInverse{Snapshot: e.store.Items()})
	final := e.store.moveByInsertSemantics(from, to)
	e.changed("move", "from", from, "to", final)
	return final, nil
}

// AppendImport appends newly imported frames, ordered by name among
// themselves, after the existing sequence.
func (e *Editor) AppendImport(items []*FrameItem) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	sorted := sortByName(items, e.locale)
	length := e.store.Len()
	e.undo.Push(AppendImportInverse{OriginalLength: length, Count: len(sorted)})
	e.store.insertAt(length, sorted)
	e.changed("append_import", "count", len(sorted))
	return len(sorted), nil
}

// SetDurations sets the same duration on every index given.
func (e *Editor) SetDurations(indices []int, ms int) error {
	if !ValidDuration(ms) {
		return ErrInvalidDuration
	}
	if len(indices) == 0 {
		return ErrEmptySelection
	}
	targets := normalizeIndices(indices)
	for _, i := range targets {
		if !e.store.validIndex(i) {
			return ErrIndexOutOfRange
		}
	}
	inv := DurationInverse{Previous: make([]PriorDuration, len(targets))}
	for k, i := range targets {
		inv.Previous[k] = e.priorDuration(i)
	}
	e.undo.Push(inv)
	for _, i := range targets {
		e.store.setDuration(i, ms)
	}
	e.changed("set_durations", "count", len(targets), "ms", ms)
	return nil
}

// SetDuration sets one frame's duration.
func (e *Editor) SetDuration(i, ms int) error {
	return e.SetDurations([]int{i}, ms)
}

// SetSelectedDuration applies ms to the current selection.
func (e *Editor) SetSelectedDuration(ms int) error {
	if !ValidDuration(ms) {
		return ErrInvalidDuration
	}
	return e.SetDurations(e.store.SelectedIndices(), ms)
}

// SetDurationAll applies ms to every frame.
func (e *Editor) SetDurationAll(ms int) error {
	if !ValidDuration(ms) {
		return ErrInvalidDuration
	}
	if e.store.Len() == 0 {
		return ErrNoItems
	}
	return e.SetDurations(indexRange(0, e.store.Len()), ms)
}

// ResetDurations drops every explicit duration so all frames fall back to
// the default. It is a no-op when none is set.
func (e *Editor) ResetDurations() {
	durations := e.store.Durations()
	if len(durations) == 0 {
		return
	}
	inv := DurationInverse{Previous: make([]PriorDuration, 0, len(durations))}
	for _, i := range normalizeIndices(slices.Collect(maps.Keys(durations))) {
		inv.Previous = append(inv.Previous, PriorDuration{Index: i, Ms: durations[i], Present: true})
	}
	e.undo.Push(inv)
	e.store.clearDurations()
	e.changed("reset_durations", "count", len(inv.Previous))
}

// OpenMenu captures the frame under the cursor; NoTarget means empty space.
func (e *Editor) OpenMenu(target int) error {
	if target != NoTarget && !e.store.validIndex(target) {
		return ErrIndexOutOfRange
	}
	e.menu.Open(target)
	e.changed("menu_open", "target", target)
	return nil
}

func (e *Editor) CloseMenu() {
	if !e.menu.IsOpen() {
		return
	}
	e.menu.Close()
	e.changed("menu_close")
}

// PasteHere pastes after the index captured when the menu opened
// and closes the menu.
func (e *Editor) PasteHere() (int, error) {
	if len(e.clipboard) == 0 {
		return 0, ErrEmptyClipboard
	}
	target, ok := e.menu.Target()
	if !ok {
		return 0, ErrNoTarget
	}
	n, err := e.PasteAt(target)
	if err != nil {
		return 0, err
	}
	e.menu.Close()
	return n, nil
}

func (e *Editor) priorDuration(i int) PriorDuration {
	ms, ok := e.store.Duration(i)
	return PriorDuration{Index: i, Ms: ms, Present: ok}
}
