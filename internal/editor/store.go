package editor

import (
	"fmt"
	"maps"
	"slices"
)

// Store owns the ordered frames together with the two index-keyed
// structures that point into them. The unexported mutators keep all three
// consistent: any change to the sequence remaps durations and selection
// before returning.
//
// Out-of-range indices reaching the mutators are caller bugs and panic.
type Store struct {
	items     []*FrameItem
	durations map[int]int
	selection map[int]struct{}
}

func newStore() *Store {
	return &Store{
		durations: make(map[int]int),
		selection: make(map[int]struct{}),
	}
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) Item(i int) *FrameItem {
	s.mustIndex(i)
	return s.items[i]
}

// Items returns a copy of the sequence.
func (s *Store) Items() []*FrameItem {
	return slices.Clone(s.items)
}

// Duration returns the explicit duration at i, if one is set.
func (s *Store) Duration(i int) (int, bool) {
	ms, ok := s.durations[i]
	return ms, ok
}

// EffectiveDuration returns the explicit duration at i or fallback.
func (s *Store) EffectiveDuration(i, fallback int) int {
	if ms, ok := s.durations[i]; ok {
		return ms
	}
	return fallback
}

func (s *Store) Durations() map[int]int {
	return maps.Clone(s.durations)
}

func (s *Store) IsSelected(i int) bool {
	_, ok := s.selection[i]
	return ok
}

func (s *Store) SelectionLen() int {
	return len(s.selection)
}

// SelectedIndices returns the selection sorted ascending.
func (s *Store) SelectedIndices() []int {
	out := slices.Collect(maps.Keys(s.selection))
	slices.Sort(out)
	return out
}

// SelectedItems returns the selected frames in ascending index order.
func (s *Store) SelectedItems() []*FrameItem {
	indices := s.SelectedIndices()
	out := make([]*FrameItem, len(indices))
	for i, idx := range indices {
		out[i] = s.items[idx]
	}
	return out
}

func (s *Store) replace(items []*FrameItem) {
	s.items = slices.Clone(items)
	clear(s.durations)
	clear(s.selection)
}

// insertAt splices items in at index. Existing keys at or after index shift
// right; the new positions carry no duration and are not selected.
func (s *Store) insertAt(index int, items []*FrameItem) {
	s.mustInsertion(index)
	if len(items) == 0 {
		return
	}
	s.items = slices.Insert(s.items, index, items...)
	n := len(items)
	s.remap(func(old int) int { return RemapInsert(old, index, n) })
}

// removeAt drops the items at indices and returns them in ascending index
// order. Durations and selection of removed items are discarded; the rest
// are reindexed.
func (s *Store) removeAt(indices []int) []*FrameItem {
	sorted := normalizeIndices(indices)
	for _, i := range sorted {
		s.mustIndex(i)
	}
	removed := make([]*FrameItem, len(sorted))
	for k := len(sorted) - 1; k >= 0; k-- {
		i := sorted[k]
		removed[k] = s.items[i]
		s.items = slices.Delete(s.items, i, i+1)
	}
	s.remap(func(old int) int { return RemapDelete(old, sorted) })
	return removed
}

// moveByInsertSemantics lifts the item at from and drops it at insertion
// point to (0 <= to <= Len, counted before the lift). It returns the final
// index of the moved item.
func (s *Store) moveByInsertSemantics(from, to int) int {
	s.mustIndex(from)
	s.mustInsertion(to)
	target := InsertionTarget(from, to)
	if target == from {
		return from
	}
	item := s.items[from]
	s.items = slices.Delete(s.items, from, from+1)
	s.items = slices.Insert(s.items, target, item)
	s.remap(func(old int) int { return RemapMove(old, from, target) })
	return target
}

func (s *Store) setDuration(i, ms int) {
	s.mustIndex(i)
	s.durations[i] = ms
}

func (s *Store) clearDuration(i int) {
	delete(s.durations, i)
}

func (s *Store) clearDurations() {
	clear(s.durations)
}

func (s *Store) selectIndex(i int) {
	s.mustIndex(i)
	s.selection[i] = struct{}{}
}

func (s *Store) deselect(i int) {
	delete(s.selection, i)
}

func (s *Store) selectAll() {
	clear(s.selection)
	for i := range s.items {
		s.selection[i] = struct{}{}
	}
}

func (s *Store) clearSelection() {
	clear(s.selection)
}

// remap rewrites every duration key and selection member through fn.
// Indices mapped to Removed are dropped.
func (s *Store) remap(fn func(int) int) {
	durations := make(map[int]int, len(s.durations))
	for old, ms := range s.durations {
		if idx := fn(old); idx != Removed {
			durations[idx] = ms
		}
	}
	selection := make(map[int]struct{}, len(s.selection))
	for old := range s.selection {
		if idx := fn(old); idx != Removed {
			selection[idx] = struct{}{}
		}
	}
	s.durations = durations
	s.selection = selection
}

func (s *Store) validIndex(i int) bool {
	return i >= 0 && i < len(s.items)
}

func (s *Store) mustIndex(i int) {
	if !s.validIndex(i) {
		panic(fmt.Sprintf("editor: index %d out of range [0,%d)", i, len(s.items)))
	}
}

func (s *Store) mustInsertion(i int) {
	if i < 0 || i > len(s.items) {
		panic(fmt.Sprintf("editor: insertion point %d out of range [0,%d]", i, len(s.items)))
	}
}
