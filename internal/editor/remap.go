package editor

import (
	"slices"
)

// Removed is returned by the remap functions for an index whose item no
// longer exists.
const Removed = -1

// RemapMove returns where an index ends up after the item at from is moved
// to final position to.
func RemapMove(old, from, to int) int {
	switch {
	case old == from:
		return to
	case from < to && old > from && old <= to:
		return old - 1
	case from > to && old >= to && old < from:
		return old + 1
	default:
		return old
	}
}

// RemapDelete returns the new index of old after every index in deleted is
// removed, or Removed when old itself was deleted. deleted must be sorted
// ascending without duplicates.
func RemapDelete(old int, deleted []int) int {
	pos, found := slices.BinarySearch(deleted, old)
	if found {
		return Removed
	}
	return old - pos
}

// RemapInsert returns the new index of old after count items are inserted
// at position at.
func RemapInsert(old, at, count int) int {
	if old >= at {
		return old + count
	}
	return old
}

// InsertionTarget converts a drop position, expressed as an insertion point
// in the sequence before the dragged item is lifted out, into the final index
// of the dragged item. It is the deletion rule applied to the drop position:
// lifting the item at from shifts every later position left by one.
func InsertionTarget(from, to int) int {
	if to == from {
		return from
	}
	return RemapDelete(to, []int{from})
}

// normalizeIndices returns a sorted copy of indices without duplicates.
func normalizeIndices(indices []int) []int {
	out := slices.Clone(indices)
	slices.Sort(out)
	return slices.Compact(out)
}

func indexRange(start, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = start + i
	}
	return out
}
