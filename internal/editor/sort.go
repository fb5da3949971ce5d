package editor

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortByName orders items by display name using locale collation with
// numeric runs compared by value, so "frame2" sorts before "frame10".
func sortByName(items []*FrameItem, tag language.Tag) []*FrameItem {
	out := slices.Clone(items)
	c := collate.New(tag, collate.Numeric)
	slices.SortStableFunc(out, func(a, b *FrameItem) int {
		return c.CompareString(a.Name, b.Name)
	})
	return out
}
