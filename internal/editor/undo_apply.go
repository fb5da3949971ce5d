package editor

import (
	"fmt"
)

// Undo reverses the most recent undoable operation. The selection is always
// cleared afterwards rather than restored.
func (e *Editor) Undo() (OpKind, error) {
	rec, ok := e.undo.Pop()
	if !ok {
		return "", ErrNothingToUndo
	}
	e.revert(rec.Inverse)
	e.store.clearSelection()
	e.changed("undo", "kind", string(rec.Kind))
	return rec.Kind, nil
}

func (e *Editor) revert(inv Inverse) {
	switch inv := inv.(type) {
	case PasteAppendInverse:
		e.store.removeAt(indexRange(inv.OriginalLength, inv.Count))
	case PasteAtInverse:
		e.store.removeAt(indexRange(inv.TargetIndex+1, inv.Count))
	case AppendImportInverse:
		e.store.removeAt(indexRange(inv.OriginalLength, inv.Count))
	case DeleteInverse:
		// Ascending order: each insertion lands before any later original
		// index, so later targets stay correct.
		for k, i := range inv.Indices {
			e.store.insertAt(i, []*FrameItem{inv.Items[k]})
			if d := inv.Durations[k]; d.Present {
				e.store.setDuration(i, d.Ms)
			}
		}
	case MoveInverse:
		e.store.replace(inv.Snapshot)
	case DurationInverse:
		for _, d := range inv.Previous {
			if d.Present {
				e.store.setDuration(d.Index, d.Ms)
			} else {
				e.store.clearDuration(d.Index)
			}
		}
	default:
		panic(fmt.Sprintf("editor: unknown undo record %T", inv))
	}
}
