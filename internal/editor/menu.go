package editor

// NoTarget marks a context menu opened over empty space.
const NoTarget = -1

// ContextMenu remembers the frame under the cursor when the menu opened.
// Commands issued from the menu use that captured index even if the
// pointer has since moved.
type ContextMenu struct {
	open   bool
	target int
}

func (m *ContextMenu) Open(target int) {
	m.open = true
	m.target = target
}

func (m *ContextMenu) Close() {
	m.open = false
	m.target = NoTarget
}

func (m ContextMenu) IsOpen() bool {
	return m.open
}

// Target returns the captured index. ok is false when the menu is closed or
// was opened over empty space.
func (m ContextMenu) Target() (target int, ok bool) {
	if !m.open || m.target == NoTarget {
		return NoTarget, false
	}
	return m.target, true
}
