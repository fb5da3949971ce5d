package studio

import (
	"github.com/framereel/framereel-agent/internal/editor"
	"github.com/framereel/framereel-agent/internal/history"
)

type FrameView struct {
	Index      int    `json:"index"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	MIME       string `json:"mime"`
	Size       int    `json:"size"`
	DurationMs int    `json:"duration_ms"`
	// Explicit is false when DurationMs is the default.
	Explicit bool `json:"explicit"`
	Selected bool `json:"selected"`
}

type MenuView struct {
	Open   bool `json:"open"`
	Target int  `json:"target"`
}

// State is a point-in-time view of the session for renderers.
type State struct {
	Revision       uint64       `json:"revision"`
	Frames         []FrameView  `json:"frames"`
	Selection      []int        `json:"selection"`
	Clipboard      int          `json:"clipboard"`
	CanUndo        bool         `json:"can_undo"`
	UndoDepth      int          `json:"undo_depth"`
	LastUndo       string       `json:"last_undo,omitempty"`
	Menu           MenuView     `json:"menu"`
	DefaultDelayMs int          `json:"default_delay_ms"`
	Busy           bool         `json:"busy"`
	Job            *history.Job `json:"job,omitempty"`
}

func (s *Studio) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.editor.Snapshot()
	selected := make(map[int]bool, len(snap.Selection))
	for _, i := range snap.Selection {
		selected[i] = true
	}

	frames := make([]FrameView, len(snap.Items))
	for i, item := range snap.Items {
		ms, explicit := snap.Durations[i]
		if !explicit {
			ms = s.delayMs
		}
		frames[i] = FrameView{
			Index:      i,
			ID:         item.ID,
			Name:       item.Name,
			MIME:       item.MIME,
			Size:       len(item.Data),
			DurationMs: ms,
			Explicit:   explicit,
			Selected:   selected[i],
		}
	}

	st := State{
		Revision:       snap.Revision,
		Frames:         frames,
		Selection:      snap.Selection,
		Clipboard:      snap.Clipboard,
		CanUndo:        snap.UndoDepth > 0,
		UndoDepth:      snap.UndoDepth,
		LastUndo:       string(snap.LastUndo),
		Menu:           MenuView{Open: snap.MenuOpen, Target: snap.MenuTarget},
		DefaultDelayMs: s.delayMs,
		Busy:           s.running != nil,
	}
	if s.running != nil {
		j := *s.running.job
		st.Job = &j
	} else if s.lastJob != nil {
		j := *s.lastJob
		st.Job = &j
	}
	if st.Selection == nil {
		st.Selection = []int{}
	}
	return st
}

// Summary is a compact view for the tray.
type Summary struct {
	Frames   int
	Selected int
	Busy     bool
	Progress int
	LastUndo editor.OpKind
}

func (s *Studio) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Frames:   s.editor.Len(),
		Selected: len(s.editor.SelectedIndices()),
		Busy:     s.running != nil,
	}
	if s.running != nil {
		sum.Progress = s.running.job.Progress
	}
	sum.LastUndo, _ = s.editor.LastUndoKind()
	return sum
}
