package studio

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/framereel/framereel-agent/internal/editor"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownShortcut = errors.New("unknown shortcut")
)

// Command is one user gesture. Only the fields the named command reads
// need to be set.
type Command struct {
	Name       string `json:"name"`
	Index      int    `json:"index"`
	Indices    []int  `json:"indices,omitempty"`
	On         bool   `json:"on"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	Target     int    `json:"target"`
	DurationMs int    `json:"duration_ms"`
}

// Result describes what a command did.
type Result struct {
	Command string        `json:"command"`
	Count   int           `json:"count,omitempty"`
	Index   int           `json:"index,omitempty"`
	Undone  editor.OpKind `json:"undone,omitempty"`
}

type handler struct {
	// structural commands change the sequence or durations and are
	// refused while an encode is running.
	structural bool
	run        func(e *editor.Editor, c Command) (Result, error)
}

func countResult(n int, err error) (Result, error) {
	return Result{Count: n}, err
}

var commands = map[string]handler{
	"toggle_select": {run: func(e *editor.Editor, c Command) (Result, error) {
		return Result{Index: c.Index}, e.ToggleSelect(c.Index, c.On)
	}},
	"select_all": {run: func(e *editor.Editor, c Command) (Result, error) {
		e.SelectAll()
		return Result{Count: e.Len()}, nil
	}},
	"clear_selection": {run: func(e *editor.Editor, c Command) (Result, error) {
		e.ClearSelection()
		return Result{}, nil
	}},
	"copy": {run: func(e *editor.Editor, c Command) (Result, error) {
		return countResult(e.Copy())
	}},
	"paste": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return countResult(e.PasteAppend())
	}},
	"paste_at": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return countResult(e.PasteAt(c.Target))
	}},
	"delete": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return countResult(e.DeleteSelected())
	}},
	"move": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		final, err := e.Move(c.From, c.To)
		return Result{Index: final}, err
	}},
	"set_duration": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return Result{Count: 1}, e.SetDuration(c.Index, c.DurationMs)
	}},
	"set_durations": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return Result{Count: len(c.Indices)}, e.SetDurations(c.Indices, c.DurationMs)
	}},
	"set_selected_duration": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		n := len(e.SelectedIndices())
		return Result{Count: n}, e.SetSelectedDuration(c.DurationMs)
	}},
	"set_duration_all": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return Result{Count: e.Len()}, e.SetDurationAll(c.DurationMs)
	}},
	"reset_durations": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		n := len(e.Durations())
		e.ResetDurations()
		return Result{Count: n}, nil
	}},
	"undo": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		kind, err := e.Undo()
		return Result{Undone: kind}, err
	}},
	"menu_open": {run: func(e *editor.Editor, c Command) (Result, error) {
		return Result{Index: c.Target}, e.OpenMenu(c.Target)
	}},
	"menu_close": {run: func(e *editor.Editor, c Command) (Result, error) {
		e.CloseMenu()
		return Result{}, nil
	}},
	"menu_paste": {structural: true, run: func(e *editor.Editor, c Command) (Result, error) {
		return countResult(e.PasteHere())
	}},
}

// shortcuts maps key chords to command names.
var shortcuts = map[string]string{
	"ctrl+c": "copy",
	"ctrl+v": "paste",
	"ctrl+z": "undo",
	"meta+c": "copy",
	"meta+v": "paste",
	"meta+z": "undo",
}

// CommandNames lists the dispatchable commands.
func CommandNames() []string {
	return slices.Sorted(maps.Keys(commands))
}

func lookup(name string) (handler, error) {
	h, ok := commands[name]
	if !ok {
		return handler{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return h, nil
}
