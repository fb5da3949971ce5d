package editor

import (
	"errors"
	"maps"
	"slices"
	"testing"
)

func newTestEditor(t *testing.T, names ...string) (*Editor, *int) {
	t.Helper()
	e := New(nil, nil)
	if len(names) > 0 {
		if err := e.Load(frames(names...)); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	notified := new(int)
	e.Notifier().Subscribe(func() { *notified++ })
	return e, notified
}

func selectIndices(t *testing.T, e *Editor, indices ...int) {
	t.Helper()
	for _, i := range indices {
		if err := e.ToggleSelect(i, true); err != nil {
			t.Fatalf("ToggleSelect(%d): %v", i, err)
		}
	}
}

func TestLoad_SortsNumerically(t *testing.T) {
	e, _ := newTestEditor(t)
	if err := e.Load(frames("frame10.png", "frame2.png", "frame1.png")); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"frame1.png", "frame2.png", "frame10.png"}
	if got := names(e.Items()); !slices.Equal(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if e.CanUndo() {
		t.Error("Load left undo records")
	}
}

func TestLoad_Empty(t *testing.T) {
	e, notified := newTestEditor(t, "A")
	if err := e.Load(nil); !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}
	if e.Len() != 1 || *notified != 0 {
		t.Errorf("failed Load changed state: len=%d notified=%d", e.Len(), *notified)
	}
}

func TestMove_ForwardScenario(t *testing.T) {
	e, notified := newTestEditor(t, "A", "B", "C")

	final, err := e.Move(0, 2)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if final != 1 {
		t.Errorf("final index = %d, want 1", final)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"B", "A", "C"}) {
		t.Errorf("items = %v, want [B A C]", got)
	}
	if *notified != 1 {
		t.Errorf("notified %d times, want 1", *notified)
	}
}

func TestMove_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"last to front", 3, 0, []string{"D", "A", "B", "C"}},
		{"first to end", 0, 4, []string{"B", "C", "D", "A"}},
		{"backward one", 2, 1, []string{"A", "C", "B", "D"}},
		{"forward past neighbour", 1, 3, []string{"A", "C", "B", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(t, "A", "B", "C", "D")
			if _, err := e.Move(tt.from, tt.to); err != nil {
				t.Fatalf("Move: %v", err)
			}
			if got := names(e.Items()); !slices.Equal(got, tt.want) {
				t.Errorf("items = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMove_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		wantErr  error
	}{
		{"onto self", 1, 1, ErrNoMove},
		{"just after self", 1, 2, ErrNoMove},
		{"from out of range", 3, 0, ErrIndexOutOfRange},
		{"to past end", 0, 4, ErrIndexOutOfRange},
		{"negative", -1, 0, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, notified := newTestEditor(t, "A", "B", "C")
			if _, err := e.Move(tt.from, tt.to); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if e.CanUndo() || *notified != 0 {
				t.Error("rejected move pushed undo or notified")
			}
		})
	}
}

func TestMove_UndoRestoresOrderAndClears(t *testing.T) {
	const n = 5
	for from := 0; from < n; from++ {
		for to := 0; to <= n; to++ {
			e, _ := newTestEditor(t, "A", "B", "C", "D", "E")
			before := e.Items()
			selectIndices(t, e, from)
			if err := e.SetDuration(from, 400); err != nil {
				t.Fatalf("SetDuration: %v", err)
			}

			if _, err := e.Move(from, to); err != nil {
				if errors.Is(err, ErrNoMove) {
					continue
				}
				t.Fatalf("Move(%d, %d): %v", from, to, err)
			}
			if kind, err := e.Undo(); err != nil || kind != OpMove {
				t.Fatalf("Undo = %v, %v", kind, err)
			}

			after := e.Items()
			for i := range before {
				if before[i] != after[i] {
					t.Fatalf("Move(%d, %d) undo: position %d holds %s, want %s", from, to, i, after[i].Name, before[i].Name)
				}
			}
			if len(e.SelectedIndices()) != 0 || len(e.Durations()) != 0 {
				t.Errorf("Move(%d, %d) undo left selection %v durations %v", from, to, e.SelectedIndices(), e.Durations())
			}
		}
	}
}

func TestMove_SelectionFollowsFrames(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C", "D")
	selectIndices(t, e, 0, 3)

	if _, err := e.Move(3, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}
	// A D B C
	if got := e.SelectedIndices(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("selection = %v, want [0 1]", got)
	}
}

func TestDelete_Scenario(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C", "D")
	mustSet := func(i, ms int) {
		if err := e.SetDuration(i, ms); err != nil {
			t.Fatalf("SetDuration(%d): %v", i, err)
		}
	}
	mustSet(1, 200)
	mustSet(2, 300)
	mustSet(3, 400)
	selectIndices(t, e, 1, 3)

	n, err := e.DeleteSelected()
	if err != nil {
		t.Fatalf("DeleteSelected: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "C"}) {
		t.Fatalf("items = %v, want [A C]", got)
	}
	if want := map[int]int{1: 300}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations = %v, want %v", e.Durations(), want)
	}
	if len(e.SelectedIndices()) != 0 {
		t.Errorf("selection not cleared: %v", e.SelectedIndices())
	}

	kind, err := e.Undo()
	if err != nil || kind != OpDelete {
		t.Fatalf("Undo = %v, %v", kind, err)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("items after undo = %v", got)
	}
	if want := map[int]int{1: 200, 2: 300, 3: 400}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations after undo = %v, want %v", e.Durations(), want)
	}
	if _, ok := e.Duration(0); ok {
		t.Error("absent duration at 0 became present after undo")
	}
}

func TestDelete_UndoRestoresIdentities(t *testing.T) {
	sets := [][]int{{0}, {4}, {0, 4}, {1, 2, 3}, {0, 1, 2, 3, 4}, {0, 2, 4}}
	for _, sel := range sets {
		e, _ := newTestEditor(t, "A", "B", "C", "D", "E")
		before := e.Items()
		for _, i := range sel {
			if err := e.SetDuration(i, 100+i*10); err != nil {
				t.Fatal(err)
			}
		}
		wantDurations := e.Durations()
		selectIndices(t, e, sel...)

		if _, err := e.DeleteSelected(); err != nil {
			t.Fatalf("delete %v: %v", sel, err)
		}
		if e.Len() != len(before)-len(sel) {
			t.Errorf("delete %v: len = %d", sel, e.Len())
		}
		if _, err := e.Undo(); err != nil {
			t.Fatalf("undo %v: %v", sel, err)
		}

		after := e.Items()
		if len(after) != len(before) {
			t.Fatalf("delete %v: len after undo = %d", sel, len(after))
		}
		for i := range before {
			if after[i] != before[i] {
				t.Errorf("delete %v: position %d holds %s, want %s", sel, i, after[i].Name, before[i].Name)
			}
		}
		if !maps.Equal(e.Durations(), wantDurations) {
			t.Errorf("delete %v: durations = %v, want %v", sel, e.Durations(), wantDurations)
		}
	}
}

func TestEmptySelectionFailures(t *testing.T) {
	e, notified := newTestEditor(t, "A", "B")

	if _, err := e.DeleteSelected(); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("DeleteSelected err = %v", err)
	}
	if _, err := e.Copy(); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Copy err = %v", err)
	}
	if err := e.SetSelectedDuration(300); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("SetSelectedDuration err = %v", err)
	}
	if err := e.SetSelectedDuration(10); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("SetSelectedDuration(10) err = %v", err)
	}
	if _, err := e.PasteAppend(); !errors.Is(err, ErrEmptyClipboard) {
		t.Errorf("PasteAppend err = %v", err)
	}
	if _, err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo err = %v", err)
	}

	if *notified != 0 {
		t.Errorf("failed operations notified %d times", *notified)
	}
	if e.Len() != 2 || e.CanUndo() {
		t.Error("failed operations changed state")
	}
}

func TestCopy_DoesNotMutate(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C")
	if err := e.SetDuration(2, 900); err != nil {
		t.Fatal(err)
	}
	selectIndices(t, e, 2, 0)

	items := e.Items()
	durations := e.Durations()
	selection := e.SelectedIndices()
	depth := e.UndoDepth()

	for range 3 {
		n, err := e.Copy()
		if err != nil {
			t.Fatalf("Copy: %v", err)
		}
		if n != 2 {
			t.Errorf("copied %d, want 2", n)
		}
	}

	if !slices.Equal(e.Items(), items) {
		t.Error("Copy changed items")
	}
	if !maps.Equal(e.Durations(), durations) {
		t.Error("Copy changed durations")
	}
	if !slices.Equal(e.SelectedIndices(), selection) {
		t.Error("Copy changed selection")
	}
	if e.UndoDepth() != depth {
		t.Error("Copy pushed an undo record")
	}
	if got := names(e.Clipboard()); !slices.Equal(got, []string{"A", "C"}) {
		t.Errorf("clipboard = %v, want [A C]", got)
	}
}

func TestPasteAppend(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C")
	selectIndices(t, e, 0, 1)
	if _, err := e.Copy(); err != nil {
		t.Fatal(err)
	}

	if _, err := e.PasteAppend(); err != nil {
		t.Fatalf("PasteAppend: %v", err)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "B", "C", "A", "B"}) {
		t.Fatalf("items = %v", got)
	}
	if got := e.SelectedIndices(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("selection = %v, want unchanged [0 1]", got)
	}

	if kind, err := e.Undo(); err != nil || kind != OpPasteAppend {
		t.Fatalf("Undo = %v, %v", kind, err)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("items after undo = %v", got)
	}
	if len(e.SelectedIndices()) != 0 {
		t.Error("undo did not clear selection")
	}
}

func TestPasteAt_SelectsInsertedRange(t *testing.T) {
	for target := 0; target < 4; target++ {
		e, _ := newTestEditor(t, "A", "B", "C", "D")
		if err := e.SetDuration(3, 800); err != nil {
			t.Fatal(err)
		}
		selectIndices(t, e, 0, 2)
		if _, err := e.Copy(); err != nil {
			t.Fatal(err)
		}
		clip := e.Clipboard()

		n, err := e.PasteAt(target)
		if err != nil {
			t.Fatalf("PasteAt(%d): %v", target, err)
		}
		if n != len(clip) {
			t.Errorf("PasteAt(%d) pasted %d", target, n)
		}
		if e.Len() != 4+len(clip) {
			t.Fatalf("PasteAt(%d): len = %d", target, e.Len())
		}
		for k, item := range clip {
			got, _ := e.Item(target + 1 + k)
			if got != item {
				t.Errorf("PasteAt(%d): position %d = %s, want %s", target, target+1+k, got.Name, item.Name)
			}
		}
		want := []int{target + 1, target + 2}
		if got := e.SelectedIndices(); !slices.Equal(got, want) {
			t.Errorf("PasteAt(%d): selection = %v, want %v", target, got, want)
		}
		if ms, ok := e.Duration(RemapInsert(3, target+1, 2)); !ok || ms != 800 {
			t.Errorf("PasteAt(%d): duration of D lost", target)
		}

		if _, err := e.Undo(); err != nil {
			t.Fatal(err)
		}
		if got := names(e.Items()); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
			t.Errorf("PasteAt(%d) undo: items = %v", target, got)
		}
		if ms, ok := e.Duration(3); !ok || ms != 800 {
			t.Errorf("PasteAt(%d) undo: duration of D = %d, %v", target, ms, ok)
		}
	}
}

func TestPasteAt_InvalidTarget(t *testing.T) {
	e, _ := newTestEditor(t, "A")
	selectIndices(t, e, 0)
	if _, err := e.Copy(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.PasteAt(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestBatchDuration_Scenario(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C")
	if err := e.SetDuration(0, 250); err != nil {
		t.Fatal(err)
	}

	if err := e.SetDurations([]int{0, 2}, 500); err != nil {
		t.Fatalf("SetDurations: %v", err)
	}
	if want := map[int]int{0: 500, 2: 500}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations = %v, want %v", e.Durations(), want)
	}
	if got := e.EffectiveDuration(1); got != DefaultDurationMs {
		t.Errorf("EffectiveDuration(1) = %d, want %d", got, DefaultDurationMs)
	}

	if kind, err := e.Undo(); err != nil || kind != OpDuration {
		t.Fatalf("Undo = %v, %v", kind, err)
	}
	if want := map[int]int{0: 250}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations after undo = %v, want %v", e.Durations(), want)
	}
	if got := e.EffectiveDuration(2); got != DefaultDurationMs {
		t.Errorf("EffectiveDuration(2) after undo = %d, want default", got)
	}
}

func TestBatchDuration_Validation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		ms      int
		wantErr error
	}{
		{"too short", []int{0}, 49, ErrInvalidDuration},
		{"too long", []int{0}, 2001, ErrInvalidDuration},
		{"no indices", nil, 500, ErrEmptySelection},
		{"bad index", []int{0, 3}, 500, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, notified := newTestEditor(t, "A", "B", "C")
			if err := e.SetDurations(tt.indices, tt.ms); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(e.Durations()) != 0 || e.CanUndo() || *notified != 0 {
				t.Error("rejected SetDurations changed state")
			}
		})
	}

	e, _ := newTestEditor(t, "A")
	for _, ms := range []int{MinDurationMs, MaxDurationMs} {
		if err := e.SetDuration(0, ms); err != nil {
			t.Errorf("SetDuration(%d): %v", ms, err)
		}
	}
}

func TestSetDurationAllAndReset(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C")
	if err := e.SetDuration(1, 300); err != nil {
		t.Fatal(err)
	}

	if err := e.SetDurationAll(700); err != nil {
		t.Fatalf("SetDurationAll: %v", err)
	}
	if want := map[int]int{0: 700, 1: 700, 2: 700}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations = %v", e.Durations())
	}

	e.ResetDurations()
	if len(e.Durations()) != 0 {
		t.Errorf("durations after reset = %v", e.Durations())
	}

	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if want := map[int]int{0: 700, 1: 700, 2: 700}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations after undoing reset = %v", e.Durations())
	}
	if _, err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if want := map[int]int{1: 300}; !maps.Equal(e.Durations(), want) {
		t.Errorf("durations after undoing apply-all = %v", e.Durations())
	}

	depth := e.UndoDepth()
	e.ResetDurations()
	e.ResetDurations()
	if e.UndoDepth() != depth+1 {
		t.Errorf("reset of an empty map pushed a record")
	}
}

func TestAppendImport(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B")
	n, err := e.AppendImport(frames("z10", "z9"))
	if err != nil {
		t.Fatalf("AppendImport: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d", n)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "B", "z9", "z10"}) {
		t.Errorf("items = %v", got)
	}

	if kind, err := e.Undo(); err != nil || kind != OpAppendImport {
		t.Fatalf("Undo = %v, %v", kind, err)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("items after undo = %v", got)
	}

	if _, err := e.AppendImport(nil); !errors.Is(err, ErrNoItems) {
		t.Errorf("AppendImport(nil) err = %v", err)
	}
}

func TestUndoCapacity(t *testing.T) {
	e, _ := newTestEditor(t, "A")
	for i := 0; i < UndoCapacity+1; i++ {
		if err := e.SetDuration(0, MinDurationMs+i); err != nil {
			t.Fatal(err)
		}
	}
	if e.UndoDepth() != UndoCapacity {
		t.Fatalf("UndoDepth = %d, want %d", e.UndoDepth(), UndoCapacity)
	}

	for i := 0; i < UndoCapacity; i++ {
		if _, err := e.Undo(); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	if _, err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("21st undo err = %v, want ErrNothingToUndo", err)
	}
	// The oldest record (absent -> 50) was evicted, so undo stops at 50.
	if ms, ok := e.Duration(0); !ok || ms != MinDurationMs {
		t.Errorf("duration = %d, %v; want %d", ms, ok, MinDurationMs)
	}
}

func TestUndo_MixedKinds(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C")
	selectIndices(t, e, 0)
	if _, err := e.Copy(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.PasteAt(2); err != nil { // A B C A
		t.Fatal(err)
	}
	if _, err := e.Move(0, 4); err != nil { // B C A A
		t.Fatal(err)
	}
	e.ClearSelection()
	selectIndices(t, e, 1)
	if _, err := e.DeleteSelected(); err != nil { // B A A
		t.Fatal(err)
	}

	wantKinds := []OpKind{OpDelete, OpMove, OpPasteAt}
	wantItems := [][]string{{"B", "C", "A", "A"}, {"A", "B", "C", "A"}, {"A", "B", "C"}}
	for i, want := range wantKinds {
		kind, err := e.Undo()
		if err != nil || kind != want {
			t.Fatalf("undo %d = %v, %v; want %v", i, kind, err, want)
		}
		if got := names(e.Items()); !slices.Equal(got, wantItems[i]) {
			t.Errorf("undo %d: items = %v, want %v", i, got, wantItems[i])
		}
	}
}

func TestContextMenu_PasteHere(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B", "C")
	selectIndices(t, e, 2)
	if _, err := e.Copy(); err != nil {
		t.Fatal(err)
	}

	if err := e.OpenMenu(NoTarget); err != nil {
		t.Fatal(err)
	}
	if _, err := e.PasteHere(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("PasteHere over empty space err = %v", err)
	}

	if err := e.OpenMenu(0); err != nil {
		t.Fatal(err)
	}
	if target, ok := e.Menu().Target(); !ok || target != 0 {
		t.Errorf("Menu().Target() = %d, %v; want 0, true", target, ok)
	}
	if _, err := e.PasteHere(); err != nil {
		t.Fatalf("PasteHere: %v", err)
	}
	if got := names(e.Items()); !slices.Equal(got, []string{"A", "C", "B", "C"}) {
		t.Errorf("items = %v", got)
	}
	if e.Menu().IsOpen() {
		t.Error("menu still open after paste")
	}

	if err := e.OpenMenu(9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("OpenMenu(9) err = %v", err)
	}
}

func TestSelection(t *testing.T) {
	e, notified := newTestEditor(t, "A", "B", "C")

	e.SelectAll()
	if got := e.SelectedIndices(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("SelectAll = %v", got)
	}
	if err := e.ToggleSelect(1, false); err != nil {
		t.Fatal(err)
	}
	if e.IsSelected(1) {
		t.Error("index 1 still selected")
	}
	e.ClearSelection()
	if len(e.SelectedIndices()) != 0 {
		t.Error("ClearSelection left members")
	}
	if err := e.ToggleSelect(3, true); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("ToggleSelect(3) err = %v", err)
	}
	if *notified != 3 {
		t.Errorf("notified %d times, want 3", *notified)
	}
	if e.CanUndo() {
		t.Error("selection changes are not undoable")
	}
}

func TestTimelineAndSnapshot(t *testing.T) {
	e, _ := newTestEditor(t, "A", "B")
	if err := e.SetDuration(1, 600); err != nil {
		t.Fatal(err)
	}

	tl := e.Timeline(150)
	if len(tl) != 2 || tl[0].DurationMs != 150 || tl[1].DurationMs != 600 {
		t.Errorf("timeline = %+v", tl)
	}
	if tl := e.Timeline(0); tl[0].DurationMs != DefaultDurationMs {
		t.Errorf("invalid fallback not replaced: %d", tl[0].DurationMs)
	}

	snap := e.Snapshot()
	if snap.Revision != e.Notifier().Revision() {
		t.Errorf("snapshot revision %d", snap.Revision)
	}
	if snap.LastUndo != OpDuration || snap.UndoDepth != 1 {
		t.Errorf("snapshot undo = %v/%d", snap.LastUndo, snap.UndoDepth)
	}
	if snap.MenuOpen || snap.MenuTarget != NoTarget {
		t.Errorf("snapshot menu = %v/%d", snap.MenuOpen, snap.MenuTarget)
	}
}

func TestIsUserError(t *testing.T) {
	e, _ := newTestEditor(t)
	_, err := e.Undo()
	if !IsUserError(err) {
		t.Errorf("IsUserError(%v) = false", err)
	}
	if IsUserError(errors.New("disk full")) {
		t.Error("IsUserError matched an unrelated error")
	}
}
