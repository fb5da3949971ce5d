// Package ui runs the system tray menu for the agent.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/framereel/framereel-agent/internal/studio"
)

type Tray struct {
	studio *studio.Studio
	logger *slog.Logger

	statusItem *systray.MenuItem
	framesItem *systray.MenuItem
	undoItem   *systray.MenuItem
	cancelItem *systray.MenuItem

	mu sync.Mutex

	stop   chan struct{}
	onQuit func()
}

type TrayConfig struct {
	Studio *studio.Studio
	Logger *slog.Logger
	OnQuit func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		studio: cfg.Studio,
		logger: cfg.Logger,
		stop:   make(chan struct{}),
		onQuit: cfg.OnQuit,
	}
}

// Run blocks on the platform event loop; it must be called from the main
// goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Framereel")
	systray.SetTooltip("Framereel Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Encoder status")
	t.statusItem.Disable()

	t.framesItem = systray.AddMenuItem("Frames: 0", "Frames in the session")
	t.framesItem.Disable()

	systray.AddSeparator()

	t.undoItem = systray.AddMenuItem("Undo", "Undo the last edit")
	t.cancelItem = systray.AddMenuItem("Cancel Encode", "Stop the running encode")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Framereel Agent")

	t.refresh()
	go t.watch()

	go func() {
		for {
			select {
			case <-t.undoItem.ClickedCh:
				t.handleUndo()
			case <-t.cancelItem.ClickedCh:
				t.handleCancel()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	close(t.stop)
	t.logger.Info("system tray exiting")
}

// watch refreshes the menu after session changes. Studio listeners run
// under the studio lock, so the listener only signals.
func (t *Tray) watch() {
	changed := make(chan struct{}, 1)
	cancel := t.studio.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		select {
		case <-t.stop:
			return
		case <-changed:
			t.refresh()
		}
	}
}

func (t *Tray) refresh() {
	l := labelsFor(t.studio.Summary())

	t.mu.Lock()
	defer t.mu.Unlock()

	t.statusItem.SetTitle(l.status)
	t.framesItem.SetTitle(l.frames)
	t.undoItem.SetTitle(l.undo)
	setEnabled(t.undoItem, l.canUndo)
	setEnabled(t.cancelItem, l.canCancel)
}

func (t *Tray) handleUndo() {
	res, err := t.studio.Dispatch(studio.Command{Name: "undo"})
	if err != nil {
		t.logger.Warn("undo from tray failed", "error", err)
		return
	}
	t.logger.Info("undo from tray", "operation", res.Undone)
}

func (t *Tray) handleCancel() {
	if err := t.studio.CancelEncode(); err != nil {
		t.logger.Warn("cancel from tray failed", "error", err)
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}

func setEnabled(item *systray.MenuItem, on bool) {
	if on {
		item.Enable()
	} else {
		item.Disable()
	}
}

type trayLabels struct {
	status    string
	frames    string
	undo      string
	canUndo   bool
	canCancel bool
}

func labelsFor(sum studio.Summary) trayLabels {
	l := trayLabels{
		status:    "Status: Idle",
		frames:    fmt.Sprintf("Frames: %d", sum.Frames),
		undo:      "Undo",
		canUndo:   sum.LastUndo != "" && !sum.Busy,
		canCancel: sum.Busy,
	}
	if sum.Selected > 0 {
		l.frames = fmt.Sprintf("Frames: %d (%d selected)", sum.Frames, sum.Selected)
	}
	if sum.Busy {
		l.status = fmt.Sprintf("Status: Encoding %d%%", sum.Progress)
	}
	if sum.LastUndo != "" {
		l.undo = fmt.Sprintf("Undo %s", sum.LastUndo)
	}
	return l
}
