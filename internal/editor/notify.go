package editor

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Notifier tells renderers that the editing state changed. It carries no
// payload; listeners re-read the state they need. Listeners run
// synchronously, in subscription order, after the mutation has completed.
type Notifier struct {
	mu        sync.Mutex
	listeners []listener
	nextID    int
	revision  atomic.Uint64
	logger    *slog.Logger
}

type listener struct {
	id int
	fn func()
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn func()) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, listener{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, l := range n.listeners {
			if l.id == id {
				n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify bumps the revision and invokes every listener. A panicking listener
// is logged and skipped; the remaining listeners still run.
func (n *Notifier) Notify() {
	n.revision.Add(1)

	n.mu.Lock()
	snapshot := make([]listener, len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.Unlock()

	for _, l := range snapshot {
		n.invoke(l)
	}
}

// Revision counts completed Notify calls.
func (n *Notifier) Revision() uint64 {
	return n.revision.Load()
}

func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

func (n *Notifier) invoke(l listener) {
	defer func() {
		if r := recover(); r != nil && n.logger != nil {
			n.logger.Error("state listener panicked", "listener_id", l.id, "error", r)
		}
	}()
	l.fn()
}
