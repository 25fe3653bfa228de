package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/conneroisu/vigil/internal/logging"
)

// ChangeHandler handles a batch of file change events. On the initial pass,
// before any tick has run, it is invoked once with an empty batch.
type ChangeHandler func(events []ChangeEvent) error

// PollWatcher detects file changes by re-snapshotting the watched roots on a
// fixed interval and diffing against the previous snapshot. It owns exactly
// one current snapshot; ticks never overlap, so a slow handler delays the
// next poll rather than racing it.
type PollWatcher struct {
	snapshotter *Snapshotter
	roots       []string
	interval    time.Duration
	handlers    []ChangeHandler
	current     Snapshot
	logger      logging.Logger
	mutex       sync.RWMutex
}

// NewPollWatcher creates a watcher over the given roots polling at the given
// interval
func NewPollWatcher(roots []string, interval time.Duration, logger logging.Logger) *PollWatcher {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &PollWatcher{
		snapshotter: NewSnapshotter(logger),
		roots:       roots,
		interval:    interval,
		handlers:    make([]ChangeHandler, 0),
		logger:      logger.WithComponent("watcher"),
	}
}

// AddHandler adds a change handler
func (w *PollWatcher) AddHandler(handler ChangeHandler) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Run takes the initial snapshot, fires the handlers once with an empty batch
// (the initial build), then polls until the context is cancelled. It only
// returns on cancellation.
func (w *PollWatcher) Run(ctx context.Context) error {
	w.mutex.Lock()
	w.current = w.snapshotter.Take(ctx, w.roots)
	w.mutex.Unlock()

	w.logger.Info(ctx, "watching for changes",
		"roots", w.roots,
		"interval", w.interval.String(),
		"files", len(w.Current()),
	)

	w.dispatch(ctx, []ChangeEvent{})

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick runs one snapshot/diff cycle and dispatches at most one batch.
func (w *PollWatcher) tick(ctx context.Context) {
	next := w.snapshotter.Take(ctx, w.roots)

	w.mutex.Lock()
	events := Diff(w.current, next)
	if len(events) == 0 {
		w.mutex.Unlock()
		return
	}
	// Promote the new snapshot before building: edits made while the build
	// runs surface on the next tick instead of being lost.
	w.current = next
	w.mutex.Unlock()

	for _, event := range events {
		w.logger.Info(ctx, "change detected", "type", event.Type.String(), "path", event.Path)
	}

	w.dispatch(ctx, events)
}

// dispatch invokes every handler once with the whole batch.
func (w *PollWatcher) dispatch(ctx context.Context, events []ChangeEvent) {
	w.mutex.RLock()
	handlers := w.handlers
	w.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler(events); err != nil {
			// A failing handler (usually a broken build) must not stop
			// the watch loop.
			w.logger.Error(ctx, err, "change handler failed")
		}
	}
}

// Current returns a copy of the watcher's current snapshot
func (w *PollWatcher) Current() Snapshot {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	snapshot := make(Snapshot, len(w.current))
	for path, modTime := range w.current {
		snapshot[path] = modTime
	}
	return snapshot
}
