package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xmhha/nofus/pkg/logger"
)

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config Config

	events chan Event
	errors chan error

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// Mount point bookkeeping.
	watchMu sync.Mutex
	byEntry map[string]string   // directory entry path -> monitored mount point
	parents map[string][]string // parent directory -> mount points under it
	pending map[string]bool     // parent directories with failed subscriptions

	// Debouncing state.
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex
}

// New creates a new mount point watcher.
//
// Parameters:
//   - cfg: Watcher configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Watcher
//   - Error if the underlying fsnotify watcher cannot be created
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:            fsw,
		logger:         log,
		config:         cfg,
		events:         make(chan Event, 100),
		errors:         make(chan error, 10),
		stopChan:       make(chan struct{}),
		byEntry:        make(map[string]string),
		parents:        make(map[string][]string),
		pending:        make(map[string]bool),
		debounceTimers: make(map[string]*time.Timer),
	}

	log.Debug("mount watcher created",
		"debounce_interval", cfg.DebounceInterval)

	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, mountPoints []string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	if len(mountPoints) == 0 {
		w.mu.Unlock()
		return ErrNoMountPoints
	}
	w.running = true
	w.mu.Unlock()

	// Index mount points by their directory entry and group by parent.
	w.watchMu.Lock()
	for _, mp := range mountPoints {
		clean := filepath.Clean(mp)
		parent := filepath.Dir(clean)

		w.byEntry[clean] = clean
		w.parents[parent] = append(w.parents[parent], clean)
	}

	// Subscribe to each parent directory. Failures are not fatal: the
	// affected mount points remain covered by periodic polling.
	for parent := range w.parents {
		w.addParent(parent)
	}
	w.watchMu.Unlock()

	w.logger.Info("mount watcher started",
		"mount_points", len(mountPoints),
		"parent_dirs", len(w.parents))

	// Start event processing loop.
	go w.processEvents(ctx)

	return nil
}

// addParent subscribes to one parent directory.
// Caller holds watchMu.
func (w *watcher) addParent(parent string) {
	if err := w.fsw.Add(parent); err != nil {
		w.pending[parent] = true
		w.logger.Warn("watch subscription failed, falling back to polling",
			"dir", parent,
			"mount_points", w.parents[parent],
			"error", err)
		w.sendError(fmt.Errorf("%w: %s: %v", ErrSubscriptionFailed, parent, err))
		return
	}

	delete(w.pending, parent)
	w.logger.Debug("watching parent directory", "dir", parent)
}

// EnsureWatches implements Watcher.EnsureWatches.
func (w *watcher) EnsureWatches() error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWatcherClosed
	}
	w.mu.RUnlock()

	w.watchMu.Lock()
	defer w.watchMu.Unlock()

	for parent := range w.pending {
		w.addParent(parent)
	}

	return nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	// Signal stop.
	close(w.stopChan)
	w.running = false

	w.logger.Info("mount watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	// Stop if running.
	if w.running {
		close(w.stopChan)
		w.running = false
	}

	// Close channels.
	close(w.events)
	close(w.errors)

	// Cancel debounce timers.
	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = nil
	w.debounceMu.Unlock()

	// Close fsnotify watcher.
	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("mount watcher closed")
	return nil
}

// processEvents handles events from fsnotify.
func (w *watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("event processing stopped", "reason", "context cancelled")
			return

		case <-w.stopChan:
			w.logger.Debug("event processing stopped", "reason", "stop signal")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.logger.Warn("fsnotify events channel closed")
				return
			}

			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.logger.Warn("fsnotify errors channel closed")
				return
			}

			w.logger.Error("fsnotify error", "error", err)
			w.sendError(err)
		}
	}
}

// handleEvent processes a single fsnotify event with debouncing.
func (w *watcher) handleEvent(event fsnotify.Event) {
	// Only directory entries that are monitored mount points matter;
	// parent directories see unrelated sibling activity too.
	w.watchMu.Lock()
	mountPoint, monitored := w.byEntry[filepath.Clean(event.Name)]
	w.watchMu.Unlock()

	if !monitored {
		return
	}

	var op Op
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		op = OpCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		op = OpWrite
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		op = OpRemove
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		op = OpRename
	case event.Op&fsnotify.Chmod == fsnotify.Chmod:
		op = OpChmod
	default:
		w.logger.Debug("unknown fsnotify operation",
			"op", event.Op,
			"path", event.Name)
		return
	}

	w.logger.Debug("raw mount point event",
		"path", mountPoint,
		"op", op)

	// Debounce: mounting produces a burst of kernel events for the
	// same entry, and each emitted event costs the consumer a probe.
	w.debounceEvent(Event{
		Path:      mountPoint,
		Op:        op,
		Timestamp: time.Now(),
	})
}

// debounceEvent coalesces rapid events for the same mount point.
func (w *watcher) debounceEvent(event Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	// Cancel existing timer for this mount point.
	if timer, exists := w.debounceTimers[event.Path]; exists {
		timer.Stop()
	}

	// Create new debounce timer.
	w.debounceTimers[event.Path] = time.AfterFunc(w.config.DebounceInterval, func() {
		// The lock is held across the check and the send so Close
		// cannot close the channel between the two. The send must not
		// block under a read lock, so a full channel drops the event;
		// periodic polling re-covers the path.
		w.mu.RLock()
		if !w.closed {
			select {
			case w.events <- event:
			default:
				w.logger.Warn("events channel full, dropping event",
					"path", event.Path)
			}
		}
		w.mu.RUnlock()

		// Clean up timer.
		w.debounceMu.Lock()
		if w.debounceTimers != nil {
			delete(w.debounceTimers, event.Path)
		}
		w.debounceMu.Unlock()
	})
}

// sendError forwards an error without blocking event processing.
func (w *watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("error channel full, dropping error", "error", err)
	}
}
