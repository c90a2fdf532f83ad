// Package watcher provides low-latency notification of mount and
// unmount events.
//
// It watches the parent directory of each monitored mount point with
// fsnotify. Watching the mount point itself fails once it is unmounted
// (the inode may vanish with the filesystem); the parent directory
// reliably surfaces the create/remove activity that mounting produces.
//
// Events are a trigger, not a verdict: notification backends coalesce,
// drop and reorder events under load, so consumers re-verify health
// with a probe before acting.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, []string{"/mnt/media", "/mnt/backups"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("activity on %s: %s\n", event.Path, event.Op)
//	}
package watcher

import (
	"context"
	"time"
)

// Op describes a filesystem operation type.
type Op uint32

// Filesystem operation types.
const (
	OpCreate Op = 1 << iota // Entry created
	OpWrite                 // Entry modified
	OpRemove                // Entry deleted
	OpRename                // Entry renamed/moved
	OpChmod                 // Entry attributes changed
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Event reports filesystem activity on a monitored mount point.
type Event struct {
	// Path is the monitored mount point the activity maps to,
	// not the raw notification name.
	Path string

	// Op is the operation observed on the mount point's directory entry.
	Op Op

	// Timestamp is when the event was observed.
	Timestamp time.Time
}

// Watcher provides mount point event monitoring.
type Watcher interface {
	// Start begins watching the parent directories of the given mount
	// points.
	//
	// A parent that cannot be subscribed is logged as a warning and
	// reported on Errors(); the mount point stays covered by periodic
	// polling only. Start fails only for lifecycle misuse, never for
	// subscription problems.
	Start(ctx context.Context, mountPoints []string) error

	// Stop gracefully shuts down the watcher.
	Stop() error

	// Events returns the channel for receiving mount point events.
	//
	// Events are debounced per mount point. The channel is closed when
	// the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel for receiving non-fatal watcher errors,
	// including per-path subscription failures.
	Errors() <-chan error

	// EnsureWatches retries subscriptions that previously failed, e.g.
	// after a parent directory appears. Safe to call at any time while
	// the watcher is running.
	EnsureWatches() error

	// Close closes the watcher and releases resources.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is the time to wait before emitting an event.
	// Multiple events for the same mount point within this interval
	// are coalesced. Default: 100ms.
	DebounceInterval time.Duration
}
