package watcher

import "errors"

// Common errors returned by the watcher.
var (
	// ErrWatcherClosed is returned when attempting to use a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyStarted is returned when Start is called on a running watcher.
	ErrAlreadyStarted = errors.New("watcher already started")

	// ErrNotStarted is returned when Stop is called on a non-running watcher.
	ErrNotStarted = errors.New("watcher not started")

	// ErrSubscriptionFailed is reported on the Errors channel when a
	// parent directory could not be watched. The affected mount point
	// falls back to polling-only coverage.
	ErrSubscriptionFailed = errors.New("watch subscription failed")

	// ErrNoMountPoints is returned when Start is called without paths.
	ErrNoMountPoints = errors.New("no mount points to watch")
)
