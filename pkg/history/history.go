// Package history persists a journal of availability transitions.
//
// Each dispatched transition is appended as one record; the 'nofus
// history' command reads them back. Journal failures are advisory:
// a broken journal never affects monitoring or dispatch.
package history

import "time"

// Record is one availability transition as it was dispatched.
type Record struct {
	// At is when the transition was observed.
	At time.Time `json:"at"`

	// From and To are the condition names (e.g. "all-mounted").
	From string `json:"from"`
	To   string `json:"to"`

	// Path is the mount point whose probe triggered the transition.
	Path string `json:"path"`

	// Command is the shell command that was (or would have been) run.
	Command string `json:"command"`

	// DryRun reports whether execution was skipped.
	DryRun bool `json:"dry_run"`

	// Success reports whether the command exited zero.
	// Always true for dry runs.
	Success bool `json:"success"`

	// Error is the command failure message, empty on success.
	Error string `json:"error,omitempty"`

	// DurationMS is the command runtime in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// Store persists transition records.
type Store interface {
	// Append adds one record to the journal.
	Append(rec Record) error

	// Recent returns up to n records, newest first.
	Recent(n int) ([]Record, error)

	// Close releases the underlying storage.
	Close() error
}
