// Package probe determines whether a path is a live, responsive mount.
//
// A path is healthy only if it appears in the kernel mount table and a
// statfs on it completes within a bounded time. The whole check runs on
// a worker goroutine raced against a timer: a stale NFS handle can block
// any access to the path indefinitely, and a probe that hangs would
// defeat the whole monitor.
//
// Example usage:
//
//	p := probe.New(probe.Config{Timeout: 5 * time.Second}, logger.Default())
//	health := p.Probe(ctx, "/mnt/media")
package probe

import (
	"context"
	"time"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"

	"github.com/0xmhha/nofus/pkg/logger"
)

// Health is the resolved availability of a single mount point.
type Health int

const (
	// Unknown means the path has not been probed yet. It is the zero
	// value and never a probe result.
	Unknown Health = iota

	// Mounted means the path is in the mount table and responsive.
	Mounted

	// Unmounted means the path is absent from the mount table, stale,
	// or could not be checked. Probe failures resolve here: an
	// undeterminable mount is treated as down, never as up.
	Unmounted
)

// String returns a human-readable health name.
func (h Health) String() string {
	switch h {
	case Mounted:
		return "mounted"
	case Unmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Prober checks the health of a single mount point.
type Prober interface {
	// Probe resolves the current health of path.
	//
	// Never returns Unknown: errors and timeouts resolve to Unmounted.
	// Returns within the configured timeout even if the underlying
	// filesystem hangs.
	Probe(ctx context.Context, path string) Health
}

// Config contains prober configuration.
type Config struct {
	// Timeout bounds a single statfs call.
	// Default: 5s.
	Timeout time.Duration
}

// prober implements Prober.
type prober struct {
	timeout time.Duration
	logger  logger.Logger

	// Injection points for tests.
	mounted func(path string) (bool, error)
	statfs  func(path string) error
}

// New creates a mount prober.
func New(cfg Config, log logger.Logger) Prober {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &prober{
		timeout: cfg.Timeout,
		logger:  log,
		mounted: mountinfo.Mounted,
		statfs:  statfs,
	}
}

// Probe implements Prober.Probe.
func (p *prober) Probe(ctx context.Context, path string) Health {
	// The mount table lookup resolves the monitored path too (symlink
	// evaluation, stat), so it can hang on a stale hard mount just
	// like the statfs. The entire check runs on one worker raced
	// against the timer; no filesystem access happens on this
	// goroutine.
	result := make(chan Health, 1)
	go func() {
		result <- p.check(path)
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case health := <-result:
		return health

	case <-timer.C:
		// The worker stays blocked until the kernel gives up; it is
		// abandoned rather than awaited.
		p.logger.Error("mount probe timed out",
			"path", path,
			"timeout", p.timeout)
		return Unmounted

	case <-ctx.Done():
		p.logger.Debug("mount probe cancelled", "path", path)
		return Unmounted
	}
}

// check performs the potentially unbounded filesystem work: mount
// table membership, then an actual operation on the mount to prove
// responsiveness. Runs on the probe worker goroutine only.
func (p *prober) check(path string) Health {
	mounted, err := p.mounted(path)
	if err != nil {
		p.logger.Debug("mount table lookup failed",
			"path", path,
			"error", err)
		return Unmounted
	}
	if !mounted {
		return Unmounted
	}

	// The path is in the mount table, but the table lags reality for
	// stale handles: the entry survives while the server is gone. Only
	// an actual filesystem operation proves responsiveness.
	if err := p.statfs(path); err != nil {
		p.logger.Error("mount probe failed",
			"path", path,
			"error", err)
		return Unmounted
	}

	return Mounted
}

// statfs performs the real filesystem liveness check.
func statfs(path string) error {
	var st unix.Statfs_t
	return unix.Statfs(path, &st)
}
