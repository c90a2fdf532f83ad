// Package monitor ties the probe, watcher, aggregator and dispatcher
// together into the running daemon.
//
// Two sources produce raw samples: the filesystem watcher (low
// latency) and a periodic sweep over every mount point (bounded
// worst-case detection even if events are missed). Both funnel into a
// single consumer goroutine that probes the named path, feeds the
// result to the aggregator and, on a genuine condition change, hands
// the transition to the dispatcher. The consumer goroutine is the only
// mutator of aggregator state; the source of a sample affects latency,
// never correctness, because every sample is re-verified by a probe
// before any state changes.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/0xmhha/nofus/pkg/aggregator"
	"github.com/0xmhha/nofus/pkg/dispatcher"
	"github.com/0xmhha/nofus/pkg/history"
	"github.com/0xmhha/nofus/pkg/logger"
	"github.com/0xmhha/nofus/pkg/probe"
	"github.com/0xmhha/nofus/pkg/watcher"
)

// Monitor runs the mount availability state machine.
type Monitor interface {
	// Start probes the initial state, dispatches its condition, and
	// launches the watcher, sweep and consumer loops.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the loops.
	Stop() error

	// Close releases resources. In-flight probes and commands get no
	// grace; process exit is immediate at the OS level.
	Close() error
}

// Config contains monitor configuration.
type Config struct {
	// MountPoints are the paths to monitor, already normalized.
	MountPoints []string

	// PollInterval is the period of the full health sweep.
	// Default: 5s.
	PollInterval time.Duration
}

// sample names a mount point due for re-verification.
type sample struct {
	path   string
	source string // "event" or "poll", latency attribution in logs
}

// monitor implements the Monitor interface.
type monitor struct {
	config     Config
	logger     logger.Logger
	prober     probe.Prober
	watcher    watcher.Watcher
	dispatcher dispatcher.Dispatcher
	journal    history.Store

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// agg is owned by the consumer goroutine after Start's initial
	// sweep; no other code may touch it.
	agg     *aggregator.Aggregator
	samples chan sample

	dispatches sync.WaitGroup
}

// New creates a monitor.
//
// Parameters:
//   - cfg: Monitor configuration
//   - p: Mount prober
//   - w: Mount point watcher
//   - d: Command dispatcher
//   - journal: Transition journal (NewMemoryStore to disable persistence)
//   - log: Logger instance
//
// Returns:
//   - Configured Monitor
//   - Error if no mount points are configured
func New(cfg Config, p probe.Prober, w watcher.Watcher, d dispatcher.Dispatcher, journal history.Store, log logger.Logger) (Monitor, error) {
	if len(cfg.MountPoints) == 0 {
		return nil, ErrNoMountPoints
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}

	m := &monitor{
		config:     cfg,
		logger:     log,
		prober:     p,
		watcher:    w,
		dispatcher: d,
		journal:    journal,
		stopChan:   make(chan struct{}),
		agg:        aggregator.New(cfg.MountPoints),
		samples:    make(chan sample, 100),
	}

	log.Info("monitor created",
		"mount_points", len(cfg.MountPoints),
		"poll_interval", cfg.PollInterval)

	return m, nil
}

// Start implements Monitor.Start.
func (m *monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMonitorClosed
	}
	if m.running {
		m.mu.Unlock()
		return ErrMonitorRunning
	}
	m.running = true
	m.mu.Unlock()

	for _, mp := range m.config.MountPoints {
		m.logger.Info("monitoring mount point", "path", mp)
	}

	// Initial sweep: resolve every path before the loops start, so the
	// first computed condition reflects reality and dispatches once.
	for _, mp := range m.config.MountPoints {
		m.ingest(ctx, sample{path: mp, source: "startup"})
	}

	// Event subscription failure is not fatal: the sweep still bounds
	// detection latency to one poll interval.
	if err := m.watcher.Start(ctx, m.config.MountPoints); err != nil {
		m.logger.Warn("mount event watching unavailable, relying on polling",
			"error", err)
	}

	// The consumer goroutine owns agg once launched; read the sweep's
	// condition before handing ownership over.
	initial := m.agg.Condition()

	go m.processEvents(ctx)
	go m.pollLoop(ctx)
	go m.consumeSamples(ctx)

	m.logger.Info("monitor started",
		"condition", initial.String())
	return nil
}

// Stop implements Monitor.Stop.
func (m *monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMonitorClosed
	}
	if !m.running {
		return ErrMonitorNotRunning
	}

	close(m.stopChan)
	m.running = false

	if err := m.watcher.Stop(); err != nil {
		m.logger.Warn("failed to stop watcher", "error", err)
	}

	m.logger.Info("monitor stopped")
	return nil
}

// Close implements Monitor.Close.
func (m *monitor) Close() error {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return nil
	}

	m.closed = true

	if m.running {
		close(m.stopChan)
		m.running = false
	}
	m.mu.Unlock()

	// Let in-flight dispatches finish writing their journal records.
	m.dispatches.Wait()

	m.logger.Debug("monitor closed")
	return nil
}

// processEvents forwards watcher activity into the sample stream.
func (m *monitor) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-m.stopChan:
			return

		case event, ok := <-m.watcher.Events():
			if !ok {
				m.logger.Debug("watcher events channel closed")
				return
			}

			m.logger.Debug("mount point activity",
				"path", event.Path,
				"op", event.Op.String())
			m.enqueue(sample{path: event.Path, source: "event"})

		case err, ok := <-m.watcher.Errors():
			if !ok {
				m.logger.Debug("watcher errors channel closed")
				return
			}

			// Already logged by the watcher with full context; the
			// affected paths remain covered by the sweep.
			m.logger.Debug("watcher reported error", "error", err)
		}
	}
}

// pollLoop drives the periodic full-health sweep.
func (m *monitor) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-m.stopChan:
			return

		case <-ticker.C:
			for _, mp := range m.config.MountPoints {
				m.enqueue(sample{path: mp, source: "poll"})
			}
		}
	}
}

// enqueue submits a sample without blocking the producer loops.
func (m *monitor) enqueue(s sample) {
	select {
	case m.samples <- s:
	default:
		// The consumer re-probes everything each sweep anyway, so a
		// dropped sample costs latency, not correctness.
		m.logger.Warn("sample channel full, dropping sample",
			"path", s.path,
			"source", s.source)
	}
}

// consumeSamples is the single serialized aggregation path. All
// aggregator mutation happens here.
func (m *monitor) consumeSamples(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-m.stopChan:
			return

		case s := <-m.samples:
			m.ingest(ctx, s)
		}
	}
}

// ingest re-verifies one path via the prober and applies the result.
func (m *monitor) ingest(ctx context.Context, s sample) {
	health := m.prober.Probe(ctx, s.path)

	tr, changed := m.agg.Observe(s.path, health, time.Now())
	if !changed {
		return
	}

	switch tr.To {
	case aggregator.AnyUnmounted:
		m.logger.Error("mount lost",
			"path", tr.Path,
			"old_condition", tr.From.String(),
			"new_condition", tr.To.String())
	case aggregator.AllMounted:
		m.logger.Info("all mount points available",
			"old_condition", tr.From.String(),
			"new_condition", tr.To.String())

		// A recovery may have recreated parent directories whose
		// subscriptions failed earlier.
		if err := m.watcher.EnsureWatches(); err != nil {
			m.logger.Debug("failed to refresh watches", "error", err)
		}
	}

	// Dispatch on its own goroutine: a slow or hanging configured
	// command must not delay detection of further mount changes. The
	// edge-trigger rule suppresses a second dispatch for the same
	// condition before a second process could even launch.
	m.dispatches.Add(1)
	go m.runDispatch(ctx, tr)
}

// runDispatch executes the transition's command and journals the outcome.
func (m *monitor) runDispatch(ctx context.Context, tr aggregator.Transition) {
	defer m.dispatches.Done()

	res := m.dispatcher.Dispatch(ctx, tr.To)

	rec := history.Record{
		At:         tr.At,
		From:       tr.From.String(),
		To:         tr.To.String(),
		Path:       tr.Path,
		Command:    res.Command,
		DryRun:     res.DryRun,
		Success:    res.Err == nil,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}

	if err := m.journal.Append(rec); err != nil {
		// Journal trouble never affects monitoring.
		m.logger.Warn("failed to journal transition", "error", err)
	}
}
