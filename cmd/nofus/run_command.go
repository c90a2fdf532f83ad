package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xmhha/nofus/pkg/config"
	"github.com/0xmhha/nofus/pkg/dispatcher"
	"github.com/0xmhha/nofus/pkg/history"
	"github.com/0xmhha/nofus/pkg/logger"
	"github.com/0xmhha/nofus/pkg/monitor"
	"github.com/0xmhha/nofus/pkg/probe"
	"github.com/0xmhha/nofus/pkg/watcher"
)

// runCommand starts the monitoring daemon.
type runCommand struct {
	configPath string
	dryRun     bool
	verbose    bool
}

// Execute runs the daemon until a termination signal arrives.
func (c *runCommand) Execute() error {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		// First run without any config file: write a template and exit
		// cleanly so the operator can edit it. An explicit -config path
		// that is missing is still an error.
		if errors.Is(err, config.ErrConfigNotFound) && c.configPath == "" {
			return writeFirstRunTemplate()
		}
		return err
	}

	logCfg := cfg.Logging
	if c.verbose {
		logCfg.Level = "debug"
	}
	log := logger.New(logger.Config{
		Level:  logCfg.Level,
		Output: logCfg.Output,
		Format: logCfg.Format,
	})

	if c.dryRun {
		log.Warn("dry run enabled, no commands will be executed")
	}

	journal := openJournal(cfg, log)
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			log.Warn("failed to close journal", "error", closeErr)
		}
	}()

	w, err := watcher.New(watcher.Config{}, log)
	if err != nil {
		return fmt.Errorf("failed to create mount watcher: %w", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			log.Warn("failed to close watcher", "error", closeErr)
		}
	}()

	p := probe.New(probe.Config{Timeout: cfg.ProbeTimeout()}, log)

	d := dispatcher.New(dispatcher.Config{
		AllMountedCmd:   cfg.AllMountedCmd,
		AnyUnmountedCmd: cfg.AnyUnmountedCmd,
		DryRun:          c.dryRun,
	}, log)

	m, err := monitor.New(monitor.Config{
		MountPoints:  cfg.MountPoints,
		PollInterval: cfg.Delay(),
	}, p, w, d, journal, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			log.Warn("failed to close monitor", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	log.Info("nofus started",
		"version", version,
		"poll_interval", cfg.Delay().String(),
		"dry_run", c.dryRun)

	<-ctx.Done()
	log.Info("termination signal received, shutting down")

	if stopErr := m.Stop(); stopErr != nil && !errors.Is(stopErr, monitor.ErrMonitorNotRunning) {
		log.Warn("failed to stop monitor", "error", stopErr)
	}

	return nil
}

// writeFirstRunTemplate creates a starter configuration and reports
// where it went. Returning nil keeps the exit status zero: an unedited
// template is expected on first run, not a failure.
func writeFirstRunTemplate() error {
	path := config.DefaultPath()
	if err := config.WriteTemplate(path); err != nil {
		return fmt.Errorf("failed to create config template: %w", err)
	}

	fmt.Fprintf(os.Stderr,
		"No configuration found. A starter config was written to %s.\n"+
			"Edit it (mount points and commands) and start nofus again.\n",
		path)
	return nil
}

// openJournal opens the transition journal, degrading to an in-memory
// store when persistence is disabled or unavailable.
func openJournal(cfg *config.Config, log logger.Logger) history.Store {
	if !cfg.History.Enabled {
		return history.NewMemoryStore()
	}

	journal, err := history.NewBoltStore(cfg.History.DBPath)
	if err != nil {
		log.Warn("transition journal unavailable, continuing without persistence",
			"path", cfg.History.DBPath,
			"error", err)
		return history.NewMemoryStore()
	}

	return journal
}
