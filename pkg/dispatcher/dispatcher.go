// Package dispatcher executes the configured shell commands on
// availability transitions.
//
// Commands are passed verbatim to 'sh -c'; the operator is trusted to
// supply safe commands. Only the exit status is captured: stdout and
// stderr are not collected, so a chatty command cannot grow unbounded
// buffers inside the daemon. A failing command is logged and never
// crashes or stops the monitor.
package dispatcher

import (
	"context"
	"os/exec"
	"time"

	"github.com/0xmhha/nofus/pkg/aggregator"
	"github.com/0xmhha/nofus/pkg/logger"
)

// Result records the outcome of one dispatch.
type Result struct {
	// Condition is the condition that was dispatched.
	Condition aggregator.Condition

	// Command is the shell command string that was (or would be) run.
	Command string

	// DryRun reports whether execution was skipped.
	DryRun bool

	// Duration is the command's wall-clock runtime.
	Duration time.Duration

	// Err is the launch or exit error, nil on success or dry run.
	Err error
}

// Dispatcher runs the command configured for a condition.
type Dispatcher interface {
	// Dispatch executes the command mapped to condition.
	//
	// Never returns an error to the caller: command failure is part of
	// the Result and is logged, not escalated. The call blocks for the
	// command's runtime; callers that must not stall run it on their
	// own goroutine.
	Dispatch(ctx context.Context, condition aggregator.Condition) Result
}

// Config contains dispatcher configuration.
type Config struct {
	// AllMountedCmd runs on transition to AllMounted.
	AllMountedCmd string

	// AnyUnmountedCmd runs on transition to AnyUnmounted.
	AnyUnmountedCmd string

	// DryRun logs the command instead of executing it.
	DryRun bool
}

// dispatcher implements Dispatcher.
type dispatcher struct {
	config Config
	logger logger.Logger

	// runCommand is an injection point for tests.
	runCommand func(ctx context.Context, command string) error
}

// New creates a command dispatcher.
func New(cfg Config, log logger.Logger) Dispatcher {
	return &dispatcher{
		config:     cfg,
		logger:     log,
		runCommand: runShellCommand,
	}
}

// Dispatch implements Dispatcher.Dispatch.
func (d *dispatcher) Dispatch(ctx context.Context, condition aggregator.Condition) Result {
	res := Result{
		Condition: condition,
		DryRun:    d.config.DryRun,
	}

	switch condition {
	case aggregator.AllMounted:
		res.Command = d.config.AllMountedCmd
	case aggregator.AnyUnmounted:
		res.Command = d.config.AnyUnmountedCmd
	default:
		// Indeterminate is filtered out by the aggregator's
		// edge-trigger rule; seeing it here is a programming error.
		d.logger.Warn("dispatch requested for non-dispatchable condition",
			"condition", condition)
		return res
	}

	if d.config.DryRun {
		d.logger.Info("dry run, command not executed",
			"condition", condition,
			"command", res.Command)
		return res
	}

	d.logger.Debug("running command",
		"condition", condition,
		"command", res.Command)

	start := time.Now()
	err := d.runCommand(ctx, res.Command)
	res.Duration = time.Since(start)
	res.Err = err

	if err != nil {
		d.logger.Error("command failed",
			"condition", condition,
			"command", res.Command,
			"duration", res.Duration,
			"error", err)
		return res
	}

	d.logger.Info("command succeeded",
		"condition", condition,
		"command", res.Command,
		"duration", res.Duration)

	return res
}

// runShellCommand executes a command string through the shell,
// discarding its output.
func runShellCommand(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) // #nosec G204: operator-supplied command
	// Stdout/Stderr left nil: output goes to /dev/null, only the exit
	// status matters.
	return cmd.Run()
}
