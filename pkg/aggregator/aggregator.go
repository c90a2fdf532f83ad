// Package aggregator tracks per-mount health and derives the
// system-wide availability condition.
//
// It is a pure state machine: no I/O, no clocks, no goroutines. The
// monitor feeds it probe results one at a time and acts on the
// edge-triggered transitions it reports. The aggregator is not safe
// for concurrent use; callers serialize all observations (the monitor
// funnels every sample through a single consumer goroutine).
//
// Example usage:
//
//	agg := aggregator.New([]string{"/mnt/a", "/mnt/b"})
//	if tr, changed := agg.Observe("/mnt/a", probe.Mounted, time.Now()); changed {
//	    fmt.Printf("%s -> %s\n", tr.From, tr.To)
//	}
package aggregator

import (
	"time"

	"github.com/0xmhha/nofus/pkg/probe"
)

// Condition is the system-wide availability state.
type Condition int

const (
	// Indeterminate means at least one mount point has not been probed
	// yet and no Unmounted result has arrived. Never dispatched on.
	Indeterminate Condition = iota

	// AllMounted means every mount point resolved Mounted.
	AllMounted

	// AnyUnmounted means at least one mount point resolved Unmounted.
	AnyUnmounted
)

// String returns a human-readable condition name.
func (c Condition) String() string {
	switch c {
	case AllMounted:
		return "all-mounted"
	case AnyUnmounted:
		return "any-unmounted"
	default:
		return "indeterminate"
	}
}

// MountState is the tracked state of one configured mount point.
type MountState struct {
	// Path is the mount point path.
	Path string

	// Health is the last resolved health, Unknown before the first probe.
	Health probe.Health

	// LastChanged is when Health last flipped.
	LastChanged time.Time
}

// Transition reports a change of the system-wide condition.
type Transition struct {
	// From is the previous condition.
	From Condition

	// To is the new condition. Never Indeterminate: health never
	// regresses to Unknown.
	To Condition

	// Path is the mount point whose sample triggered the change.
	Path string

	// At is the observation time of the triggering sample.
	At time.Time
}

// Aggregator combines per-mount health into a system condition.
type Aggregator struct {
	states    map[string]*MountState
	order     []string
	condition Condition
}

// New creates an aggregator for the given mount points.
//
// Every mount point starts Unknown and the condition starts
// Indeterminate; nothing is dispatched until probes resolve the
// initial state.
func New(mountPoints []string) *Aggregator {
	a := &Aggregator{
		states:    make(map[string]*MountState, len(mountPoints)),
		order:     make([]string, 0, len(mountPoints)),
		condition: Indeterminate,
	}

	for _, mp := range mountPoints {
		if _, exists := a.states[mp]; exists {
			continue
		}
		a.states[mp] = &MountState{
			Path:   mp,
			Health: probe.Unknown,
		}
		a.order = append(a.order, mp)
	}

	return a
}

// Observe ingests one probe result and recomputes the condition.
//
// Returns the transition and true iff the system condition changed to
// a dispatchable value. Samples for unconfigured paths and Unknown
// health values are ignored. Repeated samples reporting an unchanged
// condition never produce a transition (edge-triggered dispatch).
func (a *Aggregator) Observe(path string, health probe.Health, at time.Time) (Transition, bool) {
	state, configured := a.states[path]
	if !configured || health == probe.Unknown {
		return Transition{}, false
	}

	if state.Health != health {
		state.Health = health
		state.LastChanged = at
	}

	// Recompute after every individual update: with several paths
	// flapping inside one polling interval this yields at most one
	// dispatch per actual condition change.
	next := a.compute()
	if next == a.condition || next == Indeterminate {
		return Transition{}, false
	}

	tr := Transition{
		From: a.condition,
		To:   next,
		Path: path,
		At:   at,
	}
	a.condition = next

	return tr, true
}

// compute derives the condition from the current health set.
//
// Any Unmounted forces AnyUnmounted. Unknown paths are excluded from
// the determination: AllMounted requires every path to have resolved
// Mounted, so a mix of Mounted and Unknown stays Indeterminate.
func (a *Aggregator) compute() Condition {
	unknown := false

	for _, state := range a.states {
		switch state.Health {
		case probe.Unmounted:
			return AnyUnmounted
		case probe.Unknown:
			unknown = true
		}
	}

	if unknown {
		return Indeterminate
	}
	return AllMounted
}

// Condition returns the current system condition.
func (a *Aggregator) Condition() Condition {
	return a.condition
}

// Resolved reports whether every mount point has been probed at least
// once.
func (a *Aggregator) Resolved() bool {
	for _, state := range a.states {
		if state.Health == probe.Unknown {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of all mount states in configuration order.
func (a *Aggregator) Snapshot() []MountState {
	out := make([]MountState, 0, len(a.order))
	for _, mp := range a.order {
		out = append(out, *a.states[mp])
	}
	return out
}

// MountPoints returns the configured mount point paths in order.
func (a *Aggregator) MountPoints() []string {
	return append([]string{}, a.order...)
}
