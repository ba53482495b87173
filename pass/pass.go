// Package pass hosts the rewrite-pass framework that sits on top of the SSA
// engine: a Pass declares its dependencies on other passes, the Manager resolves a
// deterministic run order, and each pass is given a bounded time budget so one
// misbehaving rewrite cannot hang the whole pipeline (spec.md §4.4, §5).
package pass

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ssa"
)

// State is the mutable unit every pass reads and rewrites: one function's CFG, its
// dominance info, and its SSA program. A pass is free to mutate Program's graph in
// place (spec.md §4.4 describes rewrites as in-place graph mutation, not a
// copy-on-write tree); Changed reports whether it touched anything, which the
// Manager uses to decide whether dependents need to re-run.
type State struct {
	Graph   *cfg.Graph
	Dom     *dominance.Info
	Program *ssa.Program

	// Warnings accumulates non-fatal diagnostics raised by passes (analysis
	// non-convergence, a transformation declining to fire for safety, an SSA use
	// with no reaching def). Errors go through Run's error return; warnings do not
	// stop the pipeline and are only ever appended to, never cleared mid-run.
	Warnings []string

	// NodesVisited and NodesChanged let a running pass report its own traversal
	// size and rewrite count; the Manager zeroes both before invoking Run and
	// copies them into the pass's Result afterward.
	NodesVisited int
	NodesChanged int
}

// Visited increments the running pass's visited-node count by n.
func (st *State) Visited(n int) { st.NodesVisited += n }

// Rewrote increments the running pass's changed-node count by n.
func (st *State) Rewrote(n int) { st.NodesChanged += n }

// Warn appends a warning attributed to passName.
func (st *State) Warn(passName, msg string) {
	st.Warnings = append(st.Warnings, fmt.Sprintf("%s: %s", passName, msg))
}

// Run is the function a Pass executes. It returns whether it changed the state and
// any error encountered; a non-nil error does not necessarily stop the pipeline
// (see Manager's ErrorPolicy).
type Run func(ctx context.Context, st *State) (changed bool, err error)

// Pass is one named, independently schedulable rewrite or analysis step.
type Pass struct {
	Name         string
	Description  string
	Dependencies []string
	Run          Run
	// Timeout bounds a single invocation of Run; zero means no per-pass timeout
	// (the Manager's own overall timeout, if any, still applies).
	Timeout time.Duration
}

// Result records the outcome of running one pass once, including the metrics
// spec.md §4.4/§6 requires alongside the {state, changed} outcome: how long the
// pass took, how much of the graph it looked at and rewrote, and (best-effort)
// how much it allocated while doing so.
type Result struct {
	Pass     string
	Changed  bool
	Err      error
	Duration time.Duration
	TimedOut bool

	// NodesVisited and NodesChanged are populated by the pass itself (via
	// State.Visited/State.Rewrote) rather than inferred by the Manager, since only
	// the pass knows what "visited" and "changed" mean for its own traversal.
	NodesVisited int
	NodesChanged int
	// Memory is the change in bytes allocated by the Go runtime across the pass's
	// invocation (runtime.MemStats.TotalAlloc, sampled before and after Run). It
	// is a coarse, GC-independent approximation, not a precise working-set
	// measurement.
	Memory int64
}

// Metrics summarizes a full Manager.Run invocation.
type Metrics struct {
	Results   []Result
	Rounds    int
	Total     time.Duration
	Cancelled bool
}

// Changed reports whether any pass in the run reported a change.
func (m Metrics) Changed() bool {
	for _, r := range m.Results {
		if r.Changed {
			return true
		}
	}
	return false
}

// errTimeout is wrapped into a Result's Err when a pass exceeds its Timeout.
type errTimeout struct{ pass string }

func (e errTimeout) Error() string { return fmt.Sprintf("pass %q exceeded its timeout", e.pass) }
