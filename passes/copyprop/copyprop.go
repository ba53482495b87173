// Package copyprop implements copy propagation over SSA form: it tracks
// assignments of the shape `x <- y` as "available copies" per block via a forward
// dataflow analysis, then rewrites uses of x to y wherever the copy is still
// available (spec.md §4.6).
package copyprop

import (
	"context"
	"fmt"

	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/passes/dce"
)

// Options configures one run of the pass.
type Options struct {
	MaxIterations int
	// DirectCopyConfidence scores a tracked direct identifier copy (default 0.9).
	// OtherInitConfidence (default 0.5) is validated but no code path reads it:
	// only a direct identifier copy is tracked, and any other initializer removes
	// its target from the available set.
	DirectCopyConfidence float64
	OtherInitConfidence  float64
	// AvailabilityThreshold is the minimum confidence a copy needs to be usable at
	// a rewrite site (spec.md §4.6's 0.8).
	AvailabilityThreshold float64
}

// DefaultOptions matches spec.md §4.6's stated defaults.
func DefaultOptions() Options {
	return Options{MaxIterations: 100, DirectCopyConfidence: 0.9, OtherInitConfidence: 0.5, AvailabilityThreshold: 0.8}
}

// Validate reports a configuration error at construction time rather than letting a
// bad limit silently degrade into a no-op pass.
func (o Options) Validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("copyprop: maxIterations must be >= 1, got %d", o.MaxIterations)
	}
	if o.DirectCopyConfidence < 0 || o.DirectCopyConfidence > 1 {
		return fmt.Errorf("copyprop: directCopyConfidence must be in [0,1], got %v", o.DirectCopyConfidence)
	}
	if o.OtherInitConfidence < 0 || o.OtherInitConfidence > 1 {
		return fmt.Errorf("copyprop: otherInitConfidence must be in [0,1], got %v", o.OtherInitConfidence)
	}
	if o.AvailabilityThreshold < 0 || o.AvailabilityThreshold > 1 {
		return fmt.Errorf("copyprop: availabilityThreshold must be in [0,1], got %v", o.AvailabilityThreshold)
	}
	return nil
}

// copy is one tracked `target <- source` fact with its confidence.
type copy struct {
	target, source ssaKey
	confidence     float64
}

// ssaKey identifies one SSA (name, version) pair, the granularity copy facts are
// tracked at: in SSA form every such pair is defined exactly once in the whole
// program, so a target key never needs a block qualifier.
type ssaKey struct {
	name    string
	version ids.SSAVersion
}

func keyOf(id *ir.SSAIdentifier) ssaKey { return ssaKey{name: id.Name, version: id.Version} }

// New returns the copy-propagation pass.
func New(opts Options) *pass.Pass {
	return &pass.Pass{
		Name:         "copyprop",
		Description:  "propagates direct identifier copies across their available range",
		Dependencies: nil,
		Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return run(st, opts)
		},
	}
}

// isPureCall reports whether callee is a known side-effect-free function, the only
// case in which a call does not conservatively kill every tracked copy
// (DESIGN.md's resolution of spec.md §9's copy-propagation open question).
func isPureCall(callee ir.Expression) bool {
	id, ok := callee.(*ir.Identifier)
	if !ok {
		return false
	}
	return dce.PureBuiltins[id.Name]
}
