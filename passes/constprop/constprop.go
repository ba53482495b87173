// Package constprop implements sparse constant propagation over SSA form: each
// variable version is tracked in a three-point lattice and rewritten to a literal
// once its evaluated confidence clears a threshold (spec.md §4.5). Branch
// conditions do not mark CFG edges unexecutable; a phi meets all of its operands.
package constprop

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/jsdeobf/pass"
)

// Families toggles the operator groups the evaluator is allowed to fold.
type Families struct {
	Arithmetic        bool
	StringConcat      bool
	Boolean           bool
	Comparison        bool
	Bitwise           bool
}

// DefaultFamilies enables every operator family.
func DefaultFamilies() Families {
	return Families{Arithmetic: true, StringConcat: true, Boolean: true, Comparison: true, Bitwise: true}
}

// Options configures one run of the pass.
type Options struct {
	MaxIterations int
	Threshold     float64
	Families      Families
}

// DefaultOptions matches spec.md §4.5's stated defaults.
func DefaultOptions() Options {
	return Options{MaxIterations: 100, Threshold: 0.9, Families: DefaultFamilies()}
}

// Validate reports a configuration error at construction time rather than letting
// a bad limit silently degrade into a no-op pass.
func (o Options) Validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("constprop: maxIterations must be >= 1, got %d", o.MaxIterations)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("constprop: threshold must be in [0,1], got %v", o.Threshold)
	}
	return nil
}

type kind int

const (
	top kind = iota
	constant
	bottom
)

// jsNull tags a lattice constant as JS's `null`, keeping it distinct from Go's
// untyped nil, which this pass uses for JS `undefined` (the value `void expr`,
// a `??`-chain with all-nullish operands, and an unfilled phi operand all
// naturally produce). Collapsing the two onto plain nil would make typeof,
// string coercion, and strict/loose equality all silently wrong for one of them.
type jsNull struct{}

func isNullish(v interface{}) bool {
	if v == nil {
		return true
	}
	_, ok := v.(jsNull)
	return ok
}

// value is one lattice point: Top (unknown), Constant(v, confidence), or Bottom.
type value struct {
	kind       kind
	val        interface{}
	confidence float64
}

var topValue = value{kind: top}
var bottomValue = value{kind: bottom}

func constVal(v interface{}, confidence float64) value {
	return value{kind: constant, val: v, confidence: confidence}
}

// meet combines facts about the same version arriving from different phi operands:
// Top∧x=x; Bottom∧x=Bottom; Constant(a)∧Constant(b)=Constant(a) if a≡b else Bottom.
func meet(a, b value) value {
	if a.kind == top {
		return b
	}
	if b.kind == top {
		return a
	}
	if a.kind == bottom || b.kind == bottom {
		return bottomValue
	}
	if a.val == b.val {
		return constVal(a.val, math.Min(a.confidence, b.confidence))
	}
	return bottomValue
}

// New returns the constant-propagation pass, runnable by a pass.Manager once SSA
// has been built for the state it receives.
func New(opts Options) *pass.Pass {
	return &pass.Pass{
		Name:        "constprop",
		Description: "sparse constant propagation over SSA values",
		Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return run(st, opts)
		},
	}
}
