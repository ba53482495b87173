// Package external defines the seams this pipeline talks through but does not
// implement: the JavaScript parser and printer, the sandboxed JS executor used to
// corroborate decoded strings, the LLM-assisted identifier renamer, and the
// SMT-based constraint solver. Each is referenced only by interface; a caller
// embedding this pipeline supplies the concrete implementation. No type in this
// package does any work — it exists so the rest of the module can accept these
// collaborators as dependencies without importing whatever library backs them.
package external

import (
	"context"
	"time"

	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
)

// Parser turns raw JavaScript source into an IR program. Implementations must
// assign fresh NodeIds from the supplied allocator and populate Loc wherever the
// source position is known.
type Parser interface {
	Parse(ctx context.Context, alloc *ids.Allocator, source []byte) (*ir.Program, error)
}

// Printer renders a post-destruction IR program back to source text.
// Implementations must use each identifier's original name; by the time a
// program reaches a Printer, ssa.Destroy has already removed every
// SSAIdentifier, so there is no version information left to leak.
type Printer interface {
	Print(ctx context.Context, program *ir.Program) ([]byte, error)
}

// TraceEntryType discriminates the kind of runtime event a sandbox trace entry
// describes.
type TraceEntryType string

const (
	TraceFunctionCall    TraceEntryType = "function_call"
	TraceVariableAccess  TraceEntryType = "variable_access"
	TraceConstantDecode  TraceEntryType = "constant_decode"
	TraceControlFlow     TraceEntryType = "control_flow"
	TraceStringOperation TraceEntryType = "string_operation"
	TraceArrayOperation  TraceEntryType = "array_operation"
	TraceObjectOperation TraceEntryType = "object_operation"
)

// IRCorrelation ties a sandbox trace entry back to the IR node, scope, and
// shape it was observed executing, when the sandbox is able to report one.
type IRCorrelation struct {
	NodeId  ids.NodeId
	ScopeId ids.ScopeId
	ShapeId ids.ShapeId
}

// TraceEntry is one recorded runtime event from a sandboxed execution of the
// (still obfuscated) program, used to corroborate suspected decoder functions
// before the decoder-lifting pass trusts them.
type TraceEntry struct {
	Type      TraceEntryType
	Inputs    []any
	Outputs   []any
	Timestamp time.Time
	Depth     int
	// Correlation is nil when the sandbox could not map this event back to a
	// specific IR node.
	Correlation *IRCorrelation
}

// SandboxCorrelator runs source in a sandboxed JS executor and returns the
// resulting trace. The decoder-lifting pass is a consumer of this interface, not
// a reimplementation of the sandbox.
type SandboxCorrelator interface {
	Correlate(ctx context.Context, source []byte) ([]TraceEntry, error)
}

// DecoderLifter recognizes a suspected decoder function in program and, given
// corroborating sandbox trace entries, rewrites call sites that invoke it with
// the decoded literal it would have produced at runtime.
type DecoderLifter interface {
	Lift(ctx context.Context, program *ir.Program, trace []TraceEntry) (*ir.Program, error)
}

// RenameSuggestion is one proposed identifier rename.
type RenameSuggestion struct {
	OriginalName  string
	SuggestedName string
	Confidence    float64
}

// IdentifierRenamer proposes human-readable names for the minified/obfuscated
// identifiers remaining in program, typically backed by an LLM call. It may
// suspend at the network-call boundary (spec.md §5) but must not mutate program
// itself — it returns suggestions for the caller to apply.
type IdentifierRenamer interface {
	SuggestNames(ctx context.Context, program *ir.Program) ([]RenameSuggestion, error)
}

// Constraint is one opaque fact a ConstraintSolver is asked to satisfy, expressed
// in whatever input language the backing solver accepts (e.g. SMT-LIB text).
type Constraint struct {
	Expression string
}

// SolveResult is the outcome of asking a ConstraintSolver to satisfy a set of
// constraints: Model holds a variable-name-to-value assignment when Satisfiable
// is true.
type SolveResult struct {
	Satisfiable bool
	Model       map[string]any
}

// ConstraintSolver resolves symbolic constraints extracted from opaque
// predicates or decoder logic, e.g. to prove a conditional branch is always
// taken one way, via an SMT-based backend.
type ConstraintSolver interface {
	Solve(ctx context.Context, constraints []Constraint) (SolveResult, error)
}
