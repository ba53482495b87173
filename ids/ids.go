// Package ids hosts the monotonic identity allocators used throughout the pipeline:
// NodeId for IR nodes, ScopeId for lexical scopes, ShapeId for structural shapes
// correlated with sandbox traces, and SSAVersion for versioned variable identities.
//
// Per the concurrency model, process-wide global counters are never used: each
// pipeline run owns exactly one Allocator, so two pipelines running over disjoint
// inputs (even concurrently, in separate goroutines) never collide and no test
// depends on run order.
package ids

import "fmt"

// NodeId is a process-unique, opaque token assigned to an IR node at creation time
// and preserved across rewrites that replace a node with its semantic successor.
type NodeId int64

// String renders a NodeId for debug output.
func (id NodeId) String() string { return fmt.Sprintf("n%d", int64(id)) }

// ScopeId identifies a lexical scope (function body, block) for escape analysis and
// closure-capture bookkeeping.
type ScopeId int64

// String renders a ScopeId for debug output.
func (id ScopeId) String() string { return fmt.Sprintf("s%d", int64(id)) }

// ShapeId identifies a structural shape correlated with sandbox trace entries (see
// the external sandbox-correlation interface).
type ShapeId int64

// String renders a ShapeId for debug output.
func (id ShapeId) String() string { return fmt.Sprintf("sh%d", int64(id)) }

// SSAVersion is the monotonic version counter assigned to a variable name each time
// it is (re)defined during SSA renaming.
type SSAVersion int64

// String renders an SSAVersion for debug output.
func (v SSAVersion) String() string { return fmt.Sprintf("v%d", int64(v)) }

// counter is a single monotonic generator, the shared building block behind each of
// the four id kinds below. It is deliberately tiny and un-synchronized: the pipeline
// is single-threaded cooperative per the concurrency model, so no lock is needed.
type counter int64

func (c *counter) next() int64 {
	v := int64(*c)
	*c++
	return v
}

// Allocator bundles the four id generators used by one pipeline run. The zero value
// is ready to use; every counter starts at 0 and increments monotonically.
type Allocator struct {
	nodes     counter
	scopes    counter
	shapes    counter
	ssaVers   counter
	versByVar map[string]*counter
}

// NewAllocator returns a fresh Allocator with all counters at their initial value.
// Each pipeline run must construct its own Allocator; sharing one across concurrent
// pipelines reintroduces the cross-run collision the design explicitly avoids.
func NewAllocator() *Allocator {
	return &Allocator{versByVar: make(map[string]*counter)}
}

// NextNodeId returns a fresh, previously unissued NodeId.
func (a *Allocator) NextNodeId() NodeId { return NodeId(a.nodes.next()) }

// NextScopeId returns a fresh, previously unissued ScopeId.
func (a *Allocator) NextScopeId() ScopeId { return ScopeId(a.scopes.next()) }

// NextShapeId returns a fresh, previously unissued ShapeId.
func (a *Allocator) NextShapeId() ShapeId { return ShapeId(a.shapes.next()) }

// NextSSAVersion returns a fresh, previously unissued SSAVersion, global across all
// variable names. SSA renaming (ssa package) additionally tracks a per-variable-name
// version sequence via NextVersionFor so that versions read naturally as v0, v1, v2...
// per variable instead of interleaving across unrelated names.
func (a *Allocator) NextSSAVersion() SSAVersion { return SSAVersion(a.ssaVers.next()) }

// NextVersionFor returns the next SSAVersion in the per-variable-name sequence for
// name, starting at 0. This is what the SSA renamer uses so that each source
// variable gets its own readable 0,1,2,... version sequence.
func (a *Allocator) NextVersionFor(name string) SSAVersion {
	if a.versByVar == nil {
		a.versByVar = make(map[string]*counter)
	}
	c, ok := a.versByVar[name]
	if !ok {
		c = new(counter)
		a.versByVar[name] = c
	}
	return SSAVersion(c.next())
}
