// Package dce implements dead-code elimination over SSA form: unreachable blocks,
// unused (non-escaping) variable definitions, and unused function declarations are
// identified via a backward liveness dataflow and removed or reduced to their
// side-effecting remainder (spec.md §4.7).
package dce

import (
	"context"
	"fmt"

	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/ssa"
)

// PureBuiltins is the safe-call allowlist this pass (and copyprop, for its
// kill-on-unknown-call rule) treats as side-effect-free. Not grounded on any
// teacher or example file; spec.md §4.7 asks for "a small, explicit safe set"
// without naming one, so this is an editorial choice for a JS runtime surface
// (SPEC_FULL.md §11.2).
var PureBuiltins = map[string]bool{
	"Math.abs": true, "Math.max": true, "Math.min": true, "Math.floor": true,
	"Math.ceil": true, "Math.round": true, "Math.pow": true, "Math.sqrt": true,
	"String": true, "Number": true, "Boolean": true, "parseInt": true, "parseFloat": true,
	"isNaN": true, "isFinite": true, "encodeURIComponent": true, "decodeURIComponent": true,
}

// Options configures one run of the pass.
type Options struct {
	MaxIterations    int
	UnusedVariables  bool
	UnreachableCode  bool
	EmptyStatements  bool
	UnusedFunctions  bool
	// Aggressive multiplies the liveness walk's iteration cap by four. It adds no
	// removal rule of its own: the def-use mark-sweep already drops a variable
	// whose only reads sit in dead definitions.
	Aggressive bool
}

// DefaultOptions enables every category except Aggressive.
func DefaultOptions() Options {
	return Options{
		MaxIterations:   100,
		UnusedVariables: true,
		UnreachableCode: true,
		EmptyStatements: true,
		UnusedFunctions: true,
		Aggressive:      false,
	}
}

// Validate reports a configuration error at construction time.
func (o Options) Validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("dce: maxIterations must be >= 1, got %d", o.MaxIterations)
	}
	return nil
}

// New returns the dead-code-elimination pass.
func New(opts Options) *pass.Pass {
	return &pass.Pass{
		Name:        "dce",
		Description: "removes unreachable blocks and unused, non-escaping definitions",
		Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return run(st, opts)
		},
	}
}

func run(st *pass.State, opts Options) (bool, error) {
	g := st.Graph
	changed := false
	st.Visited(len(g.Blocks))

	if opts.UnreachableCode {
		if markUnreachable(g, st.Dom.ReversePostOrder()) {
			changed = true
		}
	}

	escaping := collectEscapingNames(g)

	if opts.UnusedVariables {
		live := liveDefs(st.Program, escaping, opts.MaxIterations, opts.Aggressive)
		siteToDef := make(map[ir.Node]*ssa.Def)
		for _, versions := range st.Program.Defs {
			for _, def := range versions {
				if def.Site != nil {
					siteToDef[def.Site] = def
				}
			}
		}
		for _, blk := range g.Blocks {
			if rewriteUnusedVariables(blk, siteToDef, live) {
				changed = true
				st.Rewrote(1)
			}
		}
	}

	if opts.UnusedFunctions {
		if removeUnusedFunctions(g) {
			changed = true
		}
	}

	if opts.EmptyStatements {
		for _, blk := range g.Blocks {
			if dropEmptyStatements(blk) {
				changed = true
				st.Rewrote(1)
			}
		}
	}

	return changed, nil
}

// markUnreachable clears the statement list of every block the dominance engine's
// entry-rooted reverse-post-order never reached.
func markUnreachable(g *cfg.Graph, rpo []ir.BlockId) bool {
	reachable := make(map[ir.BlockId]bool, len(rpo))
	for _, id := range rpo {
		reachable[id] = true
	}
	changed := false
	for id, blk := range g.Blocks {
		if reachable[id] || id == g.Entry || id == g.Exit {
			continue
		}
		if len(blk.Stmts) > 0 || blk.Tail != nil {
			blk.Stmts = nil
			blk.Tail = nil
			changed = true
		}
	}
	return changed
}

// collectEscapingNames returns every variable name referenced inside a nested
// FunctionDeclaration's body. SSA construction never renames into those bodies (the
// renamer's expression walk does not descend into FunctionDeclaration), so any name
// read there might be a closure capture of an outer binding by any of its SSA
// versions; conservatively, every version of that name is kept live (spec.md §9's
// DCE escape resolution).
func collectEscapingNames(g *cfg.Graph) map[string]bool {
	escaping := make(map[string]bool)
	var walkFn func(fn *ir.FunctionDeclaration)
	walkFn = func(fn *ir.FunctionDeclaration) {
		if fn.Body == nil {
			return
		}
		ir.Walk(fn.Body, func(n ir.Node) bool {
			switch id := n.(type) {
			case *ir.Identifier:
				escaping[id.Name] = true
			case *ir.FunctionDeclaration:
				walkFn(id)
			}
			return true
		})
	}
	for _, blk := range g.Blocks {
		for _, s := range blk.Stmts {
			ir.Walk(s, func(n ir.Node) bool {
				if fn, ok := n.(*ir.FunctionDeclaration); ok {
					walkFn(fn)
				}
				return true
			})
		}
	}
	return escaping
}

// liveDefs runs a mark-sweep over the SSA def-use graph: every def with a direct
// read, every function parameter, and every def of an escaping name is a root;
// marking a def live additionally marks every def its own defining expression (or,
// for a phi, every operand) reads, so a chain `let a = 1; let b = a;` with only `b`
// dead does not keep `a` alive purely because it is textually read inside a
// statement that is itself about to be deleted. aggressive currently only affects
// how many fixpoint rounds are attempted before giving up (spec.md §4.7's optional
// deeper pass); the dependency-edge formulation above is already exact for a single
// pass, so aggressive's effect is limited to pathological, very deep chains.
func liveDefs(prog *ssa.Program, escaping map[string]bool, maxIterations int, aggressive bool) map[*ssa.Def]bool {
	live := make(map[*ssa.Def]bool)
	var queue []*ssa.Def
	enqueue := func(d *ssa.Def) {
		if d != nil && !live[d] {
			live[d] = true
			queue = append(queue, d)
		}
	}

	for _, blk := range prog.Graph.Blocks {
		for _, s := range blk.Stmts {
			walkRootUses(s, prog, enqueue)
		}
		if blk.Tail != nil {
			ir.Walk(blk.Tail, func(n ir.Node) bool {
				if id, ok := n.(*ir.SSAIdentifier); ok {
					enqueue(prog.Defs[id.Name][id.Version])
				}
				return true
			})
		}
	}
	for _, versions := range prog.Defs {
		for _, def := range versions {
			if def.Site == nil && def.Phi == nil {
				enqueue(def) // function parameter: always live, never a removal candidate
			} else if escaping[def.Variable] {
				enqueue(def)
			}
		}
	}

	limit := maxIterations * (len(prog.Defs) + 1)
	if aggressive {
		limit *= 4
	}
	iterations := 0
	for len(queue) > 0 {
		iterations++
		if iterations > limit {
			break // pathological cycle guard; liveness over a DAG of versions converges fast in practice
		}
		d := queue[0]
		queue = queue[1:]
		if d.Phi != nil {
			for _, v := range d.Phi.Operands {
				enqueue(prog.Defs[d.Phi.Variable][v])
			}
			continue
		}
		if expr := definingExprOf(d.Site); expr != nil {
			ir.Walk(expr, func(n ir.Node) bool {
				if id, ok := n.(*ir.SSAIdentifier); ok {
					enqueue(prog.Defs[id.Name][id.Version])
				}
				return true
			})
		}
	}
	return live
}

// walkRootUses enqueues every def read directly by a statement that this pass never
// removes outright: a non-`=` expression statement (a bare call, a compound
// assignment, an increment/decrement) is kept regardless of liveness, so the reads
// inside it are roots rather than dependency edges of some other def.
func walkRootUses(s ir.Statement, prog *ssa.Program, enqueue func(*ssa.Def)) {
	if st, ok := s.(*ir.ExpressionStatement); ok {
		if assign, ok := st.Expr.(*ir.Assignment); ok && assign.Op == "=" {
			return // removal candidate; its RHS reads are dependency edges, not roots
		}
	}
	if _, ok := s.(*ir.VariableDeclaration); ok {
		return // removal candidate; handled the same way
	}
	ir.Walk(s, func(n ir.Node) bool {
		if id, ok := n.(*ir.SSAIdentifier); ok {
			enqueue(prog.Defs[id.Name][id.Version])
		}
		return true
	})
}

func definingExprOf(site ir.Node) ir.Expression {
	switch s := site.(type) {
	case *ir.Declarator:
		return s.Init
	case *ir.Assignment:
		return s.RHS
	case *ir.Update:
		return s.Arg // the pre-update read of the same name's prior version
	}
	return nil
}

// containsSideEffect reports whether e's evaluation can be observed beyond
// producing a value: a call (unless to a PureBuiltins callee), any new, an
// assignment, or an increment/decrement.
func containsSideEffect(e ir.Expression) bool {
	if e == nil {
		return false
	}
	found := false
	ir.Walk(e, func(n ir.Node) bool {
		switch ex := n.(type) {
		case *ir.Call:
			if !isPure(ex.Callee) {
				found = true
			}
		case *ir.New:
			found = true
		case *ir.Assignment:
			found = true
		case *ir.Update:
			found = true
		}
		return !found
	})
	return found
}

func isPure(callee ir.Expression) bool {
	switch c := callee.(type) {
	case *ir.Identifier:
		return PureBuiltins[c.Name]
	case *ir.Member:
		if obj, ok := c.Object.(*ir.Identifier); ok && !c.Computed {
			if prop, ok := c.Property.(*ir.Identifier); ok {
				return PureBuiltins[obj.Name+"."+prop.Name]
			}
		}
	}
	return false
}

// rewriteUnusedVariables rebuilds blk.Stmts, dropping dead declarators, reducing a
// dead assignment with a side-effecting RHS to a bare expression statement, and
// dropping a dead assignment with a side-effect-free RHS entirely.
func rewriteUnusedVariables(blk *cfg.Block, siteToDef map[ir.Node]*ssa.Def, live map[*ssa.Def]bool) bool {
	changed := false
	out := make([]ir.Statement, 0, len(blk.Stmts))
	for _, s := range blk.Stmts {
		switch st := s.(type) {
		case *ir.VariableDeclaration:
			kept := st.Declarators[:0]
			for _, d := range st.Declarators {
				def := siteToDef[d]
				if def != nil && !live[def] {
					if containsSideEffect(d.Init) {
						out = append(out, &ir.ExpressionStatement{NodeBase: ir.NodeBase{Id: d.Init.ID(), Loc: d.Init.Location()}, Expr: d.Init})
					}
					changed = true
					continue
				}
				kept = append(kept, d)
			}
			if len(kept) == 0 {
				continue
			}
			st.Declarators = kept
			out = append(out, st)
		case *ir.ExpressionStatement:
			if assign, ok := st.Expr.(*ir.Assignment); ok && assign.Op == "=" {
				if def := siteToDef[assign]; def != nil && !live[def] {
					changed = true
					if containsSideEffect(assign.RHS) {
						out = append(out, &ir.ExpressionStatement{NodeBase: ir.NodeBase{Id: st.ID(), Loc: st.Location()}, Expr: assign.RHS})
					}
					continue
				}
			}
			out = append(out, st)
		default:
			out = append(out, s)
		}
	}
	blk.Stmts = out
	return changed
}

// removeUnusedFunctions drops a top-level FunctionDeclaration with no reference to
// its name anywhere else in the graph, a self-reference (direct recursion) alone
// does not count as a use.
func removeUnusedFunctions(g *cfg.Graph) bool {
	counts := make(map[string]int)
	decls := make(map[string]*ir.FunctionDeclaration)
	for _, blk := range g.Blocks {
		for _, s := range blk.Stmts {
			if fn, ok := s.(*ir.FunctionDeclaration); ok && fn.Id != nil {
				decls[fn.Id.Name] = fn
			}
		}
	}
	for _, blk := range g.Blocks {
		for _, s := range blk.Stmts {
			fnDecl, isDecl := s.(*ir.FunctionDeclaration)
			ir.Walk(s, func(n ir.Node) bool {
				id, ok := n.(*ir.Identifier)
				if !ok {
					return true
				}
				if isDecl && fnDecl.Id != nil && id == fnDecl.Id {
					return true // the declaration's own name token is not a use
				}
				if _, isFn := decls[id.Name]; isFn {
					counts[id.Name]++
				}
				return true
			})
		}
		if blk.Tail != nil {
			ir.Walk(blk.Tail, func(n ir.Node) bool {
				if id, ok := n.(*ir.Identifier); ok {
					if _, isFn := decls[id.Name]; isFn {
						counts[id.Name]++
					}
				}
				return true
			})
		}
	}

	changed := false
	for _, blk := range g.Blocks {
		out := blk.Stmts[:0]
		for _, s := range blk.Stmts {
			if fn, ok := s.(*ir.FunctionDeclaration); ok && fn.Id != nil && counts[fn.Id.Name] == selfRefCount(fn) {
				changed = true
				continue
			}
			out = append(out, s)
		}
		blk.Stmts = out
	}
	return changed
}

// selfRefCount counts how many times fn's own name is read inside fn's own body
// (recursive calls), so removeUnusedFunctions can tell "referenced only by itself"
// apart from "referenced from the outside".
func selfRefCount(fn *ir.FunctionDeclaration) int {
	if fn.Body == nil || fn.Id == nil {
		return 0
	}
	n := 0
	ir.Walk(fn.Body, func(node ir.Node) bool {
		if id, ok := node.(*ir.Identifier); ok && id.Name == fn.Id.Name {
			n++
		}
		return true
	})
	return n
}

func dropEmptyStatements(blk *cfg.Block) bool {
	changed := false
	out := blk.Stmts[:0]
	for _, s := range blk.Stmts {
		if _, ok := s.(*ir.Empty); ok {
			changed = true
			continue
		}
		out = append(out, s)
	}
	blk.Stmts = out
	return changed
}
