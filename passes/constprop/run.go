package constprop

import (
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/ssa"
)

// run executes the full sparse-worklist fixpoint over prog's SSA defs, then
// rewrites every expression whose evaluated confidence clears opts.Threshold.
func run(st *pass.State, opts Options) (bool, error) {
	prog := st.Program
	env := make(map[string]value)
	defsByKey := make(map[string]*ssa.Def)
	dependents := make(map[string][]string)

	for varName, versions := range prog.Defs {
		for version, def := range versions {
			k := key(varName, version)
			env[k] = topValue
			defsByKey[k] = def
			for _, in := range defInputs(def) {
				dependents[in] = append(dependents[in], k)
			}
		}
	}

	worklist := make([]string, 0, len(env))
	for k := range env {
		worklist = append(worklist, k)
	}

	converged := true
	iterations := 0
	for len(worklist) > 0 {
		iterations++
		if iterations > opts.MaxIterations {
			converged = false
			break
		}
		k := worklist[0]
		worklist = worklist[1:]

		def := defsByKey[k]
		if def == nil {
			continue
		}
		newVal := evalDef(def, env, opts.Families)
		if newVal == env[k] {
			continue
		}
		env[k] = newVal
		worklist = append(worklist, dependents[k]...)
	}

	st.Visited(len(env))
	changed := rewrite(prog, env, opts, st)
	if !converged {
		// Non-convergence within the iteration budget is a warning-level condition
		// (spec.md §7): the partial `env` is still used for the rewrite step above.
		st.Warn("constprop", "lattice did not converge within maxIterations; used partial result")
	}
	return changed, nil
}

// defInputs returns the keys def's value depends on: the phi operands for a phi
// def, or the SSAIdentifier reads inside the defining expression otherwise.
func defInputs(def *ssa.Def) []string {
	if def.Phi != nil {
		var out []string
		for _, v := range def.Phi.Operands {
			out = append(out, key(def.Phi.Variable, v))
		}
		return out
	}
	var out []string
	if expr := definingExpr(def.Site); expr != nil {
		ir.Walk(expr, func(n ir.Node) bool {
			if id, ok := n.(*ir.SSAIdentifier); ok {
				out = append(out, key(id.Name, id.Version))
			}
			return true
		})
	}
	return out
}

func definingExpr(site ir.Node) ir.Expression {
	switch s := site.(type) {
	case *ir.Declarator:
		return s.Init
	case *ir.Assignment:
		return s.RHS
	}
	return nil
}

func evalDef(def *ssa.Def, env map[string]value, fam Families) value {
	if def.Phi != nil {
		acc := topValue
		for _, v := range def.Phi.Operands {
			acc = meet(acc, env[key(def.Phi.Variable, v)])
		}
		return acc
	}
	expr := definingExpr(def.Site)
	if expr == nil {
		return bottomValue
	}
	return evalExpr(expr, env, fam)
}

// rewrite replaces every expression (an SSA read, or the defining expression
// itself) whose evaluated confidence clears the threshold with a Literal carrying
// the original node's NodeId and Loc. pst accumulates the pass's visited/changed
// node counts at statement granularity.
func rewrite(prog *ssa.Program, env map[string]value, opts Options, pst *pass.State) bool {
	changed := false
	for _, blk := range prog.Graph.Blocks {
		for _, s := range blk.Stmts {
			pst.Visited(1)
			if foldStmt(s, env, opts) {
				changed = true
				pst.Rewrote(1)
			}
		}
		if blk.Tail != nil {
			pst.Visited(1)
			if foldTail(blk.Tail, env, opts) {
				changed = true
				pst.Rewrote(1)
			}
		}
	}
	return changed
}

func foldStmt(s ir.Statement, env map[string]value, opts Options) bool {
	changed := false
	switch st := s.(type) {
	case *ir.VariableDeclaration:
		for _, d := range st.Declarators {
			if d.Init != nil {
				if folded, ok := fold(d.Init, env, opts); ok {
					d.Init = folded
					changed = true
				}
			}
		}
	case *ir.ExpressionStatement:
		if folded, ok := fold(st.Expr, env, opts); ok {
			st.Expr = folded
			changed = true
		}
	}
	return changed
}

func foldTail(s ir.Statement, env map[string]value, opts Options) bool {
	changed := false
	assign := func(e *ir.Expression) {
		if *e == nil {
			return
		}
		if folded, ok := fold(*e, env, opts); ok {
			*e = folded
			changed = true
		}
	}
	switch st := s.(type) {
	case *ir.If:
		assign(&st.Test)
	case *ir.While:
		assign(&st.Test)
	case *ir.For:
		if st.Test != nil {
			assign(&st.Test)
		}
	case *ir.Switch:
		assign(&st.Discriminant)
	case *ir.Return:
		if st.Arg != nil {
			assign(&st.Arg)
		}
	case *ir.Throw:
		assign(&st.Arg)
	}
	return changed
}

// fold first attempts to fold e as a whole; if e is not foldable it recursively
// folds its children in place. It returns the (possibly replaced) expression and
// whether anything changed. e is evaluated before its children are rewritten
// because a child folded to the `undefined` identifier no longer evaluates as a
// constant.
func fold(e ir.Expression, env map[string]value, opts Options) (ir.Expression, bool) {
	if e == nil {
		return e, false
	}
	if _, ok := e.(*ir.Literal); ok {
		return e, false // already as folded as it can get
	}
	if v := evalExpr(e, env, opts.Families); v.kind == constant && v.confidence >= opts.Threshold {
		return literalFor(e, v.val), true
	}
	changed := false
	switch ex := e.(type) {
	case *ir.SSAIdentifier:
		return e, false
	case *ir.Binary:
		if l, ok := fold(ex.Left, env, opts); ok {
			ex.Left, changed = l, true
		}
		if r, ok := fold(ex.Right, env, opts); ok {
			ex.Right, changed = r, true
		}
	case *ir.Logical:
		if l, ok := fold(ex.Left, env, opts); ok {
			ex.Left, changed = l, true
		}
		if r, ok := fold(ex.Right, env, opts); ok {
			ex.Right, changed = r, true
		}
	case *ir.Unary:
		if a, ok := fold(ex.Arg, env, opts); ok {
			ex.Arg, changed = a, true
		}
	case *ir.Conditional:
		if t, ok := fold(ex.Test, env, opts); ok {
			ex.Test, changed = t, true
		}
		if t, ok := fold(ex.Then, env, opts); ok {
			ex.Then, changed = t, true
		}
		if el, ok := fold(ex.Else, env, opts); ok {
			ex.Else, changed = el, true
		}
	case *ir.Call:
		for i, a := range ex.Args {
			if f, ok := fold(a, env, opts); ok {
				ex.Args[i], changed = f, true
			}
		}
	case *ir.Sequence:
		for i, sub := range ex.Exprs {
			if f, ok := fold(sub, env, opts); ok {
				ex.Exprs[i], changed = f, true
			}
		}
	}
	return e, changed
}

// literalFor re-materializes a folded constant, preserving n's NodeId and Loc.
// val == nil is this pass's tag for JS undefined; since the IR has no literal
// syntax for it (JS has none either — `undefined` is a global property read,
// not a literal), it comes back as an Identifier rather than a Literal. A
// jsNull value comes back as an actual `null` literal.
func literalFor(n ir.Node, val interface{}) ir.Expression {
	base := ir.NodeBase{Id: n.ID(), Loc: n.Location()}
	if val == nil {
		return &ir.Identifier{NodeBase: base, Name: "undefined"}
	}
	kind := ir.LiteralNull
	switch val.(type) {
	case string:
		kind = ir.LiteralString
	case float64:
		kind = ir.LiteralNumber
	case bool:
		kind = ir.LiteralBool
	case jsNull:
		val = nil // ir.Literal's null representation is a nil Value, per ir/construct.go
	}
	return &ir.Literal{NodeBase: base, ValueKind: kind, Value: val}
}
