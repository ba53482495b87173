package copyprop

import (
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/ssa"
)

// availSet maps a tracked target to the copy fact currently reaching it.
type availSet map[ssaKey]copy

func (a availSet) equal(b availSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || ov.source != v.source || ov.confidence != v.confidence {
			return false
		}
	}
	return true
}

func (a availSet) clone() availSet {
	out := make(availSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// intersect keeps only facts present with an identical source in every set, so a
// copy is only available at a merge point when every predecessor path agrees.
func intersect(sets []availSet) availSet {
	if len(sets) == 0 {
		return availSet{}
	}
	out := sets[0].clone()
	for _, s := range sets[1:] {
		for k, v := range out {
			ov, ok := s[k]
			if !ok || ov.source != v.source {
				delete(out, k)
			}
		}
	}
	return out
}

func run(st *pass.State, opts Options) (bool, error) {
	prog := st.Program
	g := prog.Graph
	rpo := st.Dom.ReversePostOrder()

	// siteToDef lets the block walk below recover the (name, version) a
	// Declarator or Assignment defines, since SSA construction leaves the LHS
	// pattern itself as a plain, unversioned name (only reads carry a version).
	siteToDef := make(map[ir.Node]*ssa.Def)
	for _, versions := range prog.Defs {
		for _, def := range versions {
			if def.Site != nil {
				siteToDef[def.Site] = def
			}
		}
	}

	out := make(map[ir.BlockId]availSet, len(g.Blocks))
	for id := range g.Blocks {
		out[id] = availSet{}
	}

	converged := false
	for iter := 0; iter < opts.MaxIterations; iter++ {
		anyChange := false
		for _, id := range rpo {
			blk := g.Blocks[id]
			in := intersect(predOuts(blk, out))
			result := simulateBlock(blk, in, siteToDef, opts)
			if !result.equal(out[id]) {
				out[id] = result
				anyChange = true
			}
		}
		if !anyChange {
			converged = true
			break
		}
	}
	if !converged {
		st.Warn("copyprop", "availability dataflow did not converge within maxIterations; used partial result")
	}

	changed := false
	for _, blk := range g.Blocks {
		st.Visited(1)
		in := intersect(predOuts(blk, out))
		if rewriteBlock(blk, in, siteToDef, opts) {
			changed = true
			st.Rewrote(1)
		}
	}
	return changed, nil
}

func predOuts(blk *cfg.Block, out map[ir.BlockId]availSet) []availSet {
	sets := make([]availSet, 0, len(blk.Preds))
	for _, p := range blk.Preds {
		sets = append(sets, out[p])
	}
	return sets
}

// directCopy reports whether expr is a plain SSA-identifier read, the only shape
// this pass treats as a trackable copy source.
func directCopy(expr ir.Expression) (ssaKey, bool) {
	id, ok := expr.(*ir.SSAIdentifier)
	if !ok {
		return ssaKey{}, false
	}
	return keyOf(id), true
}

// containsUnknownCall reports whether expr contains a call to a callee this pass
// cannot prove pure. Any such call conservatively kills every tracked copy, since
// it may reach into a closure and reassign a variable an SSA version alone does not
// protect against (spec.md §9's copy-propagation resolution).
func containsUnknownCall(expr ir.Node) bool {
	if expr == nil {
		return false
	}
	found := false
	ir.Walk(expr, func(n ir.Node) bool {
		if found {
			return false
		}
		if call, ok := n.(*ir.Call); ok && !isPureCall(call.Callee) {
			found = true
			return false
		}
		return true
	})
	return found
}

// defStep is one definition encountered while walking a block: the defined target
// and the (already-renamed, so read-versioned) expression it was defined from.
type defStep struct {
	target ssaKey
	value  ir.Expression
}

// walkDefSteps extracts, in program order, every (target, definingExpr) pair in
// blk.Stmts, invoking onCallCheck on every statement/expression that may contain an
// unknown call along the way. rewriteBlock below mirrors this same traversal order
// but additionally needs to mutate expressions in place as it goes, so it does not
// call this helper directly.
func walkDefSteps(blk *cfg.Block, siteToDef map[ir.Node]*ssa.Def, onCallCheck func(ir.Node), onDef func(defStep)) {
	for _, s := range blk.Stmts {
		switch st := s.(type) {
		case *ir.VariableDeclaration:
			for _, d := range st.Declarators {
				if d.Init == nil {
					continue
				}
				onCallCheck(d.Init)
				if def, ok := siteToDef[d]; ok {
					onDef(defStep{target: ssaKey{name: def.Variable, version: def.Version}, value: d.Init})
				}
			}
		case *ir.ExpressionStatement:
			if assign, ok := st.Expr.(*ir.Assignment); ok && assign.Op == "=" {
				onCallCheck(assign.RHS)
				if def, ok := siteToDef[assign]; ok {
					onDef(defStep{target: ssaKey{name: def.Variable, version: def.Version}, value: assign.RHS})
				}
				continue
			}
			onCallCheck(st.Expr)
		default:
			onCallCheck(s)
		}
	}
}

func onCallCheckNode(cur *availSet) func(ir.Node) {
	return func(n ir.Node) {
		if containsUnknownCall(n) {
			*cur = availSet{}
		}
	}
}

// simulateBlock replays blk starting from `in`, applying kills (an unknown call)
// and gens (a direct identifier copy) in program order, returning the availability
// set reaching the end of the block.
func simulateBlock(blk *cfg.Block, in availSet, siteToDef map[ir.Node]*ssa.Def, opts Options) availSet {
	cur := in.clone()
	walkDefSteps(blk, siteToDef, onCallCheckNode(&cur), func(step defStep) {
		if src, ok := directCopy(step.value); ok {
			cur[step.target] = copy{target: step.target, source: src, confidence: opts.DirectCopyConfidence}
		} else {
			delete(cur, step.target)
		}
	})
	return cur
}

// rewriteBlock replays blk the same way simulateBlock does, substituting any
// SSAIdentifier read whose current copy clears AvailabilityThreshold with its
// source.
func rewriteBlock(blk *cfg.Block, in availSet, siteToDef map[ir.Node]*ssa.Def, opts Options) bool {
	cur := in.clone()
	changed := false

	rewriteExpr := func(slot *ir.Expression) {
		if slot == nil || *slot == nil {
			return
		}
		*slot = substituteAll(*slot, cur, opts, &changed)
	}

	for _, s := range blk.Stmts {
		switch st := s.(type) {
		case *ir.VariableDeclaration:
			for _, d := range st.Declarators {
				if d.Init == nil {
					continue
				}
				rewriteExpr(&d.Init)
				if containsUnknownCall(d.Init) {
					cur = availSet{}
				}
				if def, ok := siteToDef[d]; ok {
					target := ssaKey{name: def.Variable, version: def.Version}
					if src, ok := directCopy(d.Init); ok {
						cur[target] = copy{target: target, source: src, confidence: opts.DirectCopyConfidence}
					} else {
						delete(cur, target)
					}
				}
			}
		case *ir.ExpressionStatement:
			if assign, ok := st.Expr.(*ir.Assignment); ok && assign.Op == "=" {
				rewriteExpr(&assign.RHS)
				if containsUnknownCall(assign.RHS) {
					cur = availSet{}
				}
				if def, ok := siteToDef[assign]; ok {
					target := ssaKey{name: def.Variable, version: def.Version}
					if src, ok := directCopy(assign.RHS); ok {
						cur[target] = copy{target: target, source: src, confidence: opts.DirectCopyConfidence}
					} else {
						delete(cur, target)
					}
				}
				continue
			}
			rewriteExpr(&st.Expr)
			if containsUnknownCall(st.Expr) {
				cur = availSet{}
			}
		}
	}
	if blk.Tail != nil {
		switch t := blk.Tail.(type) {
		case *ir.If:
			rewriteExpr(&t.Test)
		case *ir.While:
			rewriteExpr(&t.Test)
		case *ir.For:
			if t.Test != nil {
				rewriteExpr(&t.Test)
			}
		case *ir.Switch:
			rewriteExpr(&t.Discriminant)
		case *ir.Return:
			if t.Arg != nil {
				rewriteExpr(&t.Arg)
			}
		case *ir.Throw:
			rewriteExpr(&t.Arg)
		}
	}
	return changed
}

// substituteAll recursively replaces every SSAIdentifier read in e whose current
// copy clears AvailabilityThreshold with a freshly built SSAIdentifier for the
// copy's source, preserving e's own NodeId/Loc at the replaced leaf.
func substituteAll(e ir.Expression, cur availSet, opts Options, changed *bool) ir.Expression {
	if e == nil {
		return nil
	}
	if id, ok := e.(*ir.SSAIdentifier); ok {
		if c, ok := cur[keyOf(id)]; ok && c.confidence >= opts.AvailabilityThreshold {
			*changed = true
			return &ir.SSAIdentifier{
				NodeBase:     ir.NodeBase{Id: id.ID(), Loc: id.Location()},
				Name:         c.source.name,
				Version:      c.source.version,
				OriginalName: id.OriginalName,
			}
		}
		return e
	}
	switch ex := e.(type) {
	case *ir.Binary:
		ex.Left = substituteAll(ex.Left, cur, opts, changed)
		ex.Right = substituteAll(ex.Right, cur, opts, changed)
	case *ir.Logical:
		ex.Left = substituteAll(ex.Left, cur, opts, changed)
		ex.Right = substituteAll(ex.Right, cur, opts, changed)
	case *ir.Unary:
		ex.Arg = substituteAll(ex.Arg, cur, opts, changed)
	case *ir.Update:
		ex.Arg = substituteAll(ex.Arg, cur, opts, changed)
	case *ir.Assignment:
		ex.RHS = substituteAll(ex.RHS, cur, opts, changed)
	case *ir.Conditional:
		ex.Test = substituteAll(ex.Test, cur, opts, changed)
		ex.Then = substituteAll(ex.Then, cur, opts, changed)
		ex.Else = substituteAll(ex.Else, cur, opts, changed)
	case *ir.Call:
		ex.Callee = substituteAll(ex.Callee, cur, opts, changed)
		for i, a := range ex.Args {
			ex.Args[i] = substituteAll(a, cur, opts, changed)
		}
	case *ir.New:
		ex.Callee = substituteAll(ex.Callee, cur, opts, changed)
		for i, a := range ex.Args {
			ex.Args[i] = substituteAll(a, cur, opts, changed)
		}
	case *ir.Member:
		ex.Object = substituteAll(ex.Object, cur, opts, changed)
		if ex.Computed {
			ex.Property = substituteAll(ex.Property, cur, opts, changed)
		}
	case *ir.Array:
		for i, el := range ex.Elements {
			ex.Elements[i] = substituteAll(el, cur, opts, changed)
		}
	case *ir.Object:
		for _, p := range ex.Properties {
			switch m := p.(type) {
			case *ir.Property:
				if m.Computed {
					m.Key = substituteAll(m.Key, cur, opts, changed)
				}
				m.Value = substituteAll(m.Value, cur, opts, changed)
			case *ir.Spread:
				m.Arg = substituteAll(m.Arg, cur, opts, changed)
			}
		}
	case *ir.Spread:
		ex.Arg = substituteAll(ex.Arg, cur, opts, changed)
	case *ir.Sequence:
		for i, sub := range ex.Exprs {
			ex.Exprs[i] = substituteAll(sub, cur, opts, changed)
		}
	}
	return e
}
