package ssa

import (
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/util/orderedmap"
)

// Build converts g into SSA form in place. params lists the variable names already
// live on entry (function parameters, or a closed-over outer scope) so reads of
// them before any local definition resolve to a synthetic version 0 rather than
// being mistaken for uses of an undeclared variable.
func Build(alloc *ids.Allocator, g *cfg.Graph, info *dominance.Info, params []string) *Program {
	prog := &Program{
		Graph:  g,
		Phis:   make(map[ir.BlockId]*orderedmap.OrderedMap[string, *ir.Phi]),
		UseDef: make(map[ids.NodeId]*Def),
		Defs:   make(map[string]map[ids.SSAVersion]*Def),
	}

	defBlocks := collectDefBlocks(g)
	for _, p := range params {
		if defBlocks[p] == nil {
			defBlocks[p] = map[ir.BlockId]bool{}
		}
	}
	needPhi := placePhis(info, defBlocks)

	b := ir.NewBuilder(alloc)
	children := domTreeChildren(g, info)

	r := &renamer{
		alloc:   alloc,
		builder: b,
		g:       g,
		info:    info,
		prog:    prog,
		stacks:  make(map[string][]ids.SSAVersion),
		needPhi: needPhi,
	}
	for _, p := range params {
		v := alloc.NextVersionFor(p)
		r.push(p, v)
		prog.recordDef(&Def{Variable: p, Version: v, Block: g.EntryId(), Site: nil})
	}
	r.visit(g.EntryId(), children)
	return prog
}

// collectDefBlocks returns, for each variable name, the set of block ids containing
// at least one definition of it (VariableDeclaration, simple Assignment, or
// increment/decrement).
func collectDefBlocks(g *cfg.Graph) map[string]map[ir.BlockId]bool {
	out := make(map[string]map[ir.BlockId]bool)
	add := func(name string, id ir.BlockId) {
		if out[name] == nil {
			out[name] = make(map[ir.BlockId]bool)
		}
		out[name][id] = true
	}
	for id, blk := range g.Blocks {
		for _, s := range blk.Stmts {
			for _, name := range defsInStmt(s) {
				add(name, id)
			}
		}
	}
	return out
}

func defsInStmt(s ir.Statement) []string {
	switch st := s.(type) {
	case *ir.VariableDeclaration:
		var names []string
		for _, d := range st.Declarators {
			names = append(names, ir.BoundNames(d.Target)...)
		}
		return names
	case *ir.ExpressionStatement:
		return defsInExpr(st.Expr)
	}
	return nil
}

func defsInExpr(e ir.Expression) []string {
	switch ex := e.(type) {
	case *ir.Assignment:
		if name, ok := ir.PatternName(ex.LHS); ok {
			return []string{name}
		}
		return ir.BoundNames(ex.LHS)
	case *ir.Update:
		if name, ok := ir.IdentifierName(ex.Arg); ok {
			return []string{name}
		}
	case *ir.Sequence:
		var names []string
		for _, e2 := range ex.Exprs {
			names = append(names, defsInExpr(e2)...)
		}
		return names
	}
	return nil
}

// placePhis runs the standard iterated-dominance-frontier algorithm (Cytron et
// al.) to find the minimal set of blocks needing a phi for each variable.
func placePhis(info *dominance.Info, defBlocks map[string]map[ir.BlockId]bool) map[ir.BlockId]map[string]bool {
	needPhi := make(map[ir.BlockId]map[string]bool)
	mark := func(id ir.BlockId, v string) {
		if needPhi[id] == nil {
			needPhi[id] = make(map[string]bool)
		}
		needPhi[id][v] = true
	}

	for v, defs := range defBlocks {
		hasPhi := make(map[ir.BlockId]bool)
		queued := make(map[ir.BlockId]bool)
		var worklist []ir.BlockId
		for id := range defs {
			worklist = append(worklist, id)
			queued[id] = true
		}
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, d := range info.Frontier(n) {
				if hasPhi[d] {
					continue
				}
				hasPhi[d] = true
				mark(d, v)
				if !queued[d] {
					queued[d] = true
					worklist = append(worklist, d)
				}
			}
		}
	}
	return needPhi
}

// domTreeChildren groups every block under its immediate dominator, in increasing
// block-id order, so the renaming DFS visits the tree deterministically. Blocks
// unreachable from entry have no dominator: cfg/builder.go's buildSeq still
// builds the dead code following a return/throw/break/continue (so DCE has
// something to mark dead), but as a fresh, unconnected block. Such blocks are
// skipped here rather than renamed; they never define anything a live block can
// read, and DCE's own reachability pass clears their statements later.
func domTreeChildren(g *cfg.Graph, info *dominance.Info) map[ir.BlockId][]ir.BlockId {
	reachable := make(map[ir.BlockId]bool, len(info.ReversePostOrder()))
	for _, id := range info.ReversePostOrder() {
		reachable[id] = true
	}

	children := make(map[ir.BlockId][]ir.BlockId)
	for _, id := range g.BlockIds() {
		if id == g.EntryId() || !reachable[id] {
			continue
		}
		parent := info.IDom(id)
		children[parent] = append(children[parent], id)
	}
	for p := range children {
		sortBlockIds(children[p])
	}
	return children
}

func sortBlockIds(ids []ir.BlockId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

type renamer struct {
	alloc   *ids.Allocator
	builder *ir.Builder
	g       *cfg.Graph
	info    *dominance.Info
	prog    *Program

	stacks  map[string][]ids.SSAVersion
	needPhi map[ir.BlockId]map[string]bool
}

func (r *renamer) current(name string) (ids.SSAVersion, bool) {
	st := r.stacks[name]
	if len(st) == 0 {
		return 0, false
	}
	return st[len(st)-1], true
}

func (r *renamer) push(name string, v ids.SSAVersion) {
	r.stacks[name] = append(r.stacks[name], v)
}

func (r *renamer) pop(name string) {
	st := r.stacks[name]
	r.stacks[name] = st[:len(st)-1]
}

// visit renames block id and recurses over its dominator-tree children.
func (r *renamer) visit(id ir.BlockId, children map[ir.BlockId][]ir.BlockId) {
	pushed := map[string]int{}

	for _, v := range sortedStrings(r.needPhi[id]) {
		version := r.alloc.NextVersionFor(v)
		phi := ir.NewPhi(r.alloc.NextNodeId(), v, version)
		if r.prog.Phis[id] == nil {
			r.prog.Phis[id] = orderedmap.New[string, *ir.Phi]()
		}
		r.prog.Phis[id].Store(v, phi)
		r.push(v, version)
		pushed[v]++
		r.prog.recordDef(&Def{Variable: v, Version: version, Block: id, Phi: phi})
	}

	blk := r.g.Blocks[id]
	for _, stmt := range blk.Stmts {
		r.renameStmt(id, stmt, pushed)
	}
	if blk.Tail != nil {
		r.renameTailReads(blk.Tail)
	}

	for _, succ := range r.g.Succs(id) {
		phis := r.prog.Phis[succ]
		if phis == nil {
			continue
		}
		for _, pair := range phis.Pairs {
			if v, ok := r.current(pair.Key); ok {
				pair.Value.Operands[id] = v
			}
		}
	}

	for _, c := range children[id] {
		r.visit(c, children)
	}

	for v, n := range pushed {
		for i := 0; i < n; i++ {
			r.pop(v)
		}
	}
}

// renameStmt rewrites reads with the builder's SSAIdentifier form and bumps the
// version stack on every definition, tracking how many versions this statement
// pushed (via pushed) so visit can pop them when leaving the block.
func (r *renamer) renameStmt(block ir.BlockId, s ir.Statement, pushed map[string]int) {
	switch st := s.(type) {
	case *ir.VariableDeclaration:
		for _, d := range st.Declarators {
			if d.Init != nil {
				d.Init = r.renameExpr(d.Init)
			}
			if name, ok := ir.PatternName(d.Target); ok {
				r.define(block, name, d, pushed)
			}
		}
	case *ir.ExpressionStatement:
		st.Expr = r.renameDefiningExpr(block, st.Expr, pushed)
	}
}

// renameDefiningExpr handles the statement-level expression forms that can define a
// variable (Assignment, Update, Sequence); every other expression is a pure read.
func (r *renamer) renameDefiningExpr(block ir.BlockId, e ir.Expression, pushed map[string]int) ir.Expression {
	switch ex := e.(type) {
	case *ir.Assignment:
		ex.RHS = r.renameExpr(ex.RHS)
		if name, ok := ir.PatternName(ex.LHS); ok {
			r.define(block, name, ex, pushed)
		}
		return ex
	case *ir.Update:
		if name, ok := ir.IdentifierName(ex.Arg); ok {
			ex.Arg = r.renameExpr(ex.Arg) // the read of the pre-increment value
			r.define(block, name, ex, pushed)
			return ex
		}
		ex.Arg = r.renameExpr(ex.Arg)
		return ex
	case *ir.Sequence:
		for i, sub := range ex.Exprs {
			ex.Exprs[i] = r.renameDefiningExpr(block, sub, pushed)
		}
		return ex
	default:
		return r.renameExpr(e)
	}
}

func (r *renamer) define(block ir.BlockId, name string, site ir.Node, pushed map[string]int) {
	v := r.alloc.NextVersionFor(name)
	r.push(name, v)
	pushed[name]++
	r.prog.recordDef(&Def{Variable: name, Version: v, Block: block, Site: site})
}

// renameTailReads rewrites the condition/discriminant/argument expression of a
// block's terminating statement; tail statements never define a variable.
func (r *renamer) renameTailReads(s ir.Statement) {
	switch st := s.(type) {
	case *ir.If:
		st.Test = r.renameExpr(st.Test)
	case *ir.While:
		st.Test = r.renameExpr(st.Test)
	case *ir.For:
		if st.Test != nil {
			st.Test = r.renameExpr(st.Test)
		}
	case *ir.Switch:
		st.Discriminant = r.renameExpr(st.Discriminant)
	case *ir.Return:
		if st.Arg != nil {
			st.Arg = r.renameExpr(st.Arg)
		}
	case *ir.Throw:
		st.Arg = r.renameExpr(st.Arg)
	}
}

// renameExpr rewrites every Identifier read reachable from e into a versioned
// SSAIdentifier, recursing into every expression shape the IR supports.
func (r *renamer) renameExpr(e ir.Expression) ir.Expression {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *ir.Identifier:
		if v, ok := r.current(ex.Name); ok {
			ssa := r.builder.SSAIdentifier(ex.Name, v, ex.Name)
			ssa.Loc = ex.Loc
			r.prog.UseDef[ssa.ID()] = r.prog.Defs[ex.Name][v]
			return ssa
		}
		return ex
	case *ir.Binary:
		ex.Left = r.renameExpr(ex.Left)
		ex.Right = r.renameExpr(ex.Right)
	case *ir.Logical:
		ex.Left = r.renameExpr(ex.Left)
		ex.Right = r.renameExpr(ex.Right)
	case *ir.Unary:
		ex.Arg = r.renameExpr(ex.Arg)
	case *ir.Update:
		ex.Arg = r.renameExpr(ex.Arg)
	case *ir.Assignment:
		ex.RHS = r.renameExpr(ex.RHS)
	case *ir.Conditional:
		ex.Test = r.renameExpr(ex.Test)
		ex.Then = r.renameExpr(ex.Then)
		ex.Else = r.renameExpr(ex.Else)
	case *ir.Call:
		ex.Callee = r.renameExpr(ex.Callee)
		for i, a := range ex.Args {
			ex.Args[i] = r.renameExpr(a)
		}
	case *ir.New:
		ex.Callee = r.renameExpr(ex.Callee)
		for i, a := range ex.Args {
			ex.Args[i] = r.renameExpr(a)
		}
	case *ir.Member:
		ex.Object = r.renameExpr(ex.Object)
		if ex.Computed {
			ex.Property = r.renameExpr(ex.Property)
		}
	case *ir.Array:
		for i, el := range ex.Elements {
			ex.Elements[i] = r.renameExpr(el)
		}
	case *ir.Object:
		for _, p := range ex.Properties {
			switch m := p.(type) {
			case *ir.Property:
				if m.Computed {
					m.Key = r.renameExpr(m.Key)
				}
				m.Value = r.renameExpr(m.Value)
			case *ir.Spread:
				m.Arg = r.renameExpr(m.Arg)
			}
		}
	case *ir.Spread:
		ex.Arg = r.renameExpr(ex.Arg)
	case *ir.Sequence:
		for i, sub := range ex.Exprs {
			ex.Exprs[i] = r.renameExpr(sub)
		}
	}
	return e
}
