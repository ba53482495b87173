package ssa

import "go.uber.org/jsdeobf/ir"

// Destroy converts prog's graph back out of SSA form: every SSAIdentifier becomes a
// plain Identifier named after its OriginalName, and every phi is replaced by a
// copy assignment appended to the end of each of its predecessor blocks (the naive
// out-of-SSA translation; spec.md §4.3's design note documents that this approach is
// vulnerable to the lost-copy and swap problems and that a production deobfuscator
// would need live-range splitting or Sreedhar-Gao style renaming to close the gap).
func Destroy(prog *Program) {
	// Insert each phi's resolving copies first, while SSAIdentifier names still
	// carry their version, then collapse every SSAIdentifier to a plain Identifier
	// in one final pass. Doing it in this order is what makes the inserted copies
	// reference the right version instead of degenerating into `x = x` once every
	// version of a variable has already been flattened to the same bare name.
	builder := prog.Graph.Builder()
	for id, phis := range prog.Phis {
		for _, pair := range phis.Pairs {
			phi := pair.Value
			for pred, version := range phi.Operands {
				copyStmt := builder.ExpressionStatement(builder.Assignment("=",
					builder.IdentifierPattern(phi.Variable),
					builder.SSAIdentifier(phi.Variable, version, phi.Variable),
				))
				predBlock := prog.Graph.Blocks[pred]
				predBlock.Stmts = append(predBlock.Stmts, copyStmt)
			}
		}
		delete(prog.Phis, id)
	}

	for _, blk := range prog.Graph.Blocks {
		for _, s := range blk.Stmts {
			destroyStmtReads(s)
		}
		if blk.Tail != nil {
			destroyTailReads(blk.Tail)
		}
	}
}

func destroyStmtReads(s ir.Statement) {
	switch st := s.(type) {
	case *ir.VariableDeclaration:
		for _, d := range st.Declarators {
			d.Init = destroyExpr(d.Init)
		}
	case *ir.ExpressionStatement:
		st.Expr = destroyExpr(st.Expr)
	}
}

func destroyTailReads(s ir.Statement) {
	switch st := s.(type) {
	case *ir.If:
		st.Test = destroyExpr(st.Test)
	case *ir.While:
		st.Test = destroyExpr(st.Test)
	case *ir.For:
		st.Test = destroyExpr(st.Test)
	case *ir.Switch:
		st.Discriminant = destroyExpr(st.Discriminant)
	case *ir.Return:
		st.Arg = destroyExpr(st.Arg)
	case *ir.Throw:
		st.Arg = destroyExpr(st.Arg)
	}
}

func destroyExpr(e ir.Expression) ir.Expression {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *ir.SSAIdentifier:
		return &ir.Identifier{NodeBase: ex.NodeBase, Name: ex.OriginalName}
	case *ir.Binary:
		ex.Left, ex.Right = destroyExpr(ex.Left), destroyExpr(ex.Right)
	case *ir.Logical:
		ex.Left, ex.Right = destroyExpr(ex.Left), destroyExpr(ex.Right)
	case *ir.Unary:
		ex.Arg = destroyExpr(ex.Arg)
	case *ir.Update:
		ex.Arg = destroyExpr(ex.Arg)
	case *ir.Assignment:
		ex.RHS = destroyExpr(ex.RHS)
	case *ir.Conditional:
		ex.Test, ex.Then, ex.Else = destroyExpr(ex.Test), destroyExpr(ex.Then), destroyExpr(ex.Else)
	case *ir.Call:
		ex.Callee = destroyExpr(ex.Callee)
		for i, a := range ex.Args {
			ex.Args[i] = destroyExpr(a)
		}
	case *ir.New:
		ex.Callee = destroyExpr(ex.Callee)
		for i, a := range ex.Args {
			ex.Args[i] = destroyExpr(a)
		}
	case *ir.Member:
		ex.Object = destroyExpr(ex.Object)
		if ex.Computed {
			ex.Property = destroyExpr(ex.Property)
		}
	case *ir.Array:
		for i, el := range ex.Elements {
			ex.Elements[i] = destroyExpr(el)
		}
	case *ir.Object:
		for _, p := range ex.Properties {
			switch m := p.(type) {
			case *ir.Property:
				if m.Computed {
					m.Key = destroyExpr(m.Key)
				}
				m.Value = destroyExpr(m.Value)
			case *ir.Spread:
				m.Arg = destroyExpr(m.Arg)
			}
		}
	case *ir.Spread:
		ex.Arg = destroyExpr(ex.Arg)
	case *ir.Sequence:
		for i, sub := range ex.Exprs {
			ex.Exprs[i] = destroyExpr(sub)
		}
	}
	return e
}
