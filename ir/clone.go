package ir

// Clone deep-copies n, assigning every copied node a fresh NodeId from b while
// preserving each node's Loc (a clone still corresponds to the same source
// construct as its original). Clone is total over the closed node set in this
// package; an unrecognized concrete type is a programmer error, not a runtime
// input error, so it panics rather than returning an error.
func Clone(b *Builder, n Node) Node {
	if n == nil {
		return nil
	}
	switch n := n.(type) {
	case *Identifier:
		return withLoc(b.Identifier(n.Name), n.Loc)
	case *SSAIdentifier:
		return withLoc(b.SSAIdentifier(n.Name, n.Version, n.OriginalName), n.Loc)
	case *Literal:
		l := &Literal{NodeBase: NodeBase{Id: b.id(), Loc: n.Loc}, ValueKind: n.ValueKind, Value: n.Value}
		if rv, ok := n.Value.(*RegexValue); ok {
			cp := *rv
			l.Value = &cp
		}
		return l
	case *Binary:
		return withLoc(b.Binary(n.Op, cloneExpr(b, n.Left), cloneExpr(b, n.Right)), n.Loc)
	case *Unary:
		return withLoc(b.Unary(n.Op, cloneExpr(b, n.Arg), n.Prefix), n.Loc)
	case *Update:
		return withLoc(b.Update(n.Op, cloneExpr(b, n.Arg), n.Prefix), n.Loc)
	case *Assignment:
		return withLoc(b.Assignment(n.Op, clonePattern(b, n.LHS), cloneExpr(b, n.RHS)), n.Loc)
	case *Logical:
		return withLoc(b.Logical(n.Op, cloneExpr(b, n.Left), cloneExpr(b, n.Right)), n.Loc)
	case *Conditional:
		return withLoc(b.Conditional(cloneExpr(b, n.Test), cloneExpr(b, n.Then), cloneExpr(b, n.Else)), n.Loc)
	case *Call:
		return withLoc(b.Call(cloneExpr(b, n.Callee), cloneExprs(b, n.Args), n.Optional), n.Loc)
	case *New:
		return withLoc(b.New(cloneExpr(b, n.Callee), cloneExprs(b, n.Args)), n.Loc)
	case *Member:
		return withLoc(b.Member(cloneExpr(b, n.Object), cloneExpr(b, n.Property), n.Computed, n.Optional), n.Loc)
	case *Array:
		elems := make([]Expression, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = cloneExpr(b, e)
		}
		return withLoc(b.Array(elems), n.Loc)
	case *Object:
		props := make([]ObjectMember, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = Clone(b, p).(ObjectMember)
		}
		return withLoc(b.Object(props), n.Loc)
	case *Property:
		return withLoc(b.Property(cloneExpr(b, n.Key), cloneExpr(b, n.Value), n.PropKind, n.Computed, n.Shorthand, n.IsMethod), n.Loc)
	case *Spread:
		return withLoc(b.Spread(cloneExpr(b, n.Arg)), n.Loc)
	case *Sequence:
		return withLoc(b.Sequence(cloneExprs(b, n.Exprs)), n.Loc)

	case *ExpressionStatement:
		return withLoc(b.ExpressionStatement(cloneExpr(b, n.Expr)), n.Loc)
	case *Block:
		body := make([]Statement, len(n.Body))
		for i, s := range n.Body {
			body[i] = cloneStmt(b, s)
		}
		return withLoc(b.Block(body), n.Loc)
	case *Declarator:
		return withLoc(b.Declarator(clonePattern(b, n.Target), cloneExpr(b, n.Init)), n.Loc)
	case *VariableDeclaration:
		decls := make([]*Declarator, len(n.Declarators))
		for i, d := range n.Declarators {
			decls[i] = Clone(b, d).(*Declarator)
		}
		return withLoc(b.VariableDeclaration(n.DeclKind, decls), n.Loc)
	case *FunctionDeclaration:
		var id *Identifier
		if n.Id != nil {
			id = Clone(b, n.Id).(*Identifier)
		}
		params := make([]Pattern, len(n.Params))
		for i, p := range n.Params {
			params[i] = clonePattern(b, p)
		}
		var body *Block
		if n.Body != nil {
			body = Clone(b, n.Body).(*Block)
		}
		return withLoc(b.FunctionDeclaration(id, params, body, n.Generator, n.Async), n.Loc)
	case *Return:
		return withLoc(b.Return(cloneExpr(b, n.Arg)), n.Loc)
	case *If:
		return withLoc(b.If(cloneExpr(b, n.Test), cloneStmt(b, n.Then), cloneStmt(b, n.Else)), n.Loc)
	case *While:
		return withLoc(b.While(cloneExpr(b, n.Test), cloneStmt(b, n.Body)), n.Loc)
	case *For:
		var init Node
		if n.Init != nil {
			init = Clone(b, n.Init)
		}
		return withLoc(b.For(init, cloneExpr(b, n.Test), cloneExpr(b, n.Update), cloneStmt(b, n.Body)), n.Loc)
	case *Break:
		return withLoc(b.Break(n.Label), n.Loc)
	case *Continue:
		return withLoc(b.Continue(n.Label), n.Loc)
	case *Throw:
		return withLoc(b.Throw(cloneExpr(b, n.Arg)), n.Loc)
	case *CatchClause:
		var body *Block
		if n.Body != nil {
			body = Clone(b, n.Body).(*Block)
		}
		return withLoc(b.CatchClause(clonePattern(b, n.Param), body), n.Loc)
	case *Try:
		var block *Block
		if n.Block != nil {
			block = Clone(b, n.Block).(*Block)
		}
		var catch *CatchClause
		if n.Catch != nil {
			catch = Clone(b, n.Catch).(*CatchClause)
		}
		var finally *Block
		if n.Finally != nil {
			finally = Clone(b, n.Finally).(*Block)
		}
		return withLoc(b.Try(block, catch, finally), n.Loc)
	case *SwitchCase:
		body := make([]Statement, len(n.Consequent))
		for i, s := range n.Consequent {
			body[i] = cloneStmt(b, s)
		}
		return withLoc(b.SwitchCase(cloneExpr(b, n.Test), body), n.Loc)
	case *Switch:
		cases := make([]*SwitchCase, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = Clone(b, c).(*SwitchCase)
		}
		return withLoc(b.Switch(cloneExpr(b, n.Discriminant), cases), n.Loc)
	case *Labeled:
		return withLoc(b.Labeled(n.Label, cloneStmt(b, n.Body)), n.Loc)
	case *Empty:
		return withLoc(b.Empty(), n.Loc)
	case *Debugger:
		return withLoc(b.Debugger(), n.Loc)

	case *IdentifierPattern:
		return withLoc(b.IdentifierPattern(n.Name), n.Loc)
	case *ArrayPattern:
		elems := make([]Pattern, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = clonePattern(b, e)
		}
		return withLoc(b.ArrayPattern(elems), n.Loc)
	case *ObjectPatternProperty:
		return withLoc(b.ObjectPatternProperty(cloneExpr(b, n.Key), clonePattern(b, n.Value), n.Computed, n.Shorthand), n.Loc)
	case *ObjectPattern:
		props := make([]*ObjectPatternProperty, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = Clone(b, p).(*ObjectPatternProperty)
		}
		var rest *RestElement
		if n.Rest != nil {
			rest = Clone(b, n.Rest).(*RestElement)
		}
		return withLoc(b.ObjectPattern(props, rest), n.Loc)
	case *RestElement:
		return withLoc(b.RestElement(clonePattern(b, n.Target)), n.Loc)

	case *Program:
		body := make([]Statement, len(n.Body))
		for i, s := range n.Body {
			body[i] = cloneStmt(b, s)
		}
		return withLoc(b.Program(body), n.Loc)

	case *Phi:
		p := b.Phi(n.Variable, n.Target)
		for pred, v := range n.Operands {
			p.Operands[pred] = v
		}
		return p

	default:
		panic("ir.Clone: unrecognized node type")
	}
}

func withLoc[T Node](n T, loc *Loc) T {
	if ls, ok := any(n).(locSetter); ok {
		ls.SetLoc(loc)
	}
	return n
}

func cloneExpr(b *Builder, e Expression) Expression {
	if e == nil {
		return nil
	}
	return Clone(b, e).(Expression)
}

func cloneExprs(b *Builder, es []Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = cloneExpr(b, e)
	}
	return out
}

func cloneStmt(b *Builder, s Statement) Statement {
	if s == nil {
		return nil
	}
	return Clone(b, s).(Statement)
}

func clonePattern(b *Builder, p Pattern) Pattern {
	if p == nil {
		return nil
	}
	return Clone(b, p).(Pattern)
}
