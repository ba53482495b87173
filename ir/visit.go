package ir

import "reflect"

// Children returns n's immediate children in a fixed, deterministic order (left to
// right, as they appear in source), skipping nils. This is the single place that
// knows the shape of every variant; every other traversal (CFG building, def-use
// collection, rewrite application) is built on top of it instead of re-deriving the
// shape of the tree (spec.md §9: "Default traversal recurses into all
// expression/statement children in a fixed order").
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c == nil || isNilNode(c) {
			return
		}
		out = append(out, c)
	}
	switch n := n.(type) {
	case *Identifier, *SSAIdentifier, *Literal, *Break, *Continue, *Empty, *Debugger, *IdentifierPattern:
		// leaves

	case *Binary:
		add(n.Left)
		add(n.Right)
	case *Unary:
		add(n.Arg)
	case *Update:
		add(n.Arg)
	case *Assignment:
		add(n.LHS)
		add(n.RHS)
	case *Logical:
		add(n.Left)
		add(n.Right)
	case *Conditional:
		add(n.Test)
		add(n.Then)
		add(n.Else)
	case *Call:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *New:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *Member:
		add(n.Object)
		add(n.Property)
	case *Array:
		for _, e := range n.Elements {
			add(e)
		}
	case *Object:
		for _, p := range n.Properties {
			add(p)
		}
	case *Property:
		add(n.Key)
		add(n.Value)
	case *Spread:
		add(n.Arg)
	case *Sequence:
		for _, e := range n.Exprs {
			add(e)
		}

	case *ExpressionStatement:
		add(n.Expr)
	case *Block:
		for _, s := range n.Body {
			add(s)
		}
	case *Declarator:
		add(n.Target)
		add(n.Init)
	case *VariableDeclaration:
		for _, d := range n.Declarators {
			add(d)
		}
	case *FunctionDeclaration:
		if n.Id != nil {
			add(n.Id)
		}
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Return:
		add(n.Arg)
	case *If:
		add(n.Test)
		add(n.Then)
		add(n.Else)
	case *While:
		add(n.Test)
		add(n.Body)
	case *For:
		add(n.Init)
		add(n.Test)
		add(n.Update)
		add(n.Body)
	case *Throw:
		add(n.Arg)
	case *CatchClause:
		add(n.Param)
		add(n.Body)
	case *Try:
		add(n.Block)
		add(n.Catch)
		add(n.Finally)
	case *SwitchCase:
		add(n.Test)
		for _, s := range n.Consequent {
			add(s)
		}
	case *Switch:
		add(n.Discriminant)
		for _, c := range n.Cases {
			add(c)
		}
	case *Labeled:
		add(n.Body)

	case *ArrayPattern:
		for _, e := range n.Elements {
			add(e)
		}
	case *ObjectPatternProperty:
		add(n.Key)
		add(n.Value)
	case *ObjectPattern:
		for _, p := range n.Properties {
			add(p)
		}
		add(n.Rest)
	case *RestElement:
		add(n.Target)

	case *Program:
		for _, s := range n.Body {
			add(s)
		}
	}
	return out
}

// isNilNode reports whether a non-nil interface value wraps a nil concrete
// pointer, which Children's add() must skip to avoid emitting typed-nil children
// (e.g. an ObjectPattern with no rest stores a nil *RestElement, which becomes a
// non-nil Node wrapping (*RestElement)(nil) when passed to add). Every node in this
// package is represented as a
// pointer to its concrete struct, so reflection is sufficient and keeps this from
// needing a case per variant.
func isNilNode(n Node) bool {
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Walk visits n and every descendant in pre-order, calling visit on each. If visit
// returns false, Walk does not descend into that node's children (but continues
// with its siblings via the caller's own recursion). Mirrors the go/ast.Inspect
// idiom the teacher uses throughout (e.g. util/asthelper in the original codebase).
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}
