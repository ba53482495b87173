package structuring_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/passes/structuring"
	"go.uber.org/jsdeobf/ssa"
)

func buildState(stmts []ir.Statement) *pass.State {
	alloc := ids.NewAllocator()
	g := cfg.Build(alloc, stmts)
	info := dominance.Analyze(g)
	prog := ssa.Build(alloc, g, info, nil)
	return &pass.State{Graph: g, Dom: info, Program: prog}
}

func findTailByKind[T any](st *pass.State) (T, bool) {
	var zero T
	for _, blk := range st.Graph.Blocks {
		if t, ok := blk.Tail.(T); ok {
			return t, true
		}
	}
	return zero, false
}

// if (a === 1) { r = "x" } else if (a === 2) { r = "y" } else { r = "z" }
func TestTernaryRecoveryOnMatchingChain(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	target := func() ir.Pattern { return b.IdentifierPattern("r") }
	assignStmt := func(v string) ir.Statement {
		return b.ExpressionStatement(b.Assignment("=", target(), b.StringLiteral(v)))
	}
	chain := b.If(
		b.Binary("===", b.Identifier("a"), b.NumberLiteral(1)),
		assignStmt("x"),
		b.If(
			b.Binary("===", b.Identifier("a"), b.NumberLiteral(2)),
			assignStmt("y"),
			assignStmt("z"),
		),
	)

	st := buildState([]ir.Statement{chain})
	p := structuring.New(structuring.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	_, stillHasIf := findTailByKind[*ir.If](st)
	require.False(t, stillHasIf, "the if-chain should have been replaced by a plain assignment")

	found := false
	for _, blk := range st.Graph.Blocks {
		for _, s := range blk.Stmts {
			es, ok := s.(*ir.ExpressionStatement)
			if !ok {
				continue
			}
			assign, ok := es.Expr.(*ir.Assignment)
			if !ok {
				continue
			}
			if _, ok := assign.RHS.(*ir.Conditional); ok {
				found = true
			}
		}
	}
	require.True(t, found, "expected a nested conditional assignment in the rewritten block")
}

// if (a === 1) { f(1) } else if (a === 2) { f(2) } else if (a === 3) { f(3) } else { f(0) }
func TestSwitchRecoveryOnMatchingChain(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	callStmt := func(n float64) ir.Statement {
		return b.ExpressionStatement(b.Call(b.Identifier("f"), []ir.Expression{b.NumberLiteral(n)}, false))
	}
	chain := b.If(
		b.Binary("===", b.Identifier("a"), b.NumberLiteral(1)),
		callStmt(1),
		b.If(
			b.Binary("===", b.Identifier("a"), b.NumberLiteral(2)),
			callStmt(2),
			b.If(
				b.Binary("===", b.Identifier("a"), b.NumberLiteral(3)),
				callStmt(3),
				callStmt(0),
			),
		),
	)

	st := buildState([]ir.Statement{chain})
	p := structuring.New(structuring.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	sw, ok := findTailByKind[*ir.Switch](st)
	require.True(t, ok, "expected a Switch tail after recovery")
	require.Len(t, sw.Cases, 4)
	require.Nil(t, sw.Cases[3].Test, "the trailing else becomes the default case")
}

// while (true) { if (done) break; work(); }
func TestLoopRecoveryRewritesBreakGuard(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	guard := b.If(b.Identifier("done"), b.Break(""), nil)
	work := b.ExpressionStatement(b.Call(b.Identifier("work"), nil, false))
	loop := b.While(b.BoolLiteral(true), b.Block([]ir.Statement{guard, work}))

	st := buildState([]ir.Statement{loop})
	p := structuring.New(structuring.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	w, ok := findTailByKind[*ir.While](st)
	require.True(t, ok)
	unary, ok := w.Test.(*ir.Unary)
	require.True(t, ok)
	require.Equal(t, "!", unary.Op)
	id, ok := unary.Arg.(*ir.Identifier)
	require.True(t, ok)
	require.Equal(t, "done", id.Name)

	body, ok := w.Body.(*ir.Block)
	require.True(t, ok)
	require.Len(t, body.Body, 1)
}

// if (cond) { x = 1 } else { x = 2 } — a plain if/else, no else-if chain.
func TestTernaryRecoveryOnPlainIfElse(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	chain := b.If(
		b.Identifier("cond"),
		b.ExpressionStatement(b.Assignment("=", b.IdentifierPattern("x"), b.NumberLiteral(1))),
		b.ExpressionStatement(b.Assignment("=", b.IdentifierPattern("x"), b.NumberLiteral(2))),
	)

	st := buildState([]ir.Statement{chain})
	p := structuring.New(structuring.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed, "a plain if/else with matching single-assignment arms already qualifies")

	_, stillHasIf := findTailByKind[*ir.If](st)
	require.False(t, stillHasIf)
}

func TestTernaryRejectsDifferingTargets(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	chain := b.If(
		b.Binary("===", b.Identifier("a"), b.NumberLiteral(1)),
		b.ExpressionStatement(b.Assignment("=", b.IdentifierPattern("r1"), b.NumberLiteral(1))),
		b.If(
			b.Binary("===", b.Identifier("a"), b.NumberLiteral(2)),
			b.ExpressionStatement(b.Assignment("=", b.IdentifierPattern("r2"), b.NumberLiteral(2))),
			b.ExpressionStatement(b.Assignment("=", b.IdentifierPattern("r1"), b.NumberLiteral(0))),
		),
	)

	st := buildState([]ir.Statement{chain})
	p := structuring.New(structuring.DefaultOptions())
	_, err := p.Run(context.Background(), st)
	require.NoError(t, err)

	_, stillHasIf := findTailByKind[*ir.If](st)
	require.True(t, stillHasIf, "differing targets must disqualify ternary recovery")
}
