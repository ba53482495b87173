package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
)

func TestBuildEmptyProgramHasEntryExitOnly(t *testing.T) {
	t.Parallel()

	g := cfg.Build(ids.NewAllocator(), nil)
	require.Len(t, g.Blocks, 2)
	require.Contains(t, g.Blocks[g.Entry].Succs, g.Exit)
}

func TestBuildIfElseWiring(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	cond := b.Identifier("cond")
	thenStmt := b.ExpressionStatement(b.Call(b.Identifier("f"), nil, false))
	elseStmt := b.ExpressionStatement(b.Call(b.Identifier("g"), nil, false))
	ifStmt := b.If(cond, thenStmt, elseStmt)

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ifStmt})

	// entry -> then (true), entry -> else (false); then/else both -> next -> exit.
	entrySuccs := g.Blocks[g.Entry].Succs
	require.Len(t, entrySuccs, 2)

	var sawTrue, sawFalse bool
	for _, e := range g.Edges {
		if e.From == g.Entry {
			switch e.Kind {
			case cfg.TrueBranch:
				sawTrue = true
			case cfg.FalseBranch:
				sawFalse = true
			}
		}
	}
	require.True(t, sawTrue)
	require.True(t, sawFalse)
}

func TestBuildWhileBackEdge(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	cond := b.Identifier("cond")
	body := b.ExpressionStatement(b.Call(b.Identifier("step"), nil, false))
	whileStmt := b.While(cond, body)

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{whileStmt})

	header := g.Entry
	var backEdge bool
	for _, e := range g.Edges {
		if e.To == header && e.Kind == cfg.Unconditional {
			backEdge = true
		}
	}
	require.True(t, backEdge, "body must have an unconditional back-edge to the header")
}

func TestBuildReturnHasNoFallthroughEdge(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	ret := b.Return(b.NumberLiteral(1))

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ret})

	require.Len(t, g.Blocks[g.Entry].Succs, 1)
	require.Equal(t, g.Exit, g.Blocks[g.Entry].Succs[0])
}

func TestBreakOutsideLoopWarns(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	brk := b.Break("")

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{brk})
	require.Len(t, g.Warnings, 1)
	require.Contains(t, g.Blocks[g.Entry].Succs, g.Exit)
}

func TestSwitchFallthroughChaining(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	discr := b.Identifier("k")
	c1 := b.SwitchCase(b.NumberLiteral(1), []ir.Statement{b.ExpressionStatement(b.Call(b.Identifier("f"), nil, false))})
	c2 := b.SwitchCase(b.NumberLiteral(2), []ir.Statement{b.ExpressionStatement(b.Call(b.Identifier("g"), nil, false))})
	sw := b.Switch(discr, []*ir.SwitchCase{c1, c2})

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{sw})

	var sawFallthrough bool
	for _, e := range g.Edges {
		if e.Kind == cfg.Fallthrough {
			sawFallthrough = true
		}
	}
	require.True(t, sawFallthrough)
}

func TestInvariantSuccsPredsMirror(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	ifStmt := b.If(b.Identifier("cond"), b.Empty(), b.Empty())
	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ifStmt})

	for _, blk := range g.Blocks {
		for _, s := range blk.Succs {
			require.Contains(t, g.Blocks[s].Preds, blk.ID)
		}
	}
}
