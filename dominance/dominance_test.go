package dominance_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
)

func TestDiamondIdomAndFrontier(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	thenStmt := b.ExpressionStatement(b.Call(b.Identifier("f"), nil, false))
	elseStmt := b.ExpressionStatement(b.Call(b.Identifier("g"), nil, false))
	ifStmt := b.If(b.Identifier("cond"), thenStmt, elseStmt)

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ifStmt})
	info := dominance.Analyze(g)

	// Every block is dominated by entry.
	for _, id := range g.BlockIds() {
		require.True(t, info.Dominates(g.EntryId(), id))
	}

	// Exit's only predecessor is the merge block, which is therefore its idom; entry
	// dominates every block, so its own frontier is empty.
	merge := g.Blocks[g.Blocks[g.EntryId()].Succs[0]].Succs[0]
	require.Equal(t, merge, info.IDom(g.ExitId()))
	require.Empty(t, info.Frontier(g.EntryId()))
}

func TestLoopBackEdgeDetected(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	body := b.ExpressionStatement(b.Call(b.Identifier("step"), nil, false))
	whileStmt := b.While(b.Identifier("cond"), body)

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{whileStmt})
	info := dominance.Analyze(g)

	require.Len(t, info.Loops(), 1)
	loop := info.Loops()[0]
	require.Equal(t, g.EntryId(), loop.Header)
	require.True(t, loop.Body[loop.Header])
	require.True(t, loop.Body[loop.Latch])
}

func TestReversePostOrderStartsAtEntry(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	ifStmt := b.If(b.Identifier("cond"), b.Empty(), b.Empty())
	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ifStmt})
	info := dominance.Analyze(g)

	rpo := info.ReversePostOrder()
	require.NotEmpty(t, rpo)
	require.Equal(t, g.EntryId(), rpo[0])
}

func TestFrontierOfBranchBlocksIncludesMerge(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	thenStmt := b.ExpressionStatement(b.Call(b.Identifier("f"), nil, false))
	elseStmt := b.ExpressionStatement(b.Call(b.Identifier("g"), nil, false))
	ifStmt := b.If(b.Identifier("cond"), thenStmt, elseStmt)

	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ifStmt})
	info := dominance.Analyze(g)

	entrySuccs := g.Blocks[g.EntryId()].Succs
	thenBlk, elseBlk := entrySuccs[0], entrySuccs[1]

	thenSuccs := g.Blocks[thenBlk].Succs
	require.Len(t, thenSuccs, 1)
	merge := thenSuccs[0]

	require.Contains(t, info.Frontier(thenBlk), merge)
	require.Contains(t, info.Frontier(elseBlk), merge)
}

func TestPostDominanceOfReturn(t *testing.T) {
	t.Parallel()

	b := ir.NewBuilder(ids.NewAllocator())
	ret := b.Return(b.NumberLiteral(1))
	g := cfg.Build(ids.NewAllocator(), []ir.Statement{ret})
	info := dominance.Analyze(g)

	require.True(t, info.PostDominates(g.ExitId(), g.EntryId()))
}
