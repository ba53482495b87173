package dce_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/passes/dce"
	"go.uber.org/jsdeobf/ssa"
)

func buildState(stmts []ir.Statement) *pass.State {
	alloc := ids.NewAllocator()
	g := cfg.Build(alloc, stmts)
	info := dominance.Analyze(g)
	prog := ssa.Build(alloc, g, info, nil)
	return &pass.State{Graph: g, Dom: info, Program: prog}
}

func TestUnusedVariableWithoutSideEffectRemoved(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	decl := b.VariableDeclaration(ir.DeclLet, []*ir.Declarator{
		b.Declarator(b.IdentifierPattern("unused"), b.NumberLiteral(5)),
	})

	st := buildState([]ir.Statement{decl})
	p := dce.New(dce.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)
	require.Empty(t, st.Graph.Blocks[st.Graph.EntryId()].Stmts)
}

func TestUnusedVariableWithSideEffectPreservesCall(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	call := b.Call(b.Identifier("sideEffect"), nil, false)
	decl := b.VariableDeclaration(ir.DeclLet, []*ir.Declarator{
		b.Declarator(b.IdentifierPattern("unused"), call),
	})

	st := buildState([]ir.Statement{decl})
	p := dce.New(dce.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	stmts := st.Graph.Blocks[st.Graph.EntryId()].Stmts
	require.Len(t, stmts, 1)
	exprStmt, ok := stmts[0].(*ir.ExpressionStatement)
	require.True(t, ok)
	_, isCall := exprStmt.Expr.(*ir.Call)
	require.True(t, isCall)
}

func TestUsedVariableSurvives(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	decl := b.VariableDeclaration(ir.DeclLet, []*ir.Declarator{
		b.Declarator(b.IdentifierPattern("x"), b.NumberLiteral(5)),
	})
	use := b.Return(b.Identifier("x"))

	st := buildState([]ir.Statement{decl, use})
	p := dce.New(dce.DefaultOptions())
	_, err := p.Run(context.Background(), st)
	require.NoError(t, err)

	stmts := st.Graph.Blocks[st.Graph.EntryId()].Stmts
	require.Len(t, stmts, 1)
}

func TestUnreachableBlockCleared(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	ret := b.Return(b.NumberLiteral(1))
	afterReturn := b.ExpressionStatement(b.Call(b.Identifier("neverRuns"), nil, false))

	st := buildState([]ir.Statement{ret, afterReturn})
	p := dce.New(dce.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	for id, blk := range st.Graph.Blocks {
		if id == st.Graph.EntryId() || id == st.Graph.ExitId() {
			continue
		}
		for _, s := range blk.Stmts {
			if es, ok := s.(*ir.ExpressionStatement); ok {
				if call, ok := es.Expr.(*ir.Call); ok {
					if callee, ok := call.Callee.(*ir.Identifier); ok {
						require.NotEqual(t, "neverRuns", callee.Name)
					}
				}
			}
		}
	}
}

func TestUnusedNonSelfReferentialFunctionRemoved(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	fn := b.FunctionDeclaration(b.Identifier("helper"), nil, b.Block([]ir.Statement{b.Return(b.NumberLiteral(1))}), false, false)

	st := buildState([]ir.Statement{fn})
	p := dce.New(dce.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)
	require.Empty(t, st.Graph.Blocks[st.Graph.EntryId()].Stmts)
}

func TestValidateRejectsBadMaxIterations(t *testing.T) {
	t.Parallel()

	opts := dce.DefaultOptions()
	opts.MaxIterations = 0
	require.Error(t, opts.Validate())
}
