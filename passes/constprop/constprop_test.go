package constprop_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/passes/constprop"
	"go.uber.org/jsdeobf/ssa"
)

func buildState(stmts []ir.Statement) (*pass.State, *ids.Allocator) {
	alloc := ids.NewAllocator()
	g := cfg.Build(alloc, stmts)
	info := dominance.Analyze(g)
	prog := ssa.Build(alloc, g, info, nil)
	return &pass.State{Graph: g, Dom: info, Program: prog}, alloc
}

func TestArithmeticFoldsToLiteral(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	expr := b.Binary("+", b.NumberLiteral(2), b.Binary("*", b.NumberLiteral(3), b.NumberLiteral(4)))
	decl := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("x"), expr)})

	g := cfg.Build(alloc, []ir.Statement{decl})
	info := dominance.Analyze(g)
	prog := ssa.Build(alloc, g, info, nil)
	st := &pass.State{Graph: g, Dom: info, Program: prog}

	p := constprop.New(constprop.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	got := g.Blocks[g.EntryId()].Stmts[0].(*ir.VariableDeclaration).Declarators[0].Init.(*ir.Literal)
	require.Equal(t, ir.LiteralNumber, got.ValueKind)
	require.Equal(t, 14.0, got.Value)
}

func TestDivisionByZeroStaysUnrewritten(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	expr := b.Binary("/", b.NumberLiteral(1), b.NumberLiteral(0))
	decl := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("x"), expr)})

	st, _ := buildState([]ir.Statement{decl})
	p := constprop.New(constprop.DefaultOptions())
	_, err := p.Run(context.Background(), st)
	require.NoError(t, err)

	got := st.Graph.Blocks[st.Graph.EntryId()].Stmts[0].(*ir.VariableDeclaration).Declarators[0].Init
	_, isLiteral := got.(*ir.Literal)
	require.False(t, isLiteral, "division by zero must stay Top, never rewritten")
}

func TestDisabledFamilyBlocksRewrite(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	expr := b.Binary("+", b.NumberLiteral(2), b.NumberLiteral(3))
	decl := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("x"), expr)})

	st, _ := buildState([]ir.Statement{decl})
	opts := constprop.DefaultOptions()
	opts.Families.Arithmetic = false
	p := constprop.New(opts)
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestVariableReadRewrittenToLiteral(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	decl := b.VariableDeclaration(ir.DeclLet, []*ir.Declarator{
		b.Declarator(b.IdentifierPattern("x"), b.NumberLiteral(5)),
	})
	use := b.ExpressionStatement(b.Call(b.Identifier("print"), []ir.Expression{b.Identifier("x")}, false))

	st, _ := buildState([]ir.Statement{decl, use})
	p := constprop.New(constprop.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	call := st.Graph.Blocks[st.Graph.EntryId()].Stmts[1].(*ir.ExpressionStatement).Expr.(*ir.Call)
	lit, ok := call.Args[0].(*ir.Literal)
	require.True(t, ok)
	require.Equal(t, 5.0, lit.Value)
}

func TestStrictEqualDistinguishesNullFromUndefined(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	expr := b.Binary("===", b.Unary("void", b.NumberLiteral(0), true), b.NullLiteral())
	decl := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("x"), expr)})

	st, _ := buildState([]ir.Statement{decl})
	p := constprop.New(constprop.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	got := st.Graph.Blocks[st.Graph.EntryId()].Stmts[0].(*ir.VariableDeclaration).Declarators[0].Init.(*ir.Literal)
	require.Equal(t, ir.LiteralBool, got.ValueKind)
	require.Equal(t, false, got.Value, "undefined === null must be false even though both fold to a constant")
}

func TestLooseEqualNullEqualsUndefinedButNotZero(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	nullEqUndefined := b.Binary("==", b.NullLiteral(), b.Unary("void", b.NumberLiteral(0), true))
	declA := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("a"), nullEqUndefined)})
	nullEqZero := b.Binary("==", b.NullLiteral(), b.NumberLiteral(0))
	declB := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("b"), nullEqZero)})

	st, _ := buildState([]ir.Statement{declA, declB})
	p := constprop.New(constprop.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	stmts := st.Graph.Blocks[st.Graph.EntryId()].Stmts
	gotA := stmts[0].(*ir.VariableDeclaration).Declarators[0].Init.(*ir.Literal)
	gotB := stmts[1].(*ir.VariableDeclaration).Declarators[0].Init.(*ir.Literal)
	require.Equal(t, true, gotA.Value, "null == undefined is JS's one cross-type loose-equality special case")
	require.Equal(t, false, gotB.Value, "null == 0 must stay false, unlike null's own ToNumber coercion")
}

func TestVoidRewrittenAsUndefinedIdentifierNotNullLiteral(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	expr := b.Unary("void", b.NumberLiteral(0), true)
	decl := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("x"), expr)})
	use := b.ExpressionStatement(b.Call(b.Identifier("print"), []ir.Expression{b.Identifier("x")}, false))

	st, _ := buildState([]ir.Statement{decl, use})
	p := constprop.New(constprop.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	call := st.Graph.Blocks[st.Graph.EntryId()].Stmts[1].(*ir.ExpressionStatement).Expr.(*ir.Call)
	id, ok := call.Args[0].(*ir.Identifier)
	require.True(t, ok, "a folded void expression must come back as the `undefined` identifier, not a null literal")
	require.Equal(t, "undefined", id.Name)
}

func TestJSTypeofDistinguishesNullFromUndefined(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	typeofNull := b.Unary("typeof", b.NullLiteral(), true)
	declA := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("a"), typeofNull)})
	typeofUndefined := b.Unary("typeof", b.Unary("void", b.NumberLiteral(0), true), true)
	declB := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("b"), typeofUndefined)})

	st, _ := buildState([]ir.Statement{declA, declB})
	p := constprop.New(constprop.DefaultOptions())
	changed, err := p.Run(context.Background(), st)
	require.NoError(t, err)
	require.True(t, changed)

	stmts := st.Graph.Blocks[st.Graph.EntryId()].Stmts
	gotA := stmts[0].(*ir.VariableDeclaration).Declarators[0].Init.(*ir.Literal)
	gotB := stmts[1].(*ir.VariableDeclaration).Declarators[0].Init.(*ir.Literal)
	require.Equal(t, "object", gotA.Value, "typeof null is JS's famous object misnomer")
	require.Equal(t, "undefined", gotB.Value)
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	t.Parallel()

	opts := constprop.DefaultOptions()
	opts.Threshold = 1.5
	require.Error(t, opts.Validate())
}
