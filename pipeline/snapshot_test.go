package pipeline_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/config"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pipeline"
)

func TestSnapshotRoundTripsThroughS2Gob(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	expr := b.Binary("+", b.NumberLiteral(2), b.Binary("*", b.NumberLiteral(3), b.NumberLiteral(4)))
	decl := b.VariableDeclaration(ir.DeclVar, []*ir.Declarator{b.Declarator(b.IdentifierPattern("x"), expr)})

	res, err := pipeline.Run(alloc, []ir.Statement{decl}, nil, config.DefaultPipelineConfig())
	require.NoError(t, err)

	snap := pipeline.NewSnapshot(res)
	encoded, err := pipeline.Encode(snap)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := pipeline.Decode(encoded)
	require.NoError(t, err)

	if diff := cmp.Diff(snap, decoded); diff != "" {
		t.Fatalf("decoded snapshot differs from original (-want +got):\n%s", diff)
	}
}

func TestSnapshotCarriesDiagnosticsText(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	brk := b.Break("")

	res, err := pipeline.Run(alloc, []ir.Statement{brk}, nil, config.DefaultPipelineConfig())
	require.NoError(t, err)

	snap := pipeline.NewSnapshot(res)
	require.Len(t, snap.Diagnostics, 1)
	require.Contains(t, snap.Diagnostics[0], "break outside any enclosing loop")
}
