package ids_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/ids"
)

func TestAllocatorMonotonic(t *testing.T) {
	t.Parallel()

	a := ids.NewAllocator()
	n1 := a.NextNodeId()
	n2 := a.NextNodeId()
	require.NotEqual(t, n1, n2)
	require.Equal(t, ids.NodeId(0), n1)
	require.Equal(t, ids.NodeId(1), n2)
}

func TestAllocatorScopedInstances(t *testing.T) {
	t.Parallel()

	a1 := ids.NewAllocator()
	a2 := ids.NewAllocator()

	require.Equal(t, a1.NextNodeId(), a2.NextNodeId(), "two fresh allocators start from the same origin without colliding across pipelines")
}

func TestNextVersionForPerVariable(t *testing.T) {
	t.Parallel()

	a := ids.NewAllocator()
	require.Equal(t, ids.SSAVersion(0), a.NextVersionFor("x"))
	require.Equal(t, ids.SSAVersion(1), a.NextVersionFor("x"))
	require.Equal(t, ids.SSAVersion(0), a.NextVersionFor("y"), "distinct variables get independent version sequences")
}
