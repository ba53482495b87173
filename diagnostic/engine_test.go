package diagnostic_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/diagnostic"
	"go.uber.org/jsdeobf/ir"
)

func TestEngineAccumulatesAndFormats(t *testing.T) {
	t.Parallel()

	e := diagnostic.NewEngine()
	e.Warn("constprop", "lattice did not converge", nil)
	e.Error("ssa", "use has no reaching def", &ir.Loc{StartLine: 3, StartCol: 1})

	require.True(t, e.HasErrors())
	entries := e.Entries()
	require.Len(t, entries, 2)

	formatted := e.Format()
	require.Contains(t, formatted, "[warning] constprop")
	require.Contains(t, formatted, "[error] ssa")
	require.Contains(t, formatted, "line 3, col 1")
}

func TestEngineWithoutErrorsReportsClean(t *testing.T) {
	t.Parallel()

	e := diagnostic.NewEngine()
	e.Warn("dce", "closure capture widened a liveness root", nil)
	require.False(t, e.HasErrors())
}
