package pipeline_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/jsdeobf/config"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pipeline"
	"golang.org/x/tools/txtar"
)

// goldenDiagnostics bundles the expected diagnostic.Engine.Format() text for
// every fixture below into one archive, keyed by fixture name, the way the
// teacher bundles multiple named testdata files into one golden file instead
// of one file per case.
var goldenDiagnostics = txtar.Parse([]byte(`
-- break-outside-loop --
[warning] cfg: break outside any enclosing loop/switch/label; routed directly to exit
-- continue-outside-loop --
[warning] cfg: continue outside any enclosing loop; routed directly to exit
`))

func goldenFile(t *testing.T, name string) string {
	t.Helper()
	for _, f := range goldenDiagnostics.Files {
		if f.Name == name {
			return strings.TrimSpace(string(f.Data))
		}
	}
	t.Fatalf("no golden fixture named %q", name)
	return ""
}

func TestBreakOutsideLoopProducesGoldenDiagnostic(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	brk := b.Break("")

	res, err := pipeline.Run(alloc, []ir.Statement{brk}, nil, config.DefaultPipelineConfig())
	require.NoError(t, err)

	require.Equal(t, goldenFile(t, "break-outside-loop"), res.Diagnostics.Format())
}

func TestContinueOutsideLoopProducesGoldenDiagnostic(t *testing.T) {
	t.Parallel()

	alloc := ids.NewAllocator()
	b := ir.NewBuilder(alloc)
	cont := b.Continue("")

	res, err := pipeline.Run(alloc, []ir.Statement{cont}, nil, config.DefaultPipelineConfig())
	require.NoError(t, err)

	require.Equal(t, goldenFile(t, "continue-outside-loop"), res.Diagnostics.Format())
}
