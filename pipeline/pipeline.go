// Package pipeline orchestrates the full pipeline run: CFG construction,
// dominance, SSA construction, the rewrite-pass manager, and SSA destruction,
// producing one PipelineResult (spec.md §6). Grounded on the teacher's top-level
// `nilaway.go` run function (retrieve from dependency analyzers in order, merge,
// report) and `accumulation.Analyzer`'s explicit `Requires`-chain orchestration
// style.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/config"
	"go.uber.org/jsdeobf/diagnostic"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
	"go.uber.org/jsdeobf/passes/constprop"
	"go.uber.org/jsdeobf/passes/copyprop"
	"go.uber.org/jsdeobf/passes/dce"
	"go.uber.org/jsdeobf/passes/structuring"
	"go.uber.org/jsdeobf/ssa"
)

// PassResult is the per-pass outcome in a PipelineResult, matching spec.md §6's
// {state, changed, metrics, warnings, errors} shape (state is carried implicitly:
// every pass mutates the one shared pass.State, so PassResult records the
// before/after delta rather than a full state copy).
type PassResult struct {
	Pass     string
	Changed  bool
	Duration time.Duration
	TimedOut bool
	Err      error

	NodesVisited int
	NodesChanged int
	Memory       int64
}

// Result is the top-level outcome of one pipeline run.
type Result struct {
	Graph   *cfg.Graph
	Dom     *dominance.Info
	Program *ssa.Program

	PassResults          []PassResult
	TotalChanges         int
	TotalExecutionTimeMs int64
	Diagnostics          *diagnostic.Engine
}

// Run builds the CFG, dominance info, and SSA program for stmts, executes the
// configured passes in order, destroys SSA form, and returns the final result.
// params names the function's formal parameters (spec.md §4.3's "inputs live at
// entry"); pass nil/empty for top-level/module-scope statements.
func Run(alloc *ids.Allocator, stmts []ir.Statement, params []string, cfgOpts config.PipelineConfig) (*Result, error) {
	if err := cfgOpts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	start := time.Now()
	graph := cfg.Build(alloc, stmts)
	info := dominance.Analyze(graph)
	prog := ssa.Build(alloc, graph, info, params)

	diag := diagnostic.NewEngine()
	for _, w := range graph.Warnings {
		diag.Warn("cfg", w.Message, locOf(w.Node))
	}

	for _, issue := range ssa.Validate(prog, info) {
		if issue.Severity == ssa.SeverityError {
			diag.Error("ssa", issue.Message, nil)
		} else {
			diag.Warn("ssa", issue.Message, nil)
		}
	}
	if diag.HasErrors() {
		// An error-severity SSA invariant violation is a construction bug, not
		// something about the source program: every downstream pass assumes the
		// invariants hold, so running them against a broken SSA program would only
		// compound the damage. Report it and stop short of the pass manager.
		return &Result{
			Graph: graph, Dom: info, Program: prog, Diagnostics: diag,
			TotalExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	st := &pass.State{Graph: graph, Dom: info, Program: prog}

	manager, err := buildManager(cfgOpts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	metrics := manager.Run(context.Background(), st)

	result := &Result{Graph: graph, Dom: info, Program: prog, Diagnostics: diag}
	for _, r := range metrics.Results {
		result.PassResults = append(result.PassResults, PassResult{
			Pass: r.Pass, Changed: r.Changed, Duration: r.Duration, TimedOut: r.TimedOut, Err: r.Err,
			NodesVisited: r.NodesVisited, NodesChanged: r.NodesChanged, Memory: r.Memory,
		})
		if r.Changed {
			result.TotalChanges++
		}
		if r.Err != nil {
			diag.Error(r.Pass, r.Err.Error(), nil)
		}
	}
	for _, w := range st.Warnings {
		diag.Warn("pass", w, nil)
	}

	ssa.Destroy(prog)

	result.TotalExecutionTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

func locOf(n ir.Node) *ir.Loc {
	if n == nil {
		return nil
	}
	return n.Location()
}

// buildManager constructs a pass.Manager over the passes cfgOpts.PassOrder names
// whose Enabled flag is set; the manager decides their run order.
func buildManager(cfgOpts config.PipelineConfig) (*pass.Manager, error) {
	available := map[string]*pass.Pass{
		"constprop":   withTimeout(constprop.New(cfgOpts.ConstProp.Pass), cfgOpts.ConstProp.PassOptions),
		"copyprop":    withTimeout(copyprop.New(cfgOpts.CopyProp.Pass), cfgOpts.CopyProp.PassOptions),
		"dce":         withTimeout(dce.New(cfgOpts.DCE.Pass), cfgOpts.DCE.PassOptions),
		"structuring": withTimeout(structuring.New(cfgOpts.Structuring.Pass), cfgOpts.Structuring.PassOptions),
	}
	enabled := map[string]bool{
		"constprop":   cfgOpts.ConstProp.Enabled,
		"copyprop":    cfgOpts.CopyProp.Enabled,
		"dce":         cfgOpts.DCE.Enabled,
		"structuring": cfgOpts.Structuring.Enabled,
	}

	order := cfgOpts.PassOrder
	if len(order) == 0 {
		order = []string{"constprop", "copyprop", "dce", "structuring"}
	}

	var passes []*pass.Pass
	for _, name := range order {
		if !enabled[name] {
			continue
		}
		passes = append(passes, available[name])
	}

	manager, err := pass.NewManager(passes)
	if err != nil {
		return nil, err
	}
	manager.MaxRounds = 4
	return manager, nil
}

func withTimeout(p *pass.Pass, opts config.PassOptions) *pass.Pass {
	p.Timeout = opts.Timeout()
	return p
}
