// Package config hosts the per-pass configuration surface spec.md §6/§7 describes:
// the {enabled, maxIterations, timeoutMs, debug, metricsCollection} envelope every
// pass exposes, plus each pass's own option struct. Grounded on the teacher's
// per-analyzer options pattern (assertion/annotation accept options via their
// Analyzer.Flags) and config/const.go's convention of hosting tunable,
// non-user-facing parameters in one file; config.Validate raising errors at
// construction time is a direct requirement of spec.md §7 rather than a teacher
// precedent. Loading these values from a file or CLI flags is out of scope
// (spec.md §1's "configuration loader").
package config

import (
	"fmt"
	"time"

	"go.uber.org/jsdeobf/passes/constprop"
	"go.uber.org/jsdeobf/passes/copyprop"
	"go.uber.org/jsdeobf/passes/dce"
	"go.uber.org/jsdeobf/passes/structuring"
)

// validator is implemented by every pass-specific Options type.
type validator interface {
	Validate() error
}

// PassOptions is the envelope every pass exposes regardless of what it does,
// matching spec.md §6's "each pass exposes {enabled, maxIterations, timeoutMs,
// debug, metricsCollection}".
type PassOptions struct {
	Enabled           bool
	MaxIterations     int
	TimeoutMs         int
	Debug             bool
	MetricsCollection bool
}

// DefaultPassOptions returns an enabled pass envelope with conservative bounds.
func DefaultPassOptions() PassOptions {
	return PassOptions{Enabled: true, MaxIterations: 100, TimeoutMs: 5000, Debug: false, MetricsCollection: true}
}

// Validate checks the envelope fields that are independent of which pass they
// belong to.
func (o PassOptions) Validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("config: maxIterations must be >= 1, got %d", o.MaxIterations)
	}
	if o.TimeoutMs < 1 {
		return fmt.Errorf("config: timeoutMs must be >= 1, got %d", o.TimeoutMs)
	}
	return nil
}

// Timeout converts TimeoutMs to a time.Duration for wiring into pass.Pass.Timeout.
func (o PassOptions) Timeout() time.Duration {
	return time.Duration(o.TimeoutMs) * time.Millisecond
}

// ConstPropOptions bundles the common envelope with constprop's own tunables.
// Pass is a named field, not embedded: both PassOptions and constprop.Options
// declare a MaxIterations field, and embedding both would make that selector
// ambiguous.
type ConstPropOptions struct {
	PassOptions
	Pass constprop.Options
}

// DefaultConstPropOptions matches spec.md §4.5's stated defaults.
func DefaultConstPropOptions() ConstPropOptions {
	return ConstPropOptions{PassOptions: DefaultPassOptions(), Pass: constprop.DefaultOptions()}
}

func (o ConstPropOptions) Validate() error {
	if err := o.PassOptions.Validate(); err != nil {
		return err
	}
	return o.Pass.Validate()
}

// CopyPropOptions bundles the common envelope with copyprop's own tunables.
type CopyPropOptions struct {
	PassOptions
	Pass copyprop.Options
}

// DefaultCopyPropOptions matches spec.md §4.6's stated defaults.
func DefaultCopyPropOptions() CopyPropOptions {
	return CopyPropOptions{PassOptions: DefaultPassOptions(), Pass: copyprop.DefaultOptions()}
}

func (o CopyPropOptions) Validate() error {
	if err := o.PassOptions.Validate(); err != nil {
		return err
	}
	return o.Pass.Validate()
}

// DCEOptions bundles the common envelope with dce's own tunables.
type DCEOptions struct {
	PassOptions
	Pass dce.Options
}

// DefaultDCEOptions matches spec.md §4.7's stated defaults.
func DefaultDCEOptions() DCEOptions {
	return DCEOptions{PassOptions: DefaultPassOptions(), Pass: dce.DefaultOptions()}
}

func (o DCEOptions) Validate() error {
	if err := o.PassOptions.Validate(); err != nil {
		return err
	}
	return o.Pass.Validate()
}

// StructuringOptions bundles the common envelope with structuring's own toggles.
type StructuringOptions struct {
	PassOptions
	Pass structuring.Options
}

// DefaultStructuringOptions enables every rewrite.
func DefaultStructuringOptions() StructuringOptions {
	return StructuringOptions{PassOptions: DefaultPassOptions(), Pass: structuring.DefaultOptions()}
}

func (o StructuringOptions) Validate() error {
	if err := o.PassOptions.Validate(); err != nil {
		return err
	}
	return o.Pass.Validate()
}

// PipelineConfig is the full set of per-pass configuration for one pipeline run.
// PassOrder, when non-empty, selects which passes are handed to the manager; the
// manager still runs them in its own dependency order with a lexicographic
// tie-break, so the sequence within PassOrder does not change the run order. An
// unknown pass name in it is a configuration error caught by Validate (spec.md
// §7's "unknown dependency").
type PipelineConfig struct {
	ConstProp   ConstPropOptions
	CopyProp    CopyPropOptions
	DCE         DCEOptions
	Structuring StructuringOptions
	PassOrder   []string
}

// DefaultPipelineConfig returns every pass enabled with its spec-mandated
// defaults, run in the order the pipeline documents (constprop, copyprop, dce,
// structuring).
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ConstProp:   DefaultConstPropOptions(),
		CopyProp:    DefaultCopyPropOptions(),
		DCE:         DefaultDCEOptions(),
		Structuring: DefaultStructuringOptions(),
		PassOrder:   []string{"constprop", "copyprop", "dce", "structuring"},
	}
}

var knownPassNames = map[string]bool{
	"constprop":   true,
	"copyprop":    true,
	"dce":         true,
	"structuring": true,
}

// Validate raises every configuration error spec.md §7 lists as caught "at
// pipeline construction time": negative/zero limits on any enabled pass, and any
// unrecognized name in PassOrder.
func (c PipelineConfig) Validate() error {
	checks := []struct {
		name    string
		enabled bool
		v       validator
	}{
		{"constprop", c.ConstProp.Enabled, c.ConstProp},
		{"copyprop", c.CopyProp.Enabled, c.CopyProp},
		{"dce", c.DCE.Enabled, c.DCE},
		{"structuring", c.Structuring.Enabled, c.Structuring},
	}
	for _, chk := range checks {
		if !chk.enabled {
			continue
		}
		if err := chk.v.Validate(); err != nil {
			return fmt.Errorf("config: invalid options for pass %q: %w", chk.name, err)
		}
	}
	for _, name := range c.PassOrder {
		if !knownPassNames[name] {
			return fmt.Errorf("config: passOrder references unknown pass %q", name)
		}
	}
	return nil
}
