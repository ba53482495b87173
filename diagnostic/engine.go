// Package diagnostic accumulates the warnings and errors a pipeline run produces
// and formats them for a human reader. It mirrors the teacher's diagnostic engine's
// accumulate-then-format shape, stripped of the go/token position-resolution
// machinery: positions here are ir.Loc values carried directly on IR nodes, not
// token.Pos offsets resolved against a file set.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/jsdeobf/ir"
)

// Severity discriminates a Warning from an Error entry.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Entry is one diagnostic raised by a named pass, optionally anchored to a source
// location when it was produced while inspecting a specific IR node.
type Entry struct {
	Pass     string
	Severity Severity
	Message  string
	Loc      *ir.Loc
}

func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", e.Severity, e.Pass, e.Message)
	if e.Loc != nil {
		fmt.Fprintf(&b, " (line %d, col %d)", e.Loc.StartLine, e.Loc.StartCol)
	}
	return b.String()
}

// Engine is the accumulator every pipeline run owns: passes and the manager append
// entries to it as they run, and the caller formats the final report once the run
// completes.
type Engine struct {
	entries []Entry
}

// NewEngine returns an empty diagnostic engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Warn records a warning-level entry.
func (e *Engine) Warn(pass, message string, loc *ir.Loc) {
	e.entries = append(e.entries, Entry{Pass: pass, Severity: SeverityWarning, Message: message, Loc: loc})
}

// Error records an error-level entry.
func (e *Engine) Error(pass, message string, loc *ir.Loc) {
	e.entries = append(e.entries, Entry{Pass: pass, Severity: SeverityError, Message: message, Loc: loc})
}

// Entries returns every recorded entry, sorted by pass name and then by insertion
// order within that pass (stable sort preserves the latter).
func (e *Engine) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pass < out[j].Pass })
	return out
}

// HasErrors reports whether any error-level entry was recorded.
func (e *Engine) HasErrors() bool {
	for _, entry := range e.entries {
		if entry.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Format renders every recorded entry as multi-line human-readable text, one
// entry per line, grouped implicitly by the sort order of Entries.
func (e *Engine) Format() string {
	entries := e.Entries()
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.String()
	}
	return strings.Join(lines, "\n")
}
