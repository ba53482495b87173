// Package ssa converts a control-flow graph's blocks into static single assignment
// form: placing phi nodes at the dominance frontier of each variable's definition
// sites, renaming every read/write to a versioned identifier, and recording the
// use-def chain that links each read back to its unique reaching definition
// (spec.md §4.3). Destroy reverses the transform for code that must leave the SSA
// world again (the printer, or any external pass that cannot operate on phis).
package ssa

import (
	"sort"

	"go.uber.org/jsdeobf/cfg"
	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/util/orderedmap"
)

// Def identifies the unique definition that reaches a given SSA read: either an
// ordinary statement/expression (Site != nil) or a Phi (Phi != nil), never both.
type Def struct {
	Variable string
	Version  ids.SSAVersion
	Block    ir.BlockId
	Site     ir.Node
	Phi      *ir.Phi
}

// Program is the result of SSA construction: the same graph, mutated in place so
// every variable read is now an *ir.SSAIdentifier, plus the phi nodes inserted per
// block and the use-def chain from each versioned read to its Def.
type Program struct {
	Graph *cfg.Graph

	// Phis holds, per block, the phi nodes placed at that block in variable
	// insertion order (deterministic, for stable snapshotting and tests).
	Phis map[ir.BlockId]*orderedmap.OrderedMap[string, *ir.Phi]

	// UseDef maps a versioned read's NodeId to the Def that reaches it.
	UseDef map[ids.NodeId]*Def

	// Defs maps each (variable, version) pair ever produced to its Def.
	Defs map[string]map[ids.SSAVersion]*Def
}

func (p *Program) recordDef(d *Def) {
	if p.Defs[d.Variable] == nil {
		p.Defs[d.Variable] = make(map[ids.SSAVersion]*Def)
	}
	p.Defs[d.Variable][d.Version] = d
}

// sortedStrings returns names sorted for deterministic iteration where no other
// ordering (block order, insertion order) already applies.
func sortedStrings(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
