package ir

import "go.uber.org/jsdeobf/ids"

// Phi is the pseudo-instruction the SSA engine places at control-flow joins: it
// selects a variable's version based on which predecessor block control arrived
// from. Phi is intentionally not an Expression, Statement, or Pattern — SSA
// construction keeps it per CFG block in ssa.Program.Phis, outside the statement
// tree (spec.md §3's CFG invariant: every Phi in a
// block with N predecessors has exactly N operands, keyed by predecessor BlockId).
type Phi struct {
	NodeBase
	Variable string
	Target   ids.SSAVersion
	// Operands maps each predecessor BlockId to the version of Variable live at the
	// end of that predecessor. During φ-placement (before renaming completes) an
	// operand may be temporarily absent; renaming must fill in every predecessor
	// before the CFG invariant holds.
	Operands map[BlockId]ids.SSAVersion
}

func (*Phi) Kind() Kind { return KindPhi }

// NewPhi allocates a Phi with an empty operand map for the given variable and
// target version. Operands are filled in during SSA renaming (inside ssa.Build).
func NewPhi(id ids.NodeId, variable string, target ids.SSAVersion) *Phi {
	return &Phi{
		NodeBase: NodeBase{Id: id},
		Variable: variable,
		Target:   target,
		Operands: make(map[BlockId]ids.SSAVersion),
	}
}

// HasOperandFor reports whether p already has an operand recorded for pred.
func (p *Phi) HasOperandFor(pred BlockId) bool {
	_, ok := p.Operands[pred]
	return ok
}
