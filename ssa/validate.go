package ssa

import (
	"fmt"

	"go.uber.org/jsdeobf/dominance"
	"go.uber.org/jsdeobf/ir"
)

// Severity classifies a Validate finding per spec.md §7: an unresolved global or
// builtin read is a warning (ordinary, expected on any program that touches
// outer scope), while a malformed def or phi is an error, since it indicates a
// bug in SSA construction rather than anything about the source program.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one SSA invariant violation found by Validate.
type Issue struct {
	Severity Severity
	Message  string
	Block    ir.BlockId
}

// Validate checks prog against the SSA invariants spec.md §4.3/§7/§8 require: a
// phi carries exactly one operand per predecessor, every recorded def has
// exactly one defining site (a statement/expression or a phi, never both or
// neither), and every versioned read's recorded def dominates the block of the
// read. A bare (unversioned) identifier left over from renaming has no local
// reaching definition — it is a global or builtin, reported as a warning rather
// than an error. Callers should abort SSA-dependent passes on any error-severity
// issue; warnings are informational and do not block the pipeline.
func Validate(prog *Program, info *dominance.Info) []Issue {
	var issues []Issue
	issues = append(issues, validatePhiOperands(prog)...)
	issues = append(issues, validateDefShapes(prog)...)
	issues = append(issues, validateReachingDefs(prog, info)...)
	return issues
}

func validatePhiOperands(prog *Program) []Issue {
	var issues []Issue
	for blockId, phis := range prog.Phis {
		preds := prog.Graph.Preds(blockId)
		for _, pair := range phis.Pairs {
			phi := pair.Value
			if len(phi.Operands) != len(preds) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Block:    blockId,
					Message: fmt.Sprintf("phi for %q in block %d has %d operand(s) for %d predecessor(s)",
						phi.Variable, blockId, len(phi.Operands), len(preds)),
				})
				continue
			}
			for _, p := range preds {
				if !phi.HasOperandFor(p) {
					issues = append(issues, Issue{
						Severity: SeverityError,
						Block:    blockId,
						Message:  fmt.Sprintf("phi for %q in block %d has no operand from predecessor %d", phi.Variable, blockId, p),
					})
				}
			}
		}
	}
	return issues
}

func validateDefShapes(prog *Program) []Issue {
	var issues []Issue
	for v, versions := range prog.Defs {
		for version, def := range versions {
			if (def.Site == nil) == (def.Phi == nil) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Block:    def.Block,
					Message:  fmt.Sprintf("%s@%s has an invalid def in block %d: expected exactly one of a site or a phi", v, version, def.Block),
				})
			}
		}
	}
	return issues
}

// validateReachingDefs walks every block's statements and tail, checking that
// each versioned read's recorded def dominates the block of the read and
// flagging any unversioned read as a global/builtin warning.
func validateReachingDefs(prog *Program, info *dominance.Info) []Issue {
	var issues []Issue
	for blockId, blk := range prog.Graph.Blocks {
		for _, s := range blk.Stmts {
			issues = append(issues, checkReads(prog, info, blockId, s)...)
		}
		if blk.Tail != nil {
			issues = append(issues, checkReads(prog, info, blockId, blk.Tail)...)
		}
	}
	return issues
}

func checkReads(prog *Program, info *dominance.Info, blockId ir.BlockId, n ir.Node) []Issue {
	var issues []Issue
	ir.Walk(n, func(node ir.Node) bool {
		switch id := node.(type) {
		case *ir.SSAIdentifier:
			def, ok := prog.UseDef[id.ID()]
			if !ok {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Block:    blockId,
					Message:  fmt.Sprintf("%s@%s has no recorded reaching definition", id.Name, id.Version),
				})
				return true
			}
			if !info.Dominates(def.Block, blockId) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Block:    blockId,
					Message: fmt.Sprintf("%s@%s's definition in block %d does not dominate its use in block %d",
						id.Name, id.Version, def.Block, blockId),
				})
			}
		case *ir.Identifier:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Block:    blockId,
				Message:  fmt.Sprintf("%s has no local reaching definition; treated as a global or builtin", id.Name),
			})
		}
		return true
	})
	return issues
}
