// Package structuring recovers higher-level control-flow idioms that an
// obfuscator (or a compiler targeting a flat CFG) tends to flatten: an if-else
// chain that only ever assigns one target becomes a ternary, an if-else chain of
// equality tests against one discriminant becomes a switch, and a `while(true)`
// guarded by a leading `if(C) break;` becomes a natural `while(!C)` (spec.md
// §4.8). The three rewrites are independent and applied in that order to every
// block whose tail is a candidate statement.
package structuring

import (
	"context"
	"fmt"

	"go.uber.org/jsdeobf/ir"
	"go.uber.org/jsdeobf/pass"
)

// Options toggles each of the three independent rewrites.
type Options struct {
	Ternary bool
	Switch  bool
	Loop    bool
}

// DefaultOptions enables all three rewrites.
func DefaultOptions() Options {
	return Options{Ternary: true, Switch: true, Loop: true}
}

// Validate exists for symmetry with the other passes' Options; structuring has no
// numeric thresholds to range-check, so every value of Options is valid.
func (o Options) Validate() error { return nil }

// New returns the control-flow structuring pass.
func New(opts Options) *pass.Pass {
	return &pass.Pass{
		Name:         "structuring",
		Description:  "recovers ternaries, switches, and natural while loops from if-else chains",
		Dependencies: nil,
		Run: func(ctx context.Context, st *pass.State) (bool, error) {
			return run(st, opts)
		},
	}
}

func run(st *pass.State, opts Options) (bool, error) {
	b := st.Graph.Builder()
	changed := false

	for _, blk := range st.Graph.Blocks {
		st.Visited(1)
		ifStmt, isIf := blk.Tail.(*ir.If)
		if isIf && opts.Ternary {
			assign, ok, warning := matchTernary(b, ifStmt)
			if warning != "" {
				st.Warn("structuring", warning)
			}
			if ok {
				blk.Stmts = append(blk.Stmts, b.ExpressionStatement(assign))
				blk.Tail = nil
				changed = true
				st.Rewrote(1)
				continue
			}
		}
		if isIf && opts.Switch {
			sw, ok, warning := matchSwitch(b, ifStmt)
			if warning != "" {
				st.Warn("structuring", warning)
			}
			if ok {
				blk.Tail = sw
				changed = true
				st.Rewrote(1)
				continue
			}
		}
		if whileStmt, ok := blk.Tail.(*ir.While); ok && opts.Loop {
			rewritten, ok, warning := matchLoop(b, whileStmt)
			if warning != "" {
				st.Warn("structuring", warning)
			}
			if ok {
				blk.Tail = rewritten
				changed = true
				st.Rewrote(1)
			}
		}
	}

	return changed, nil
}

// bodyStmts flattens a statement used as an If/While arm into its constituent
// statements: a *ir.Block contributes its Body, anything else contributes itself
// as a single-element sequence (the builder may hand either shape back depending
// on whether the original source wrapped the arm in braces).
func bodyStmts(s ir.Statement) []ir.Statement {
	if s == nil {
		return nil
	}
	if blk, ok := s.(*ir.Block); ok {
		return blk.Body
	}
	return []ir.Statement{s}
}

// singleAssign reports whether s is exactly one statement that is a plain `=`
// assignment to a bare identifier, the shape every ternary/switch arm must have
// per spec.md §4.8.
func singleAssign(s ir.Statement) (*ir.Assignment, bool) {
	stmts := bodyStmts(s)
	if len(stmts) != 1 {
		return nil, false
	}
	es, ok := stmts[0].(*ir.ExpressionStatement)
	if !ok {
		return nil, false
	}
	assign, ok := es.Expr.(*ir.Assignment)
	if !ok || assign.Op != "=" {
		return nil, false
	}
	if _, ok := assign.LHS.(*ir.IdentifierPattern); !ok {
		return nil, false
	}
	return assign, true
}

// matchTernary walks an if/else-if/.../else chain rooted at root. It succeeds
// only when every arm (including the trailing else) is a single assignment to
// the same target identifier and the chain has at least two arms — a plain
// if/else (one test, two arms) already qualifies. The third return value is a
// non-empty warning when the chain reached full single-assignment shape but was
// declined for safety (spec.md §7's "transformation safety failure": rewriting
// it would silently change which variable a path's side effect lands in).
func matchTernary(b *ir.Builder, root *ir.If) (*ir.Assignment, bool, string) {
	var tests []ir.Expression
	var arms []*ir.Assignment

	cur := root
	for {
		thenAssign, ok := singleAssign(cur.Then)
		if !ok {
			return nil, false, ""
		}
		tests = append(tests, cur.Test)
		arms = append(arms, thenAssign)

		if cur.Else == nil {
			return nil, false, ""
		}
		if next, ok := cur.Else.(*ir.If); ok {
			cur = next
			continue
		}
		elseAssign, ok := singleAssign(cur.Else)
		if !ok {
			return nil, false, ""
		}
		arms = append(arms, elseAssign)
		break
	}

	if len(arms) < 2 {
		return nil, false, ""
	}

	target := arms[0].LHS.(*ir.IdentifierPattern).Name
	for _, a := range arms[1:] {
		if a.LHS.(*ir.IdentifierPattern).Name != target {
			return nil, false, fmt.Sprintf(
				"ternary recovery declined: every arm assigns a single target, but not the same one (%q vs %q); rewriting would change which variable each path's side effect lands in",
				target, a.LHS.(*ir.IdentifierPattern).Name)
		}
	}

	expr := arms[len(arms)-1].RHS
	for i := len(tests) - 1; i >= 0; i-- {
		expr = b.Conditional(tests[i], arms[i].RHS, expr)
	}
	return b.Assignment("=", arms[0].LHS, expr), true, ""
}

// equalityDiscriminant reports whether test is `D op value` for op in {===, ==}
// and returns D, value, and op.
func equalityDiscriminant(test ir.Expression) (discriminant, value ir.Expression, op string, ok bool) {
	bin, isBin := test.(*ir.Binary)
	if !isBin {
		return nil, nil, "", false
	}
	if bin.Op != "===" && bin.Op != "==" {
		return nil, nil, "", false
	}
	return bin.Left, bin.Right, bin.Op, true
}

// matchSwitch walks an if/else-if/.../else chain rooted at root, recognizing a
// run of equality tests against one common discriminant (spec.md §4.8). Mixed
// comparison operators, or a discriminant that changes partway through the
// chain, disqualify the whole match. The rewrite never inserts a trailing
// `break` (spec.md §4.8, §9 open item), so on a match every case after the one
// that fires also runs, by switch fallthrough — behavior the original if-chain
// never had, since exactly one of its branches would execute. The third return
// value carries that caveat as a warning whenever the rewrite fires.
func matchSwitch(b *ir.Builder, root *ir.If) (*ir.Switch, bool, string) {
	var discriminant ir.Expression
	var op string
	var cases []*ir.SwitchCase
	var defaultCase *ir.SwitchCase

	cur := root
	for {
		d, value, curOp, ok := equalityDiscriminant(cur.Test)
		if !ok {
			return nil, false, ""
		}
		if discriminant == nil {
			discriminant, op = d, curOp
		} else if curOp != op || !ir.Equal(d, discriminant) {
			return nil, false, ""
		}
		cases = append(cases, b.SwitchCase(value, bodyStmts(cur.Then)))

		if cur.Else == nil {
			break
		}
		if next, ok := cur.Else.(*ir.If); ok {
			cur = next
			continue
		}
		defaultCase = b.SwitchCase(nil, bodyStmts(cur.Else))
		break
	}

	if len(cases) < 3 {
		return nil, false, ""
	}
	if defaultCase != nil {
		cases = append(cases, defaultCase)
	}
	warning := fmt.Sprintf(
		"switch recovery: rewrote a %d-arm if-chain into a switch with no break inserted; "+
			"a matching case now falls through into every case after it, unlike the original if-chain", len(cases))
	return b.Switch(discriminant, cases), true, warning
}

// isBreakGuard reports whether s is `if (C) break;` with no else, the guard
// shape loop recovery removes.
func isBreakGuard(s ir.Statement) (cond ir.Expression, ok bool) {
	ifStmt, isIf := s.(*ir.If)
	if !isIf || ifStmt.Else != nil {
		return nil, false
	}
	thenStmts := bodyStmts(ifStmt.Then)
	if len(thenStmts) != 1 {
		return nil, false
	}
	brk, isBreak := thenStmts[0].(*ir.Break)
	if !isBreak || brk.Label != "" {
		return nil, false
	}
	return ifStmt.Test, true
}

func isLiteralTrue(e ir.Expression) bool {
	lit, ok := e.(*ir.Literal)
	return ok && lit.ValueKind == ir.LiteralBool && lit.Value == true
}

// matchLoop rewrites `while(true){ if(C) break; rest... }` into `while(!C){
// rest... }`. The guard must be the very first statement of the body so no
// control-flow exit can occur before it is evaluated (DESIGN.md's resolution of
// the early-return hazard named in spec.md §9). When a break-guard shape exists
// but not in first position, rewriting would move C's evaluation earlier than
// the statements currently ahead of it; the third return value warns instead of
// silently doing nothing when those statements have an observable side effect.
func matchLoop(b *ir.Builder, w *ir.While) (*ir.While, bool, string) {
	if !isLiteralTrue(w.Test) {
		return nil, false, ""
	}
	body := bodyStmts(w.Body)
	if len(body) == 0 {
		return nil, false, ""
	}
	cond, ok := isBreakGuard(body[0])
	if !ok {
		if idx := laterBreakGuardIndex(body); idx > 0 && anyHasSideEffect(body[:idx]) {
			return nil, false, fmt.Sprintf(
				"loop recovery declined: break guard found at statement %d, not first; "+
					"the %d statement(s) ahead of it have a side effect, so hoisting the guard's condition would reorder them", idx, idx)
		}
		return nil, false, ""
	}
	return b.While(b.Unary("!", cond, true), b.Block(body[1:])), true, ""
}

// laterBreakGuardIndex returns the index of the first break-guard-shaped
// statement in body, or -1 if none exists.
func laterBreakGuardIndex(body []ir.Statement) int {
	for i, s := range body {
		if _, ok := isBreakGuard(s); ok {
			return i
		}
	}
	return -1
}

// anyHasSideEffect reports whether any statement in stmts can be observed
// beyond producing a value: a call/new, an assignment, or an increment/decrement.
func anyHasSideEffect(stmts []ir.Statement) bool {
	for _, s := range stmts {
		found := false
		ir.Walk(s, func(n ir.Node) bool {
			switch n.(type) {
			case *ir.Call, *ir.New, *ir.Assignment, *ir.Update:
				found = true
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}
