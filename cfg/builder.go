package cfg

import (
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
)

// noFallthrough is returned by the internal statement builders to signal that
// control never falls off the end of the statement (Return, Throw, Break,
// Continue, or a construct all of whose paths end in one of those).
const noFallthrough ir.BlockId = -1

// noContinue marks a breakable context (a bare or labeled Switch) that does not
// accept a `continue`.
const noContinue ir.BlockId = -1

// ctxFrame is one entry of the break/continue target stack, pushed for every
// loop, switch, and labeled statement encountered during the walk.
type ctxFrame struct {
	label          string // "" for an unlabeled loop/switch frame
	breakTarget    ir.BlockId
	continueTarget ir.BlockId // noContinue if this frame cannot be `continue`d (switch, plain labeled statement)
}

type builder struct {
	g     *Graph
	stack []ctxFrame
}

// Build constructs the CFG for an ordered top-level statement sequence: a
// synthetic entry, a synthetic exit, the basic blocks formed by the block-
// formation rule, and the typed edges wired per the per-construct rules in
// spec.md §4.2. Building is deterministic: the same statement sequence always
// produces the same block set and edge set (modulo the block-id allocator, which
// resets per call since each Build uses a fresh Graph).
func Build(alloc *ids.Allocator, stmts []ir.Statement) *Graph {
	g := newGraph(alloc)
	b := &builder{g: g}

	last := b.buildSeq(g.Entry, stmts)
	if last != noFallthrough {
		g.addEdge(last, g.Exit, Unconditional, nil)
	}

	// "After building, any block with no successors that is not exit gets an
	// unconditional edge to exit."
	for id, blk := range g.Blocks {
		if id != g.Exit && len(blk.Succs) == 0 {
			g.addEdge(id, g.Exit, Unconditional, nil)
		}
	}
	return g
}

// buildSeq appends a run of statements starting at block cur, returning the block
// id execution falls through to after the last statement, or noFallthrough if the
// sequence provably never falls off its end.
func (b *builder) buildSeq(cur ir.BlockId, stmts []ir.Statement) ir.BlockId {
	for _, stmt := range stmts {
		if cur == noFallthrough {
			// Unreachable code after a terminal statement: still build it (so DCE's
			// reachability phase has something to mark dead), but it starts a fresh,
			// unconnected block rather than attaching to whatever came before.
			cur = b.g.newBlock().ID
		}
		cur = b.buildStmt(cur, stmt)
	}
	return cur
}

// buildStmt appends a single statement to block cur and returns the fallthrough
// block id (a freshly created block for control-flow constructs, or cur itself
// extended with one more plain statement).
func (b *builder) buildStmt(cur ir.BlockId, stmt ir.Statement) ir.BlockId {
	switch s := stmt.(type) {
	case *ir.If:
		return b.buildIf(cur, s)
	case *ir.While:
		return b.buildWhile(cur, s, "")
	case *ir.For:
		return b.buildFor(cur, s, "")
	case *ir.Switch:
		return b.buildSwitch(cur, s, "")
	case *ir.Try:
		return b.buildTry(cur, s)
	case *ir.Return:
		b.tail(cur, s)
		return noFallthrough
	case *ir.Throw:
		b.tail(cur, s)
		return noFallthrough
	case *ir.Break:
		return b.buildBreak(cur, s)
	case *ir.Continue:
		return b.buildContinue(cur, s)
	case *ir.Labeled:
		return b.buildLabeled(cur, s)
	default:
		b.g.Blocks[cur].Stmts = append(b.g.Blocks[cur].Stmts, stmt)
		return cur
	}
}

// tail marks stmt as the control-flow-terminating instruction of block cur.
func (b *builder) tail(cur ir.BlockId, stmt ir.Statement) {
	b.g.Blocks[cur].Tail = stmt
}

// asStmts flattens a single Statement (possibly a *ir.Block) into the statement
// list buildSeq expects, so an if/while/for/switch/try body written as either a
// single statement or a braced block is built identically.
func asStmts(s ir.Statement) []ir.Statement {
	if s == nil {
		return nil
	}
	if blk, ok := s.(*ir.Block); ok {
		return blk.Body
	}
	return []ir.Statement{s}
}

func (b *builder) buildIf(cur ir.BlockId, s *ir.If) ir.BlockId {
	b.tail(cur, s)
	next := b.g.newBlock().ID
	thenBlock := b.g.newBlock().ID
	b.g.addEdge(cur, thenBlock, TrueBranch, s.Test)

	var elseBlock ir.BlockId
	if s.Else != nil {
		elseBlock = b.g.newBlock().ID
		b.g.addEdge(cur, elseBlock, FalseBranch, s.Test)
	} else {
		b.g.addEdge(cur, next, FalseBranch, s.Test)
	}

	if end := b.buildSeq(thenBlock, asStmts(s.Then)); end != noFallthrough {
		b.g.addEdge(end, next, Unconditional, nil)
	}
	if s.Else != nil {
		if end := b.buildSeq(elseBlock, asStmts(s.Else)); end != noFallthrough {
			b.g.addEdge(end, next, Unconditional, nil)
		}
	}
	return next
}

func (b *builder) buildWhile(cur ir.BlockId, s *ir.While, label string) ir.BlockId {
	header := cur
	b.tail(header, s)
	body := b.g.newBlock().ID
	next := b.g.newBlock().ID
	b.g.addEdge(header, body, TrueBranch, s.Test)
	b.g.addEdge(header, next, FalseBranch, s.Test)

	b.stack = append(b.stack, ctxFrame{label: label, breakTarget: next, continueTarget: header})
	end := b.buildSeq(body, asStmts(s.Body))
	b.stack = b.stack[:len(b.stack)-1]

	if end != noFallthrough {
		b.g.addEdge(end, header, Unconditional, nil) // back-edge
	}
	return next
}

func (b *builder) buildFor(cur ir.BlockId, s *ir.For, label string) ir.BlockId {
	if s.Init != nil {
		switch init := s.Init.(type) {
		case ir.Statement:
			b.g.Blocks[cur].Stmts = append(b.g.Blocks[cur].Stmts, init)
		case ir.Expression:
			b.g.Blocks[cur].Stmts = append(b.g.Blocks[cur].Stmts, b.g.builder.ExpressionStatement(init))
		}
	}
	header := b.g.newBlock().ID
	b.g.addEdge(cur, header, Unconditional, nil)
	b.tail(header, s)

	body := b.g.newBlock().ID
	next := b.g.newBlock().ID
	if s.Test != nil {
		b.g.addEdge(header, body, TrueBranch, s.Test)
		b.g.addEdge(header, next, FalseBranch, s.Test)
	} else {
		b.g.addEdge(header, body, Unconditional, nil)
	}

	// "update is treated as tail of body": continue runs the update, then retests.
	updateTarget := header
	if s.Update != nil {
		updateBlock := b.g.newBlock()
		updateBlock.Stmts = append(updateBlock.Stmts, b.g.builder.ExpressionStatement(s.Update))
		b.g.addEdge(updateBlock.ID, header, Unconditional, nil)
		updateTarget = updateBlock.ID
	}

	b.stack = append(b.stack, ctxFrame{label: label, breakTarget: next, continueTarget: updateTarget})
	end := b.buildSeq(body, asStmts(s.Body))
	b.stack = b.stack[:len(b.stack)-1]

	if end != noFallthrough {
		b.g.addEdge(end, updateTarget, Unconditional, nil)
	}
	return next
}

func (b *builder) buildSwitch(cur ir.BlockId, s *ir.Switch, label string) ir.BlockId {
	b.tail(cur, s)
	next := b.g.newBlock().ID
	b.stack = append(b.stack, ctxFrame{label: label, breakTarget: next, continueTarget: noContinue})
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	caseBlocks := make([]ir.BlockId, len(s.Cases))
	defaultIdx := -1
	for i, c := range s.Cases {
		caseBlocks[i] = b.g.newBlock().ID
		if c.Test == nil {
			defaultIdx = i
		}
	}
	for i, c := range s.Cases {
		if c.Test == nil {
			continue
		}
		b.g.addEdge(cur, caseBlocks[i], TrueBranch, c.Test)
	}
	if defaultIdx >= 0 {
		b.g.addEdge(cur, caseBlocks[defaultIdx], Fallthrough, nil)
	} else {
		// No default case: falling through every test reaches the block after the switch.
		b.g.addEdge(cur, next, Fallthrough, nil)
	}

	for i, c := range s.Cases {
		end := b.buildSeq(caseBlocks[i], c.Consequent)
		if end == noFallthrough {
			continue
		}
		if i+1 < len(s.Cases) {
			b.g.addEdge(end, caseBlocks[i+1], Fallthrough, nil)
		} else {
			b.g.addEdge(end, next, Unconditional, nil)
		}
	}
	return next
}

func (b *builder) buildTry(cur ir.BlockId, s *ir.Try) ir.BlockId {
	b.tail(cur, s)
	next := b.g.newBlock().ID

	tryBlock := b.g.newBlock().ID
	b.g.addEdge(cur, tryBlock, Unconditional, nil)
	tryEnd := b.buildSeq(tryBlock, asStmts(s.Block))

	var catchEnd ir.BlockId = noFallthrough
	hasCatch := s.Catch != nil
	if hasCatch {
		catchBlock := b.g.newBlock().ID
		b.g.addEdge(cur, catchBlock, Exception, nil)
		catchEnd = b.buildSeq(catchBlock, asStmts(s.Catch.Body))
	}

	if s.Finally != nil {
		finallyBlock := b.g.newBlock().ID
		if tryEnd != noFallthrough {
			b.g.addEdge(tryEnd, finallyBlock, Unconditional, nil)
		}
		if hasCatch && catchEnd != noFallthrough {
			b.g.addEdge(catchEnd, finallyBlock, Unconditional, nil)
		}
		finallyEnd := b.buildSeq(finallyBlock, asStmts(s.Finally))
		if finallyEnd != noFallthrough {
			b.g.addEdge(finallyEnd, next, Unconditional, nil)
		}
		return next
	}

	if tryEnd != noFallthrough {
		b.g.addEdge(tryEnd, next, Unconditional, nil)
	}
	if hasCatch && catchEnd != noFallthrough {
		b.g.addEdge(catchEnd, next, Unconditional, nil)
	}
	return next
}

func (b *builder) buildLabeled(cur ir.BlockId, s *ir.Labeled) ir.BlockId {
	switch inner := s.Body.(type) {
	case *ir.While:
		return b.buildWhile(cur, inner, s.Label)
	case *ir.For:
		return b.buildFor(cur, inner, s.Label)
	case *ir.Switch:
		return b.buildSwitch(cur, inner, s.Label)
	default:
		next := b.g.newBlock().ID
		b.stack = append(b.stack, ctxFrame{label: s.Label, breakTarget: next, continueTarget: noContinue})
		end := b.buildSeq(cur, asStmts(s.Body))
		b.stack = b.stack[:len(b.stack)-1]
		if end != noFallthrough {
			b.g.addEdge(end, next, Unconditional, nil)
		}
		return next
	}
}

func (b *builder) buildBreak(cur ir.BlockId, s *ir.Break) ir.BlockId {
	b.tail(cur, s)
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if s.Label == "" || f.label == s.Label {
			b.g.addEdge(cur, f.breakTarget, Unconditional, nil)
			return noFallthrough
		}
	}
	b.g.warn("break outside any enclosing loop/switch/label; routed directly to exit", s)
	b.g.addEdge(cur, b.g.Exit, Unconditional, nil)
	return noFallthrough
}

func (b *builder) buildContinue(cur ir.BlockId, s *ir.Continue) ir.BlockId {
	b.tail(cur, s)
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if f.continueTarget == noContinue {
			if s.Label != "" && f.label == s.Label {
				break // labeled continue naming a non-loop (e.g. a switch): malformed
			}
			continue
		}
		if s.Label == "" || f.label == s.Label {
			b.g.addEdge(cur, f.continueTarget, Unconditional, nil)
			return noFallthrough
		}
	}
	b.g.warn("continue outside any enclosing loop; routed directly to exit", s)
	b.g.addEdge(cur, b.g.Exit, Unconditional, nil)
	return noFallthrough
}
