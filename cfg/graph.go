// Package cfg builds the control-flow graph from an ordered sequence of IR
// statements: a synthetic entry and exit block, the basic blocks of non-branching
// statements in between, and the typed edges connecting them (spec.md §4.2).
package cfg

import (
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
)

// EdgeKind discriminates why two blocks are connected.
type EdgeKind string

const (
	Unconditional EdgeKind = "unconditional"
	TrueBranch    EdgeKind = "true"
	FalseBranch   EdgeKind = "false"
	Exception     EdgeKind = "exception"
	Fallthrough   EdgeKind = "fallthrough"
)

// Edge is a typed connection between two blocks, carrying the originating
// condition expression when the edge is a TrueBranch/FalseBranch (nil otherwise).
type Edge struct {
	From, To ir.BlockId
	Kind     EdgeKind
	Cond     ir.Expression
}

// Block is a maximal straight-line statement sequence with a single entry and
// single exit. Stmts holds the accumulated non-control-flow statements; Tail, when
// non-nil, is the control-flow statement (If, While, For, Switch, Try, Return,
// Break, Continue, Throw) that ends the block, per spec.md §4.2's block-formation
// rule. Entry and Exit are sentinel blocks with empty Stmts and nil Tail.
type Block struct {
	ID    ir.BlockId
	Stmts []ir.Statement
	Tail  ir.Statement
	Succs []ir.BlockId
	Preds []ir.BlockId
}

// Warning is a non-fatal issue found while building the graph (spec.md §4.2's
// "failure semantics": a malformed IR is reported as a warning, not an error).
type Warning struct {
	Message string
	Node    ir.Node
}

// Graph is a control-flow graph: a synthetic Entry, a synthetic Exit, zero or more
// basic blocks, and the typed edges between them.
type Graph struct {
	Entry  ir.BlockId
	Exit   ir.BlockId
	Blocks map[ir.BlockId]*Block
	Edges  []*Edge

	Warnings []Warning

	nextID  ir.BlockId
	builder *ir.Builder
}

func newGraph(alloc *ids.Allocator) *Graph {
	g := &Graph{Blocks: make(map[ir.BlockId]*Block), builder: ir.NewBuilder(alloc)}
	g.Entry = g.newBlock().ID
	g.Exit = g.newBlock().ID
	return g
}

func (g *Graph) newBlock() *Block {
	b := &Block{ID: g.nextID}
	g.nextID++
	g.Blocks[b.ID] = b
	return b
}

// addEdge records a new edge and keeps each endpoint's Succs/Preds in sync, so the
// invariant "a block's successors list equals {e.to : e.from = block}" (spec.md §8)
// holds by construction rather than needing a separate derivation pass.
func (g *Graph) addEdge(from, to ir.BlockId, kind EdgeKind, cond ir.Expression) {
	g.Edges = append(g.Edges, &Edge{From: from, To: to, Kind: kind, Cond: cond})
	g.Blocks[from].Succs = append(g.Blocks[from].Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
}

func (g *Graph) warn(msg string, n ir.Node) {
	g.Warnings = append(g.Warnings, Warning{Message: msg, Node: n})
}

// --- dominance.Graph interface implementation -------------------------------

// BlockIds returns every block id in the graph; order is unspecified (callers that
// need a fixed order use the dominance package's reverse-post-order instead).
func (g *Graph) BlockIds() []ir.BlockId {
	out := make([]ir.BlockId, 0, len(g.Blocks))
	for id := range g.Blocks {
		out = append(out, id)
	}
	return out
}

// EntryId returns the synthetic entry block id.
func (g *Graph) EntryId() ir.BlockId { return g.Entry }

// ExitId returns the synthetic exit block id.
func (g *Graph) ExitId() ir.BlockId { return g.Exit }

// Succs returns the successor block ids of id, in edge-insertion order.
func (g *Graph) Succs(id ir.BlockId) []ir.BlockId { return g.Blocks[id].Succs }

// Preds returns the predecessor block ids of id, in edge-insertion order.
func (g *Graph) Preds(id ir.BlockId) []ir.BlockId { return g.Blocks[id].Preds }

// Builder returns the *ir.Builder that shares this graph's NodeId allocator, for
// callers (SSA destruction, rewrite passes) that need to synthesize new IR nodes
// guaranteed not to collide with any id already in the graph.
func (g *Graph) Builder() *ir.Builder { return g.builder }
