// Package dominance computes dominator trees, post-dominator trees, dominance
// frontiers, natural loops, and reverse post-order numberings over a control-flow
// graph. It depends only on ir.BlockId and a small Graph interface, not on the cfg
// package itself, so cfg can in turn depend on dominance without an import cycle
// (spec.md §4.2 requires the CFG Builder's output to carry dominance information).
package dominance

import "go.uber.org/jsdeobf/ir"

// Graph is the minimal shape dominance needs from a control-flow graph. cfg.Graph
// satisfies this interface directly.
type Graph interface {
	BlockIds() []ir.BlockId
	EntryId() ir.BlockId
	ExitId() ir.BlockId
	Succs(ir.BlockId) []ir.BlockId
	Preds(ir.BlockId) []ir.BlockId
}

// Info holds the dominance analysis results for one CFG, computed once and reused
// by everything downstream (SSA construction reads Frontier and IDom; DCE reads
// ReversePostOrder). The post-dominance queries and Loops are not read by any pass
// in this module.
type Info struct {
	g Graph

	rpo    []ir.BlockId
	rpoPos map[ir.BlockId]int

	idom     map[ir.BlockId]ir.BlockId // immediate dominator; entry maps to itself
	postIdom map[ir.BlockId]ir.BlockId // immediate post-dominator; exit maps to itself

	frontier     map[ir.BlockId][]ir.BlockId
	postFrontier map[ir.BlockId][]ir.BlockId

	loops []*Loop
}

// Loop is a natural loop identified from a back-edge latch -> header, where header
// dominates latch.
type Loop struct {
	Header ir.BlockId
	Latch  ir.BlockId
	Body   map[ir.BlockId]bool // every block strictly inside the loop, header included
}

// Analyze computes the full dominance picture for g in one pass: forward dominators
// (entry-rooted), reverse dominators (exit-rooted, i.e. post-dominators), their
// dominance frontiers, and the natural loops implied by back-edges.
func Analyze(g Graph) *Info {
	info := &Info{g: g}
	info.rpo = reversePostOrder(g, g.EntryId(), func(b ir.BlockId) []ir.BlockId { return g.Succs(b) })
	info.rpoPos = indexOf(info.rpo)

	info.idom = computeIdom(g.BlockIds(), g.EntryId(), info.rpo, info.rpoPos, g.Preds)
	info.frontier = computeFrontier(g.BlockIds(), info.idom, g.Preds)

	postRPO := reversePostOrder(g, g.ExitId(), func(b ir.BlockId) []ir.BlockId { return g.Preds(b) })
	postPos := indexOf(postRPO)
	info.postIdom = computeIdom(g.BlockIds(), g.ExitId(), postRPO, postPos, g.Succs)
	info.postFrontier = computeFrontier(g.BlockIds(), info.postIdom, g.Succs)

	info.loops = findLoops(g, info)
	return info
}

// ReversePostOrder returns the blocks reachable from entry in reverse post-order,
// the traversal order the SSA renaming pass and the dataflow passes iterate in for
// fast fixpoint convergence.
func (i *Info) ReversePostOrder() []ir.BlockId { return i.rpo }

// IDom returns id's immediate dominator. IDom(entry) == entry. Panics if id is
// unreachable from entry (dominance is undefined for unreachable code).
func (i *Info) IDom(id ir.BlockId) ir.BlockId {
	d, ok := i.idom[id]
	if !ok {
		panic("dominance: IDom of unreachable block")
	}
	return d
}

// PostIDom returns id's immediate post-dominator. PostIDom(exit) == exit.
func (i *Info) PostIDom(id ir.BlockId) ir.BlockId {
	d, ok := i.postIdom[id]
	if !ok {
		panic("dominance: PostIDom of a block that cannot reach exit")
	}
	return d
}

// Dominates reports whether a dominates b (every path from entry to b passes
// through a). Every block dominates itself.
func (i *Info) Dominates(a, b ir.BlockId) bool {
	if a == b {
		return true
	}
	cur, ok := i.idom[b]
	if !ok {
		return false
	}
	for {
		if cur == a {
			return true
		}
		parent, ok := i.idom[cur]
		if !ok || parent == cur {
			return cur == a
		}
		cur = parent
	}
}

// PostDominates reports whether a post-dominates b (every path from b to exit
// passes through a).
func (i *Info) PostDominates(a, b ir.BlockId) bool {
	if a == b {
		return true
	}
	cur, ok := i.postIdom[b]
	if !ok {
		return false
	}
	for {
		if cur == a {
			return true
		}
		parent, ok := i.postIdom[cur]
		if !ok || parent == cur {
			return cur == a
		}
		cur = parent
	}
}

// Frontier returns id's dominance frontier: the blocks y such that id dominates a
// predecessor of y but does not strictly dominate y. This is the set SSA
// construction uses to place phi nodes.
func (i *Info) Frontier(id ir.BlockId) []ir.BlockId { return i.frontier[id] }

// PostFrontier returns id's post-dominance frontier, the mirror of Frontier on the
// reversed graph: the blocks y such that id post-dominates a successor of y but
// does not strictly post-dominate y.
func (i *Info) PostFrontier(id ir.BlockId) []ir.BlockId { return i.postFrontier[id] }

// Loops returns every natural loop found in the graph, one per back-edge. The
// order follows the graph's BlockIds(), which is unspecified; nesting does not
// affect it.
func (i *Info) Loops() []*Loop { return i.loops }

// reversePostOrder performs a DFS from root along succ-of and returns the visited
// blocks in reverse post-order.
func reversePostOrder(g Graph, root ir.BlockId, succ func(ir.BlockId) []ir.BlockId) []ir.BlockId {
	visited := make(map[ir.BlockId]bool)
	var post []ir.BlockId

	var visit func(ir.BlockId)
	visit = func(b ir.BlockId) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range succ(b) {
			visit(s)
		}
		post = append(post, b)
	}
	visit(root)

	rpo := make([]ir.BlockId, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

func indexOf(order []ir.BlockId) map[ir.BlockId]int {
	pos := make(map[ir.BlockId]int, len(order))
	for i, b := range order {
		pos[b] = i
	}
	return pos
}

// computeIdom is the Cooper-Harvey-Kennedy iterative dominator algorithm: a
// fixpoint over reverse-post-order repeatedly intersecting each block's processed
// predecessors' current dominator, until no idom changes. root is its own idom.
func computeIdom(blocks []ir.BlockId, root ir.BlockId, rpo []ir.BlockId, rpoPos map[ir.BlockId]int, preds func(ir.BlockId) []ir.BlockId) map[ir.BlockId]ir.BlockId {
	idom := make(map[ir.BlockId]ir.BlockId)
	idom[root] = root

	intersect := func(a, b ir.BlockId) ir.BlockId {
		for a != b {
			for rpoPos[a] > rpoPos[b] {
				a = idom[a]
			}
			for rpoPos[b] > rpoPos[a] {
				b = idom[b]
			}
		}
		return a
	}

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == root {
				continue
			}
			var newIdom ir.BlockId
			first := true
			for _, p := range preds(b) {
				if _, ok := idom[p]; !ok {
					continue
				}
				if first {
					newIdom = p
					first = false
					continue
				}
				newIdom = intersect(newIdom, p)
			}
			if first {
				continue // no processed predecessor yet
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	_ = blocks
	return idom
}

// computeFrontier derives each block's dominance frontier from the immediate
// dominator tree using the standard Cytron et al. runner-up-parent walk.
func computeFrontier(blocks []ir.BlockId, idom map[ir.BlockId]ir.BlockId, preds func(ir.BlockId) []ir.BlockId) map[ir.BlockId][]ir.BlockId {
	df := make(map[ir.BlockId][]ir.BlockId)
	seen := make(map[ir.BlockId]map[ir.BlockId]bool)
	add := func(of, b ir.BlockId) {
		if seen[of] == nil {
			seen[of] = make(map[ir.BlockId]bool)
		}
		if seen[of][b] {
			return
		}
		seen[of][b] = true
		df[of] = append(df[of], b)
	}

	for _, b := range blocks {
		ps := preds(b)
		if len(ps) < 2 {
			continue
		}
		bIdom, ok := idom[b]
		if !ok {
			continue
		}
		for _, p := range ps {
			if _, ok := idom[p]; !ok {
				continue
			}
			runner := p
			for runner != bIdom {
				add(runner, b)
				next, ok := idom[runner]
				if !ok || next == runner {
					break
				}
				runner = next
			}
		}
	}
	return df
}

// findLoops scans every edge for a back-edge (an edge latch -> header where header
// dominates latch) and grows each loop's body by walking predecessors backward from
// the latch until the header is reached (the standard natural-loop construction).
func findLoops(g Graph, info *Info) []*Loop {
	var loops []*Loop
	for _, latch := range g.BlockIds() {
		for _, header := range g.Succs(latch) {
			if !info.Dominates(header, latch) {
				continue
			}
			body := map[ir.BlockId]bool{header: true, latch: true}
			stack := []ir.BlockId{latch}
			for len(stack) > 0 {
				n := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, p := range g.Preds(n) {
					if !body[p] {
						body[p] = true
						stack = append(stack, p)
					}
				}
			}
			loops = append(loops, &Loop{Header: header, Latch: latch, Body: body})
		}
	}
	return loops
}
