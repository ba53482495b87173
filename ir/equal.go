package ir

import "github.com/google/go-cmp/cmp"

// equalOptions ignores NodeBase entirely (NodeId and Loc), matching the spec's
// definition of structural equality as "semantic, ignoring ids". Loc is ignored
// alongside NodeId: two nodes that denote the same program construct are
// structurally equal regardless of where in the source text each happened to sit
// (a cloned or rewritten node's Loc may differ from its predecessor's even when the
// construct itself is identical).
var equalOptions = cmp.Options{
	cmp.Comparer(func(NodeBase, NodeBase) bool { return true }),
	cmp.Comparer(func(a, b *RegexValue) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Pattern == b.Pattern && a.Flags == b.Flags
	}),
}

// Equal reports whether a and b denote the same program construct: same variant,
// same child structure, recursively, ignoring NodeId and Loc on every node
// (spec.md §4.1: "structural equality (semantic, ignoring ids)").
func Equal(a, b Node) bool {
	return cmp.Equal(a, b, equalOptions)
}

// Diff renders a human-readable structural diff between a and b, ignoring NodeId
// and Loc the same way Equal does. Nothing in this module calls it.
func Diff(a, b Node) string {
	return cmp.Diff(a, b, equalOptions)
}
