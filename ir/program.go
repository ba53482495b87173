package ir

// Program is the root of an IR tree: an ordered top-level statement sequence. Every
// node in a well-formed tree is reachable from exactly one Program, except during
// in-flight rewrites (spec.md §3).
type Program struct {
	NodeBase
	Body []Statement
}

func (*Program) Kind() Kind { return "Program" }
