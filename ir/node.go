// Package ir implements the typed intermediate representation the rest of the
// pipeline operates on: a closed set of tagged expression, statement, and pattern
// variants plus the φ-node used by the SSA engine. Every node carries a process-
// unique identity (ids.NodeId) that is preserved across semantics-preserving
// rewrites, and an optional source Loc that survives rewrites whenever the
// rewritten node still corresponds to an original source construct.
package ir

import "go.uber.org/jsdeobf/ids"

// Kind is the variant tag every node carries, mirroring the "type" discriminant
// field the spec requires constructors to set.
type Kind string

// Expression kinds.
const (
	KindIdentifier    Kind = "Identifier"
	KindSSAIdentifier Kind = "SSAIdentifier"
	KindLiteral       Kind = "Literal"
	KindBinary        Kind = "Binary"
	KindUnary         Kind = "Unary"
	KindUpdate        Kind = "Update"
	KindAssignment    Kind = "Assignment"
	KindLogical       Kind = "Logical"
	KindConditional   Kind = "Conditional"
	KindCall          Kind = "Call"
	KindNew           Kind = "New"
	KindMember        Kind = "Member"
	KindArray         Kind = "Array"
	KindObject        Kind = "Object"
	KindProperty      Kind = "Property"
	KindSpread        Kind = "Spread"
	KindSequence      Kind = "Sequence"
)

// Statement kinds.
const (
	KindExpressionStatement Kind = "ExpressionStatement"
	KindBlock               Kind = "Block"
	KindVariableDeclaration Kind = "VariableDeclaration"
	KindFunctionDeclaration Kind = "FunctionDeclaration"
	KindReturn              Kind = "Return"
	KindIf                  Kind = "If"
	KindWhile               Kind = "While"
	KindFor                 Kind = "For"
	KindBreak               Kind = "Break"
	KindContinue            Kind = "Continue"
	KindThrow               Kind = "Throw"
	KindTry                 Kind = "Try"
	KindSwitch              Kind = "Switch"
	KindLabeled             Kind = "Labeled"
	KindEmpty               Kind = "Empty"
	KindDebugger            Kind = "Debugger"
)

// Pattern kinds.
const (
	KindIdentifierPattern Kind = "IdentifierPattern"
	KindArrayPattern      Kind = "ArrayPattern"
	KindObjectPattern     Kind = "ObjectPattern"
	KindRestElement       Kind = "RestElement"
)

// KindPhi is the pseudo-kind for φ-nodes, which are neither expressions,
// statements, nor patterns: SSA construction keeps them in ssa.Program.Phis.
const KindPhi Kind = "Phi"

// Loc is a source location, preserved across rewrites when the rewritten node
// still corresponds to an original source construct (spec.md §4.1).
type Loc struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// BlockId identifies a CFG basic block. It is defined here, rather than in the cfg
// package, because Phi operands are keyed by predecessor BlockId and ir must not
// import cfg (cfg imports ir, not the reverse).
type BlockId int

// Node is implemented by every IR node: expressions, statements, and patterns.
// Phi is deliberately excluded (see IsPhi) since it is not one of those three.
type Node interface {
	ID() ids.NodeId
	Kind() Kind
	Location() *Loc
}

// Expression is implemented by every expression variant.
type Expression interface {
	Node
	isExpression()
}

// Statement is implemented by every statement variant.
type Statement interface {
	Node
	isStatement()
}

// Pattern is implemented by every pattern variant.
type Pattern interface {
	Node
	isPattern()
}

// NodeBase is embedded by every concrete node type to supply identity and source
// location. It is the only state go-cmp needs to specifically ignore when computing
// semantic (identity-independent) structural equality; see Equal in equal.go.
type NodeBase struct {
	Id  ids.NodeId
	Loc *Loc
}

// ID returns the node's process-unique identity.
func (b NodeBase) ID() ids.NodeId { return b.Id }

// Location returns the node's source location, or nil if synthesized.
func (b NodeBase) Location() *Loc { return b.Loc }

// SetLoc assigns the node's source location. It is exposed via pointer-receiver
// promotion on every concrete node type (which embeds NodeBase by value behind a
// pointer), used by Clone to carry a predecessor's Loc onto its copy.
func (b *NodeBase) SetLoc(loc *Loc) { b.Loc = loc }

// locSetter is implemented by every concrete node type through NodeBase promotion.
type locSetter interface{ SetLoc(*Loc) }

// IsExpression reports whether n is one of the Expression variants.
func IsExpression(n Node) bool { _, ok := n.(Expression); return ok }

// IsStatement reports whether n is one of the Statement variants.
func IsStatement(n Node) bool { _, ok := n.(Statement); return ok }

// IsPattern reports whether n is one of the Pattern variants.
func IsPattern(n Node) bool { _, ok := n.(Pattern); return ok }

// IsPhi reports whether n is a Phi pseudo-instruction.
func IsPhi(n any) bool { _, ok := n.(*Phi); return ok }
