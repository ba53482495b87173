package ir

import "go.uber.org/jsdeobf/ids"

// Builder constructs IR nodes, assigning each a fresh NodeId from its Allocator.
// Every constructor sets the node's Kind (via the type's Kind() method) and its
// NodeId; Loc is left nil and must be set by the caller (typically the parser, or a
// rewrite that wants to preserve the predecessor's source position) when desired.
//
// A Builder is the only sanctioned way to construct IR nodes outside of clone/rename
// operations that intentionally reuse or regenerate ids explicitly.
type Builder struct {
	alloc *ids.Allocator
}

// NewBuilder returns a Builder drawing fresh NodeIds from alloc.
func NewBuilder(alloc *ids.Allocator) *Builder { return &Builder{alloc: alloc} }

func (b *Builder) id() ids.NodeId { return b.alloc.NextNodeId() }

// --- Expressions -----------------------------------------------------------

func (b *Builder) Identifier(name string) *Identifier {
	return &Identifier{NodeBase: NodeBase{Id: b.id()}, Name: name}
}

func (b *Builder) SSAIdentifier(name string, version ids.SSAVersion, originalName string) *SSAIdentifier {
	return &SSAIdentifier{NodeBase: NodeBase{Id: b.id()}, Name: name, Version: version, OriginalName: originalName}
}

func (b *Builder) StringLiteral(s string) *Literal {
	return &Literal{NodeBase: NodeBase{Id: b.id()}, ValueKind: LiteralString, Value: s}
}

func (b *Builder) NumberLiteral(n float64) *Literal {
	return &Literal{NodeBase: NodeBase{Id: b.id()}, ValueKind: LiteralNumber, Value: n}
}

func (b *Builder) BoolLiteral(v bool) *Literal {
	return &Literal{NodeBase: NodeBase{Id: b.id()}, ValueKind: LiteralBool, Value: v}
}

func (b *Builder) NullLiteral() *Literal {
	return &Literal{NodeBase: NodeBase{Id: b.id()}, ValueKind: LiteralNull, Value: nil}
}

func (b *Builder) BigIntLiteral(decimal string) *Literal {
	return &Literal{NodeBase: NodeBase{Id: b.id()}, ValueKind: LiteralBigInt, Value: decimal}
}

func (b *Builder) RegexLiteral(pattern, flags string) *Literal {
	return &Literal{NodeBase: NodeBase{Id: b.id()}, ValueKind: LiteralRegex, Value: &RegexValue{Pattern: pattern, Flags: flags}}
}

func (b *Builder) Binary(op string, left, right Expression) *Binary {
	return &Binary{NodeBase: NodeBase{Id: b.id()}, Op: op, Left: left, Right: right}
}

func (b *Builder) Unary(op string, arg Expression, prefix bool) *Unary {
	return &Unary{NodeBase: NodeBase{Id: b.id()}, Op: op, Arg: arg, Prefix: prefix}
}

func (b *Builder) Update(op string, arg Expression, prefix bool) *Update {
	return &Update{NodeBase: NodeBase{Id: b.id()}, Op: op, Arg: arg, Prefix: prefix}
}

func (b *Builder) Assignment(op string, lhs Pattern, rhs Expression) *Assignment {
	return &Assignment{NodeBase: NodeBase{Id: b.id()}, Op: op, LHS: lhs, RHS: rhs}
}

func (b *Builder) Logical(op string, left, right Expression) *Logical {
	return &Logical{NodeBase: NodeBase{Id: b.id()}, Op: op, Left: left, Right: right}
}

func (b *Builder) Conditional(test, then, els Expression) *Conditional {
	return &Conditional{NodeBase: NodeBase{Id: b.id()}, Test: test, Then: then, Else: els}
}

func (b *Builder) Call(callee Expression, args []Expression, optional bool) *Call {
	return &Call{NodeBase: NodeBase{Id: b.id()}, Callee: callee, Args: args, Optional: optional}
}

func (b *Builder) New(callee Expression, args []Expression) *New {
	return &New{NodeBase: NodeBase{Id: b.id()}, Callee: callee, Args: args}
}

func (b *Builder) Member(object, property Expression, computed, optional bool) *Member {
	return &Member{NodeBase: NodeBase{Id: b.id()}, Object: object, Property: property, Computed: computed, Optional: optional}
}

func (b *Builder) Array(elements []Expression) *Array {
	return &Array{NodeBase: NodeBase{Id: b.id()}, Elements: elements}
}

func (b *Builder) Object(properties []ObjectMember) *Object {
	return &Object{NodeBase: NodeBase{Id: b.id()}, Properties: properties}
}

func (b *Builder) Property(key, value Expression, kind PropertyKind, computed, shorthand, method bool) *Property {
	return &Property{NodeBase: NodeBase{Id: b.id()}, Key: key, Value: value, PropKind: kind, Computed: computed, Shorthand: shorthand, IsMethod: method}
}

func (b *Builder) Spread(arg Expression) *Spread {
	return &Spread{NodeBase: NodeBase{Id: b.id()}, Arg: arg}
}

func (b *Builder) Sequence(exprs []Expression) *Sequence {
	return &Sequence{NodeBase: NodeBase{Id: b.id()}, Exprs: exprs}
}

// --- Statements --------------------------------------------------------------

func (b *Builder) ExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{NodeBase: NodeBase{Id: b.id()}, Expr: expr}
}

func (b *Builder) Block(body []Statement) *Block {
	return &Block{NodeBase: NodeBase{Id: b.id()}, Body: body}
}

func (b *Builder) Declarator(target Pattern, init Expression) *Declarator {
	return &Declarator{NodeBase: NodeBase{Id: b.id()}, Target: target, Init: init}
}

func (b *Builder) VariableDeclaration(kind DeclKind, declarators []*Declarator) *VariableDeclaration {
	return &VariableDeclaration{NodeBase: NodeBase{Id: b.id()}, DeclKind: kind, Declarators: declarators}
}

func (b *Builder) FunctionDeclaration(id *Identifier, params []Pattern, body *Block, generator, async bool) *FunctionDeclaration {
	return &FunctionDeclaration{NodeBase: NodeBase{Id: b.id()}, Id: id, Params: params, Body: body, Generator: generator, Async: async}
}

func (b *Builder) Return(arg Expression) *Return {
	return &Return{NodeBase: NodeBase{Id: b.id()}, Arg: arg}
}

func (b *Builder) If(test Expression, then, els Statement) *If {
	return &If{NodeBase: NodeBase{Id: b.id()}, Test: test, Then: then, Else: els}
}

func (b *Builder) While(test Expression, body Statement) *While {
	return &While{NodeBase: NodeBase{Id: b.id()}, Test: test, Body: body}
}

func (b *Builder) For(init Node, test, update Expression, body Statement) *For {
	return &For{NodeBase: NodeBase{Id: b.id()}, Init: init, Test: test, Update: update, Body: body}
}

func (b *Builder) Break(label string) *Break { return &Break{NodeBase: NodeBase{Id: b.id()}, Label: label} }

func (b *Builder) Continue(label string) *Continue {
	return &Continue{NodeBase: NodeBase{Id: b.id()}, Label: label}
}

func (b *Builder) Throw(arg Expression) *Throw { return &Throw{NodeBase: NodeBase{Id: b.id()}, Arg: arg} }

func (b *Builder) CatchClause(param Pattern, body *Block) *CatchClause {
	return &CatchClause{NodeBase: NodeBase{Id: b.id()}, Param: param, Body: body}
}

func (b *Builder) Try(block *Block, catch *CatchClause, finally *Block) *Try {
	return &Try{NodeBase: NodeBase{Id: b.id()}, Block: block, Catch: catch, Finally: finally}
}

func (b *Builder) SwitchCase(test Expression, consequent []Statement) *SwitchCase {
	return &SwitchCase{NodeBase: NodeBase{Id: b.id()}, Test: test, Consequent: consequent}
}

func (b *Builder) Switch(discriminant Expression, cases []*SwitchCase) *Switch {
	return &Switch{NodeBase: NodeBase{Id: b.id()}, Discriminant: discriminant, Cases: cases}
}

func (b *Builder) Labeled(label string, body Statement) *Labeled {
	return &Labeled{NodeBase: NodeBase{Id: b.id()}, Label: label, Body: body}
}

func (b *Builder) Empty() *Empty       { return &Empty{NodeBase: NodeBase{Id: b.id()}} }
func (b *Builder) Debugger() *Debugger { return &Debugger{NodeBase: NodeBase{Id: b.id()}} }

// --- Patterns ------------------------------------------------------------

func (b *Builder) IdentifierPattern(name string) *IdentifierPattern {
	return &IdentifierPattern{NodeBase: NodeBase{Id: b.id()}, Name: name}
}

func (b *Builder) ArrayPattern(elements []Pattern) *ArrayPattern {
	return &ArrayPattern{NodeBase: NodeBase{Id: b.id()}, Elements: elements}
}

func (b *Builder) ObjectPatternProperty(key Expression, value Pattern, computed, shorthand bool) *ObjectPatternProperty {
	return &ObjectPatternProperty{NodeBase: NodeBase{Id: b.id()}, Key: key, Value: value, Computed: computed, Shorthand: shorthand}
}

func (b *Builder) ObjectPattern(props []*ObjectPatternProperty, rest *RestElement) *ObjectPattern {
	return &ObjectPattern{NodeBase: NodeBase{Id: b.id()}, Properties: props, Rest: rest}
}

func (b *Builder) RestElement(target Pattern) *RestElement {
	return &RestElement{NodeBase: NodeBase{Id: b.id()}, Target: target}
}

// --- Root ------------------------------------------------------------------

func (b *Builder) Program(body []Statement) *Program {
	return &Program{NodeBase: NodeBase{Id: b.id()}, Body: body}
}

// Phi allocates a fresh Phi for variable at the given target version.
func (b *Builder) Phi(variable string, target ids.SSAVersion) *Phi {
	return NewPhi(b.id(), variable, target)
}
