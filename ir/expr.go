package ir

import "go.uber.org/jsdeobf/ids"

// Identifier is a bare variable reference, pre-SSA (or post-SSA-destruction).
type Identifier struct {
	NodeBase
	Name string
}

func (*Identifier) Kind() Kind    { return KindIdentifier }
func (*Identifier) isExpression() {}

// SSAIdentifier is a versioned variable reference introduced by SSA construction.
// OriginalName is what SSA destruction restores the identifier to.
type SSAIdentifier struct {
	NodeBase
	Name         string
	Version      ids.SSAVersion
	OriginalName string
}

func (*SSAIdentifier) Kind() Kind    { return KindSSAIdentifier }
func (*SSAIdentifier) isExpression() {}

// LiteralKind discriminates the value carried by a Literal.
type LiteralKind string

const (
	LiteralString LiteralKind = "string"
	LiteralNumber LiteralKind = "number"
	LiteralBool   LiteralKind = "bool"
	LiteralNull   LiteralKind = "null"
	LiteralBigInt LiteralKind = "bigint"
	LiteralRegex  LiteralKind = "regex"
)

// Literal is a constant value. Value holds a string for LiteralString/LiteralBigInt
// (bigints are kept in decimal-string form to avoid precision loss), a float64 for
// LiteralNumber, a bool for LiteralBool, nil for LiteralNull, and a *RegexValue for
// LiteralRegex.
type Literal struct {
	NodeBase
	ValueKind LiteralKind
	Value     any
}

func (*Literal) Kind() Kind    { return KindLiteral }
func (*Literal) isExpression() {}

// RegexValue is the Value payload of a LiteralRegex literal.
type RegexValue struct {
	Pattern string
	Flags   string
}

// Binary is a binary operator expression, e.g. `a + b`, `a === b`, `a & b`.
type Binary struct {
	NodeBase
	Op          string
	Left, Right Expression
}

func (*Binary) Kind() Kind    { return KindBinary }
func (*Binary) isExpression() {}

// Unary is a prefix-or-not unary operator expression, e.g. `!a`, `typeof a`.
type Unary struct {
	NodeBase
	Op     string
	Arg    Expression
	Prefix bool
}

func (*Unary) Kind() Kind    { return KindUnary }
func (*Unary) isExpression() {}

// Update is an increment/decrement expression, e.g. `a++`, `--a`.
type Update struct {
	NodeBase
	Op     string
	Arg    Expression
	Prefix bool
}

func (*Update) Kind() Kind    { return KindUpdate }
func (*Update) isExpression() {}

// Assignment is `lhs op= rhs`, e.g. `a = b`, `a += 1`.
type Assignment struct {
	NodeBase
	Op  string
	LHS Pattern
	RHS Expression
}

func (*Assignment) Kind() Kind    { return KindAssignment }
func (*Assignment) isExpression() {}

// Logical is `&&`, `||`, or `??`.
type Logical struct {
	NodeBase
	Op          string
	Left, Right Expression
}

func (*Logical) Kind() Kind    { return KindLogical }
func (*Logical) isExpression() {}

// Conditional is the ternary `test ? then : else`.
type Conditional struct {
	NodeBase
	Test, Then, Else Expression
}

func (*Conditional) Kind() Kind    { return KindConditional }
func (*Conditional) isExpression() {}

// Call is a function invocation, optionally optional-chained (`f?.()`).
type Call struct {
	NodeBase
	Callee   Expression
	Args     []Expression
	Optional bool
}

func (*Call) Kind() Kind    { return KindCall }
func (*Call) isExpression() {}

// New is a `new Callee(Args...)` expression.
type New struct {
	NodeBase
	Callee Expression
	Args   []Expression
}

func (*New) Kind() Kind    { return KindNew }
func (*New) isExpression() {}

// Member is a property access, `object.property` or `object[property]` when
// Computed is true, optionally optional-chained (`object?.property`).
type Member struct {
	NodeBase
	Object   Expression
	Property Expression
	Computed bool
	Optional bool
}

func (*Member) Kind() Kind    { return KindMember }
func (*Member) isExpression() {}

// Array is an array literal. A nil entry in Elements represents an elision hole,
// e.g. `[1, , 3]`.
type Array struct {
	NodeBase
	Elements []Expression
}

func (*Array) Kind() Kind    { return KindArray }
func (*Array) isExpression() {}

// ObjectMember is implemented by Property and Spread when used as a member of an
// Object literal.
type ObjectMember interface {
	Node
	isObjectMember()
}

// Object is an object literal, a sequence of properties and/or spreads.
type Object struct {
	NodeBase
	Properties []ObjectMember
}

func (*Object) Kind() Kind    { return KindObject }
func (*Object) isExpression() {}

// PropertyKind discriminates how a Property participates in its Object.
type PropertyKind string

const (
	PropertyInit PropertyKind = "init"
	PropertyGet  PropertyKind = "get"
	PropertySet  PropertyKind = "set"
)

// Property is a single `key: value` (or getter/setter/method) member of an Object.
type Property struct {
	NodeBase
	Key        Expression
	Value      Expression
	PropKind   PropertyKind
	Computed   bool
	Shorthand  bool
	IsMethod   bool
}

func (*Property) Kind() Kind      { return KindProperty }
func (*Property) isExpression()   {}
func (*Property) isObjectMember() {}

// Spread is `...arg`, usable inside Array, Object, or Call argument lists.
type Spread struct {
	NodeBase
	Arg Expression
}

func (*Spread) Kind() Kind      { return KindSpread }
func (*Spread) isExpression()   {}
func (*Spread) isObjectMember() {}

// Sequence is the comma operator, `a, b, c`, evaluating to the last expression.
type Sequence struct {
	NodeBase
	Exprs []Expression
}

func (*Sequence) Kind() Kind    { return KindSequence }
func (*Sequence) isExpression() {}
