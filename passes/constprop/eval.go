package constprop

import (
	"go.uber.org/jsdeobf/ids"
	"go.uber.org/jsdeobf/ir"
)

// evalExpr evaluates e against the current lattice environment env (keyed by
// "variable@version"), without mutating the tree. It is used both during the
// worklist fixpoint (to recompute a def's value from its defining expression) and,
// after the fixpoint, to decide whether a given subexpression is foldable.
func evalExpr(e ir.Expression, env map[string]value, fam Families) value {
	switch ex := e.(type) {
	case nil:
		return topValue
	case *ir.Literal:
		switch ex.ValueKind {
		case ir.LiteralRegex:
			return topValue
		case ir.LiteralNull:
			return constVal(jsNull{}, 1.0)
		default:
			return constVal(ex.Value, 1.0)
		}
	case *ir.SSAIdentifier:
		if v, ok := env[key(ex.Name, ex.Version)]; ok {
			return v
		}
		return topValue
	case *ir.Identifier:
		return bottomValue // unresolved binding (builtin/global); never foldable
	case *ir.Binary:
		return evalBinary(ex.Op, evalExpr(ex.Left, env, fam), evalExpr(ex.Right, env, fam), fam)
	case *ir.Unary:
		return evalUnary(ex.Op, evalExpr(ex.Arg, env, fam), fam)
	case *ir.Logical:
		return evalLogical(ex.Op, evalExpr(ex.Left, env, fam), ex.Right, env, fam)
	case *ir.Conditional:
		test := evalExpr(ex.Test, env, fam)
		if test.kind != constant {
			return bottomValue
		}
		if truthy(test.val) {
			return evalExpr(ex.Then, env, fam)
		}
		return evalExpr(ex.Else, env, fam)
	default:
		return bottomValue // calls, members, arrays, objects: never constant-foldable here
	}
}

func key(name string, version ids.SSAVersion) string {
	return name + "@" + version.String()
}

func evalLogical(op string, left value, rightExpr ir.Expression, env map[string]value, fam Families) value {
	if !fam.Boolean {
		return bottomValue
	}
	if left.kind != constant {
		return bottomValue
	}
	switch op {
	case "&&":
		if !truthy(left.val) {
			return left
		}
	case "||":
		if truthy(left.val) {
			return left
		}
	case "??":
		if !isNullish(left.val) {
			return left
		}
	default:
		return bottomValue
	}
	return evalExpr(rightExpr, env, fam)
}

func evalUnary(op string, arg value, fam Families) value {
	if op == "delete" {
		return topValue
	}
	if arg.kind != constant {
		return arg
	}
	switch op {
	case "typeof":
		return constVal(jsTypeof(arg.val), arg.confidence)
	case "void":
		return constVal(nil, arg.confidence) // nil is this pass's tag for undefined, never jsNull
	case "!":
		if !fam.Boolean {
			return bottomValue
		}
		return constVal(!truthy(arg.val), arg.confidence)
	case "+":
		if !fam.Arithmetic {
			return bottomValue
		}
		n, ok := toNumber(arg.val)
		if !ok {
			return bottomValue
		}
		return constVal(n, arg.confidence)
	case "-":
		if !fam.Arithmetic {
			return bottomValue
		}
		n, ok := toNumber(arg.val)
		if !ok {
			return bottomValue
		}
		return constVal(-n, arg.confidence)
	case "~":
		if !fam.Bitwise {
			return bottomValue
		}
		n, ok := toInt32(arg.val)
		if !ok {
			return bottomValue
		}
		return constVal(float64(^n), arg.confidence)
	}
	return bottomValue
}
