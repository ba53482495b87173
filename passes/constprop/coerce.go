package constprop

import (
	"fmt"
	"math"
	"strconv"
)

// evalBinary folds a binary operator over two already-evaluated operands, honoring
// the family toggles from Options. Division by zero is the pass-specific policy
// result Top, never a crash or panic (spec.md §4.5).
func evalBinary(op string, left, right value, fam Families) value {
	if left.kind == bottom || right.kind == bottom {
		return bottomValue
	}
	if left.kind == top || right.kind == top {
		return topValue
	}
	confidence := math.Min(left.confidence, right.confidence)

	switch op {
	case "+":
		if _, lok := left.val.(string); lok {
			if !fam.StringConcat {
				return bottomValue
			}
			return constVal(toStringJS(left.val)+toStringJS(right.val), confidence)
		}
		if _, rok := right.val.(string); rok {
			if !fam.StringConcat {
				return bottomValue
			}
			return constVal(toStringJS(left.val)+toStringJS(right.val), confidence)
		}
		if !fam.Arithmetic {
			return bottomValue
		}
		l, lok := toNumber(left.val)
		r, rok := toNumber(right.val)
		if !lok || !rok {
			return bottomValue
		}
		return constVal(l+r, confidence)
	case "-", "*", "/", "%", "**":
		if !fam.Arithmetic {
			return bottomValue
		}
		l, lok := toNumber(left.val)
		r, rok := toNumber(right.val)
		if !lok || !rok {
			return bottomValue
		}
		switch op {
		case "-":
			return constVal(l-r, confidence)
		case "*":
			return constVal(l*r, confidence)
		case "/":
			if r == 0 {
				return topValue // division by zero: never crash, never rewrite
			}
			return constVal(l/r, confidence)
		case "%":
			if r == 0 {
				return topValue
			}
			return constVal(math.Mod(l, r), confidence)
		case "**":
			return constVal(math.Pow(l, r), confidence)
		}
	case "==", "===", "!=", "!==", "<", "<=", ">", ">=":
		if !fam.Comparison {
			return bottomValue
		}
		return constVal(compare(op, left.val, right.val), confidence)
	case "&", "|", "^", "<<", ">>", ">>>":
		if !fam.Bitwise {
			return bottomValue
		}
		l, lok := toInt32(left.val)
		r, rok := toInt32(right.val)
		if !lok || !rok {
			return bottomValue
		}
		switch op {
		case "&":
			return constVal(float64(l&r), confidence)
		case "|":
			return constVal(float64(l|r), confidence)
		case "^":
			return constVal(float64(l^r), confidence)
		case "<<":
			return constVal(float64(l<<(uint32(r)&31)), confidence)
		case ">>":
			return constVal(float64(l>>(uint32(r)&31)), confidence)
		case ">>>":
			return constVal(float64(uint32(l)>>(uint32(r)&31)), confidence)
		}
	}
	return bottomValue
}

func compare(op string, l, r interface{}) bool {
	switch op {
	case "===":
		return strictEqual(l, r)
	case "!==":
		return !strictEqual(l, r)
	case "==":
		return looseEqual(l, r)
	case "!=":
		return !looseEqual(l, r)
	}
	ln, lok := toNumber(l)
	rn, rok := toNumber(r)
	if !lok || !rok {
		return false
	}
	switch op {
	case "<":
		return ln < rn
	case "<=":
		return ln <= rn
	case ">":
		return ln > rn
	case ">=":
		return ln >= rn
	}
	return false
}

func strictEqual(l, r interface{}) bool {
	lf, lok := l.(float64)
	rf, rok := r.(float64)
	if lok && rok {
		return lf == rf
	}
	return l == r
}

// looseEqual implements JS's `==`. null and undefined are loosely equal to each
// other and to nothing else, not even 0 or "" (a special case JS carves out of
// the usual numeric-coercion rule below).
func looseEqual(l, r interface{}) bool {
	if strictEqual(l, r) {
		return true
	}
	lNullish, rNullish := isNullish(l), isNullish(r)
	if lNullish || rNullish {
		return lNullish && rNullish
	}
	ln, lok := toNumber(l)
	rn, rok := toNumber(r)
	return lok && rok && ln == rn
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case jsNull:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// toNumber implements JS's ToNumber: null coerces to 0, undefined to NaN — the
// two are not interchangeable here even though both fail truthy() the same way.
func toNumber(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case jsNull:
		return 0, true
	case nil:
		return math.NaN(), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// toInt32 mirrors JS's ToInt32 abstract operation: NaN and infinities coerce to 0.
func toInt32(v interface{}) (int32, bool) {
	f, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true
	}
	return int32(uint32(int64(f))), true
}

func toStringJS(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case jsNull:
		return "null"
	case nil:
		return "undefined"
	default:
		return fmt.Sprint(x)
	}
}

// jsTypeof implements JS's `typeof`, including its famous quirk: typeof null is
// "object", not "null" — only a bare undefined reports as "undefined".
func jsTypeof(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "undefined"
	case jsNull:
		return "object"
	default:
		return "object"
	}
}
