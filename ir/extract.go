package ir

// IdentifierName returns the name carried by an Identifier or SSAIdentifier
// expression, and false for any other expression (spec.md §4.1: "identifier
// extraction").
func IdentifierName(e Expression) (string, bool) {
	switch e := e.(type) {
	case *Identifier:
		return e.Name, true
	case *SSAIdentifier:
		return e.Name, true
	}
	return "", false
}

// PatternName returns the single bound name of p when p is the common
// single-identifier case (an IdentifierPattern, or a RestElement wrapping one), and
// false for compound patterns (array/object destructuring) where no single name
// applies (spec.md §4.1: "pattern-name extraction for the common single-identifier
// patterns").
func PatternName(p Pattern) (string, bool) {
	switch p := p.(type) {
	case *IdentifierPattern:
		return p.Name, true
	case *RestElement:
		return PatternName(p.Target)
	}
	return "", false
}

// BoundNames returns every name bound by p, recursing into array/object
// destructuring patterns and rest elements. Used by def-use collection (dce
// package) and by SSA renaming, both of which must see every name a pattern binds,
// not just the single-identifier case PatternName covers.
func BoundNames(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		if p == nil {
			return
		}
		switch p := p.(type) {
		case *IdentifierPattern:
			names = append(names, p.Name)
		case *ArrayPattern:
			for _, e := range p.Elements {
				walk(e)
			}
		case *ObjectPattern:
			for _, prop := range p.Properties {
				walk(prop.Value)
			}
			if p.Rest != nil {
				walk(p.Rest)
			}
		case *RestElement:
			walk(p.Target)
		}
	}
	walk(p)
	return names
}
