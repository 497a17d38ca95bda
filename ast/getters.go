package ast

import "strings"

// Getter synthesizes the accessor function of a public state variable:
// mapping keys and array indices become parameters and the innermost value
// type is returned.
func Getter(v *VariableDeclaration) *FunctionDefinition {
	fn := &FunctionDefinition{
		Name:       v.Name,
		Kind:       FuncFunction,
		Visibility: VisibilityExternal,
		Mutability: MutabilityView,
		HasBody:    true,
		Docs:       v.Docs,
		Span:       v.Span,
	}

	typ := v.Type
	for {
		if key, value, ok := SplitMapping(typ); ok {
			fn.Params = append(fn.Params, &Parameter{Type: key})
			typ = value
		} else if elem, ok := ElementType(typ); ok && typ != "string" && typ != "bytes" {
			fn.Params = append(fn.Params, &Parameter{Type: "uint256"})
			typ = elem
		} else {
			break
		}
	}

	fn.Returns = []*Parameter{{Type: typ}}
	return fn
}

// SplitMapping splits `mapping(K => V)` into its key and value types.
func SplitMapping(typ string) (key, value string, ok bool) {
	if !strings.HasPrefix(typ, "mapping(") || !strings.HasSuffix(typ, ")") {
		return "", "", false
	}

	inner := typ[len("mapping(") : len(typ)-1]

	// the key is always elementary so the first arrow is the right one
	i := strings.Index(inner, " => ")
	if i < 0 {
		return "", "", false
	}

	return inner[:i], inner[i+len(" => "):], true
}

// ElementType returns the element type of an array type.
func ElementType(typ string) (string, bool) {
	if !strings.HasSuffix(typ, "]") {
		return "", false
	}

	i := strings.LastIndexByte(typ, '[')
	if i < 0 {
		return "", false
	}

	return typ[:i], true
}

// ArrayLength returns the static length of an array type or -1 for dynamic
// arrays.
func ArrayLength(typ string) int {
	i := strings.LastIndexByte(typ, '[')
	if i < 0 {
		return -1
	}

	n := 0
	for _, c := range typ[i+1 : len(typ)-1] {
		if c < '0' || c > '9' {
			return -1
		}

		n = n*10 + int(c-'0')
	}

	if i+2 == len(typ) {
		return -1
	}

	return n
}
