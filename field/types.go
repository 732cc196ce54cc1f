package field

import (
	"math"
	"math/big"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

var typeNames = map[byte]string{
	'a': "an axis name",
	'A': "a number",
	'b': "a boolean",
	'c': "a colour",
	'C': "a colour",
	'd': "an integer",
	'D': "a number",
	'f': "a number",
	'i': "an integer",
	'o': "any value",
	'p': "a vector",
	'P': "a vector",
	'q': "a string",
	'Q': "a string",
	'r': "a string",
	's': "a string",
	'S': "a string",
	'u': "a number",
	'v': "a string",
}

// Coerce converts a value to the first acceptable type listed in options.
// Angles (A) are converted from degrees to radians, distances (D) from centimetres to metres.
func Coerce(v cty.Value, options string) (cty.Value, error) {
	if options == "" {
		return v, nil
	}

	if !v.IsNull() && v.IsWhollyKnown() {
		for i := 0; i < len(options); i++ {
			if r, ok := coerceTo(v, options[i]); ok {
				return r, nil
			}
		}
	}

	var names []string
	for i := 0; i < len(options); i++ {
		n, found := typeNames[options[i]]
		if found && !contains(names, n) {
			names = append(names, n)
		}
	}
	return cty.NilVal, &ExprError{WrongTypeError, 0,
		"Expression evaluates to the wrong type: needed " + strings.Join(names, ", or ") + "."}
}

func coerceTo(v cty.Value, option byte) (cty.Value, bool) {
	t := v.Type()
	switch option {
	case 'o':
		return v, true
	case 'd', 'i':
		if t == cty.Number && v.AsBigFloat().IsInt() {
			return v, true
		}
	case 'f', 'u':
		if t == cty.Number {
			return v, true
		}
	case 'A':
		if t == cty.Number {
			return v.Multiply(cty.NumberFloatVal(math.Pi / 180)), true
		}
	case 'D':
		if t == cty.Number {
			return v.Multiply(cty.NumberFloatVal(0.01)), true
		}
	case 'b':
		switch t {
		case cty.Bool:
			return v, true
		case cty.Number:
			return cty.BoolVal(v.AsBigFloat().Sign() != 0), true
		}
	case 'q', 'Q', 's', 'S', 'v', 'r':
		if t == cty.String {
			return v, true
		}
	case 'a':
		if t.Equals(AxisType) {
			return v, true
		}
	case 'c', 'C':
		return coerceColour(v)
	case 'p':
		return coerceVector(v, 2)
	case 'P':
		return coerceVector(v, 3)
	}
	return cty.NilVal, false
}

func numbers(v cty.Value, n int) ([]cty.Value, bool) {
	t := v.Type()
	if !t.IsTupleType() && !t.IsListType() {
		return nil, false
	}
	if v.LengthInt() != n {
		return nil, false
	}

	result := make([]cty.Value, 0, n)
	for it := v.ElementIterator(); it.Next(); {
		_, e := it.Element()
		if e.IsNull() || e.Type() != cty.Number {
			return nil, false
		}
		result = append(result, e)
	}
	return result, true
}

func coerceColour(v cty.Value) (cty.Value, bool) {
	t := v.Type()
	switch {
	case t == cty.String:
		return LookupColour(v.AsString())
	case t.Equals(ColourType):
		return v, true
	}

	parts, ok := numbers(v, 3)
	if !ok {
		return cty.NilVal, false
	}
	for _, p := range parts {
		if p.AsBigFloat().Cmp(big.NewFloat(0)) < 0 || p.AsBigFloat().Cmp(big.NewFloat(1)) > 0 {
			return cty.NilVal, false
		}
	}
	return cty.ObjectVal(map[string]cty.Value{"r": parts[0], "g": parts[1], "b": parts[2]}), true
}

func coerceVector(v cty.Value, n int) (cty.Value, bool) {
	parts, ok := numbers(v, n)
	if !ok {
		return cty.NilVal, false
	}
	return cty.TupleVal(parts), true
}
