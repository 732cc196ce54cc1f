package field

import (
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const exprFileName = "expression"

// HCLCompiler compiles expressions using HCL expression syntax.
// A minus sign directly following a name is an operator, not a part of the name;
// with DollarAllowed option $n is compiled as a reference to _n variable.
type HCLCompiler struct {
	Functions map[string]function.Function
	Constants map[string]cty.Value
}

// NewHCLCompiler creates a compiler with default maths and string functions.
func NewHCLCompiler() *HCLCompiler {
	return &HCLCompiler{
		Functions: DefaultFunctions(),
		Constants: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
	}
}

// DefaultFunctions returns functions available in expressions.
func DefaultFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"int":    stdlib.IntFunc,
		"log":    stdlib.LogFunc,
		"pow":    stdlib.PowFunc,
		"min":    stdlib.MinFunc,
		"max":    stdlib.MaxFunc,
		"sgn":    stdlib.SignumFunc,
		"strlen": stdlib.StrlenFunc,
		"upper":  stdlib.UpperFunc,
		"lower":  stdlib.LowerFunc,
		"format": stdlib.FormatFunc,
		"sin":    unaryMath(math.Sin),
		"cos":    unaryMath(math.Cos),
		"tan":    unaryMath(math.Tan),
		"sqrt":   unaryMath(math.Sqrt),
		"exp":    unaryMath(math.Exp),
		"ln":     unaryMath(math.Log),
	}
}

func unaryMath(f func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			r := f(x)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return cty.UnknownVal(cty.Number), function.NewArgErrorf(0, "result is not a finite number")
			}
			return cty.NumberFloatVal(r), nil
		},
	})
}

// prepare rewrites src keeping track of original offsets: origin[i] is the offset in src
// of the i-th byte of the result, origin[len(result)] == len(src).
func prepare(src string, opts Options) (string, []int) {
	result := make([]byte, 0, len(src)+4)
	origin := make([]int, 0, len(src)+5)
	var quote bool
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote && c == '\\' && i+1 < len(src):
			result = append(result, c, src[i+1])
			origin = append(origin, i, i+1)
			i++
			continue
		case c == '"':
			quote = !quote
		case quote:
		case c == '$' && opts.DollarAllowed:
			c = '_'
		case c == '-' && i > 0 && isNameChar(src[i-1]) && !inNumber(src, i):
			result = append(result, ' ')
			origin = append(origin, i)
		}
		result = append(result, c)
		origin = append(origin, i)
	}
	origin = append(origin, len(src))
	return string(result), origin
}

// inNumber returns true if src[:i] ends with a numeric literal exponent, e.g. "1e".
func inNumber(src string, i int) bool {
	j := i
	for j > 0 && isNameChar(src[j-1]) {
		j--
	}
	return src[i-1]|0x20 == 'e' && src[j] >= '0' && src[j] <= '9'
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Compile implements Compiler. It tries prefixes of the source ending at token boundaries,
// the longest valid one wins.
func (c *HCLCompiler) Compile(src string, offset int, opts Options) (Expr, int, error) {
	text, origin := prepare(src[offset:], opts)
	start := hcl.Pos{Line: 1, Column: 1, Byte: 0}
	tokens, _ := hclsyntax.LexExpression([]byte(text), exprFileName, start)

	var ends []int
	seen := make(map[int]bool)
	for _, t := range tokens {
		if t.Type == hclsyntax.TokenEOF || t.Type == hclsyntax.TokenNewline {
			continue
		}
		end := t.Range.End.Byte
		if !seen[end] {
			seen[end] = true
			ends = append(ends, end)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ends)))

	for _, end := range ends {
		expr, diags := hclsyntax.ParseExpression([]byte(text[:end]), exprFileName, start)
		if !diags.HasErrors() {
			consumed := origin[end]
			return &hclExpr{src[offset : offset+consumed], expr, c}, consumed, nil
		}
	}

	_, diags := hclsyntax.ParseExpression([]byte(text), exprFileName, start)
	pos := 0
	msg := "Expected the start of an expression"
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg = d.Summary
		if d.Subject != nil {
			pos = d.Subject.Start.Byte
		}
		break
	}
	if pos > len(text) {
		pos = len(text)
	}
	return nil, 0, exprError(offset+origin[pos], msg+".")
}

type hclExpr struct {
	text     string
	expr     hclsyntax.Expression
	compiler *HCLCompiler
}

func (e *hclExpr) Text() string {
	return e.text
}

func (e *hclExpr) Eval(scope Scope) (cty.Value, error) {
	variables := make(map[string]cty.Value, len(e.compiler.Constants))
	for name, v := range e.compiler.Constants {
		variables[name] = v
	}
	if scope != nil {
		for name, v := range scope.Flatten() {
			variables[name] = v
		}
	}

	ctx := &hcl.EvalContext{Variables: variables, Functions: e.compiler.Functions}
	v, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		for _, d := range diags {
			if d.Severity == hcl.DiagError {
				msg := d.Summary
				if d.Detail != "" {
					msg += ": " + d.Detail
				}
				return cty.NilVal, &ExprError{EvaluationError, 0, msg}
			}
		}
	}
	return v, nil
}
