package field

import (
	"reflect"
	"strconv"

	"github.com/ava12/plotline"
	"github.com/zclconf/go-cty/cty"
)

const (
	ExpressionError = plotline.FieldErrors + iota
	WrongTypeError
	IntegerError
	EvaluationError
)

// ExprError is a failure reported by an expression compiler or a field matcher.
// Pos is the byte offset of the fault in the line.
type ExprError struct {
	Code    int
	Pos     int
	Message string
}

func (e *ExprError) Error() string {
	return e.Message + " at offset " + strconv.Itoa(e.Pos)
}

func exprError(pos int, msg string) *ExprError {
	return &ExprError{ExpressionError, pos, msg}
}

// Scope provides variable values for expression evaluation; *vars.Chain implements it.
type Scope interface {
	Flatten() map[string]cty.Value
}

// Expr is a compiled expression.
type Expr interface {
	// Text returns the expression as typed.
	Text() string
	// Eval evaluates the expression, scope may be nil.
	Eval(scope Scope) (cty.Value, error)
}

// Options control expression compilation.
type Options struct {
	// DollarAllowed enables $n column references.
	DollarAllowed bool
}

// Compiler is the expression compiler invoked by typed fields.
// Compile compiles the longest expression starting at src[offset:] and returns
// the expression and the number of bytes consumed. On failure it returns *ExprError
// with absolute position of the fault.
type Compiler interface {
	Compile(src string, offset int, opts Options) (Expr, int, error)
}

// ExprType is the capsule type of expressions stored in instruction records
// for evaluation by the executor.
var ExprType = cty.Capsule("expression", reflect.TypeOf((*Expr)(nil)).Elem())

// ExprVal wraps an expression into a cty value.
func ExprVal(e Expr) cty.Value {
	return cty.CapsuleVal(ExprType, &e)
}

// AsExpr extracts an expression wrapped by ExprVal.
func AsExpr(v cty.Value) (Expr, bool) {
	if v.IsNull() || !v.Type().Equals(ExprType) {
		return nil, false
	}
	return *(v.EncapsulatedValue().(*Expr)), true
}
