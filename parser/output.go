package parser

import (
	"context"
	"errors"

	"github.com/zclconf/go-cty/cty"

	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/internal/ctxlog"
)

// Output is a materialised instruction record: one value per slot.
// Unwritten slots contain null values, deferred expressions are stored as field.ExprType capsules,
// blocks as BlockType capsules.
type Output struct {
	Record *Record
	Values []cty.Value
}

// Output evaluates expressions and checks value types of all atoms.
// scope provides variables for expressions and may be nil.
func (r *Record) Output(ctx context.Context, scope field.Scope) (Output, error) {
	result := Output{Record: r, Values: make([]cty.Value, r.Len)}
	written := make([]bool, r.Len)
	for i := range result.Values {
		result.Values[i] = cty.NullVal(cty.DynamicPseudoType)
	}

	for _, a := range r.Atoms {
		values, e := r.atomValues(a, scope)
		if e != nil {
			return Output{}, e
		}

		for i, v := range values {
			slot := a.Slot + i
			if slot < 0 || slot >= r.Len {
				return Output{}, slotRangeError(r.Pos(a.Pos), slot, r.Len)
			}
			if written[slot] {
				return Output{}, duplicateSlotError(r.Pos(a.Pos), slot)
			}
			written[slot] = true
			result.Values[slot] = v
		}
	}

	ctxlog.FromContext(ctx).Debug("record materialised", "directive", r.Directive(), "slots", r.Len)
	return result, nil
}

func (r *Record) atomValues(a Atom, scope field.Scope) ([]cty.Value, error) {
	switch {
	case a.Block != nil:
		return []cty.Value{BlockVal(a.Block)}, nil
	case a.Expr != nil && a.Options == "":
		return []cty.Value{field.ExprVal(a.Expr)}, nil
	}

	v := a.Value
	if a.Expr != nil {
		var e error
		v, e = a.Expr.Eval(scope)
		if e != nil {
			return nil, r.atomError(a, e)
		}
	}

	v, e := field.Coerce(v, a.Options)
	if e != nil {
		return nil, r.atomError(a, e)
	}

	if len(a.Options) > 0 && (a.Options[0] == 'p' || a.Options[0] == 'P') && v.Type().IsTupleType() {
		var result []cty.Value
		for it := v.ElementIterator(); it.Next(); {
			_, x := it.Element()
			result = append(result, x)
		}
		return result, nil
	}
	return []cty.Value{v}, nil
}

func (r *Record) atomError(a Atom, e error) error {
	var ee *field.ExprError
	if errors.As(e, &ee) {
		return fieldError(r.Pos(a.Pos+ee.Pos), ee)
	}
	return e
}

// Var returns the value of a top-level rule variable.
// Vectors return the first component, use Slot to access the rest.
func (o Output) Var(name string) cty.Value {
	if o.Record.Rule != nil {
		if v, found := o.Record.Rule.Lookup(name); found && v.Slot >= 0 && v.Slot < len(o.Values) {
			return o.Values[v.Slot]
		}
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// List follows a repetition chain starting at slot and returns offsets of all blocks.
// Values of a block variable are at offset + variable slot.
func (o Output) List(slot int) []int {
	var result []int
	seen := make(map[int]bool)
	for slot >= 0 && slot < len(o.Values) {
		v := o.Values[slot]
		if v.IsNull() || !v.Type().Equals(cty.Number) {
			break
		}

		next, acc := v.AsBigFloat().Int64()
		if acc != 0 || next <= 0 || seen[int(next)] {
			break
		}
		seen[int(next)] = true
		result = append(result, int(next))
		slot = int(next)
	}
	return result
}
