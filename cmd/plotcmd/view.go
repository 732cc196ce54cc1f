package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/ava12/plotline/datablock"
	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/parser"
)

// recordView is the printable form of a materialised record.
type recordView struct {
	Directive string         `json:"directive" yaml:"directive"`
	Text      string         `json:"text" yaml:"text"`
	Source    string         `json:"source,omitempty" yaml:"source,omitempty"`
	Line      int            `json:"line,omitempty" yaml:"line,omitempty"`
	Values    map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
}

func viewRecord(r *parser.Record, o parser.Output) recordView {
	v := recordView{
		Directive: r.Directive(),
		Text:      r.String(),
		Source:    r.Source.SourceName(),
		Line:      r.Source.Number(),
	}
	if r.Rule != nil {
		lists := make(map[string]bool)
		for _, x := range r.Rule.Vars {
			if x.List != "" {
				lists[x.List] = true
			}
		}
		v.Values = viewVars(o, r.Rule.Vars, lists, "", 0)
	}
	return v
}

// viewVars collects non-null variables of a repetition block (or of the fixed part if list is empty).
func viewVars(o parser.Output, vars []grammar.Var, lists map[string]bool, list string, base int) map[string]any {
	result := make(map[string]any)
	for _, x := range vars {
		if x.List != list || x.Name == "directive" {
			continue
		}

		slot := base + x.Slot
		if lists[x.Name] {
			var items []any
			for _, offset := range o.List(slot) {
				items = append(items, viewVars(o, vars, lists, x.Name, offset))
			}
			if len(items) > 0 {
				result[x.Name] = items
			}
			continue
		}

		if slot < 0 || slot >= len(o.Values) {
			continue
		}
		if value := viewValue(o.Values[slot]); value != nil {
			result[x.Name] = value
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func viewValue(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}

	ty := v.Type()
	switch {
	case ty.Equals(parser.BlockType):
		b, _ := parser.AsBlock(v)
		if b.Kind == grammar.DataBlock {
			return viewData(b)
		}
		lines := make([]string, len(b.Records))
		for i, r := range b.Records {
			lines[i] = r.String()
		}
		return lines

	case ty.Equals(field.ExprType):
		e, _ := field.AsExpr(v)
		return e.Text()

	case ty == cty.String:
		return v.AsString()

	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f

	case ty == cty.Bool:
		return v.True()

	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var items []any
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			items = append(items, viewValue(e))
		}
		return items

	case ty.IsObjectType() || ty.IsMapType():
		items := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			items[k.AsString()] = viewValue(e)
		}
		return items
	}
	return v.GoString()
}

// viewData shows a data block as points, rows of numbers, rows of fields, or raw lines,
// whichever fits first.
func viewData(b *parser.Block) any {
	if points, ok, e := datablock.Points(b); ok && e == nil {
		return points
	}
	if numbers, e := datablock.Numbers(b); e == nil {
		return numbers
	}
	if rows, e := datablock.Rows(b); e == nil {
		fields := make([][]string, len(rows))
		for i, r := range rows {
			fields[i] = r.Fields
		}
		return fields
	}
	return b.Lines()
}

func (s *session) show(r *parser.Record, o parser.Output) error {
	v := viewRecord(r, o)
	switch s.format {
	case formatJSON:
		content, e := json.Marshal(v)
		if e != nil {
			return e
		}
		fmt.Fprintln(s.out, string(content))

	case formatYAML:
		content, e := yaml.Marshal([]recordView{v})
		if e != nil {
			return e
		}
		fmt.Fprint(s.out, string(content))

	default:
		fmt.Fprintln(s.out, s.styles.directive.Render(v.Directive), formatValues(v.Values))
	}
	return nil
}

// formatValues prints values as sorted name=value pairs.
func formatValues(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		content, e := json.Marshal(values[k])
		if e != nil {
			content = []byte(fmt.Sprint(values[k]))
		}
		parts[i] = k + "=" + string(content)
	}
	return strings.Join(parts, " ")
}
