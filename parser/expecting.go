package parser

import (
	"strings"

	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/source"
)

const endOfCommand = "the end of the command"

// expecting collects descriptions of items that failed at the furthest position reached
// during one parse attempt. A field error is reported only if nothing failed further.
type expecting struct {
	pos      int
	items    []string
	fieldErr *field.ExprError
}

func newExpecting() *expecting {
	return &expecting{pos: -1}
}

func (x *expecting) add(pos int, item string) {
	switch {
	case pos > x.pos:
		x.pos = pos
		x.items = append(x.items[:0], item)
	case pos == x.pos:
		for _, i := range x.items {
			if i == item {
				return
			}
		}
		x.items = append(x.items, item)
	}
}

func (x *expecting) addNode(pos int, n *grammar.Node) {
	x.add(pos, describe(n))
}

func (x *expecting) addFieldError(e *field.ExprError) {
	if x.fieldErr == nil || e.Pos > x.fieldErr.Pos {
		x.fieldErr = e
	}
}

// merge adds everything collected by another attempt.
func (x *expecting) merge(other *expecting) {
	for _, item := range other.items {
		x.add(other.pos, item)
	}
	if other.fieldErr != nil {
		x.addFieldError(other.fieldErr)
	}
}

func describe(n *grammar.Node) string {
	switch n.Kind {
	case grammar.Literal:
		return "\"" + n.Text + "\""
	case grammar.CodeBlock:
		return "\"{\""
	case grammar.Field:
		parts := field.Descriptions(n.Tag)
		if n.Var != "" && n.Var != "X" {
			for i := range parts {
				parts[i] += " (" + n.Var + ")"
			}
		}
		return strings.Join(parts, ", or ")
	default:
		return n.Kind.String()
	}
}

// err converts collected information to an error; start is the offset of the first word of the line.
func (x *expecting) err(line source.Line, text string, start int) error {
	pos := func(offset int) source.Pos {
		return line.WithText(text).Pos(offset)
	}

	if x.fieldErr != nil && x.fieldErr.Pos >= x.pos {
		return fieldError(pos(x.fieldErr.Pos), x.fieldErr)
	}
	if x.pos <= start || len(x.items) == 0 {
		return unrecognisedError(pos(start))
	}
	return expectingError(pos(x.pos), strings.Join(x.items, ", or "))
}
