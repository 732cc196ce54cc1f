// Package macro expands @name macros and `command` substitutions in command lines
// before they are matched against the grammar.
package macro

import (
	"context"
	"errors"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/ava12/plotline/internal/ctxlog"
	"github.com/ava12/plotline/source"
)

// DefaultMaxPasses limits rescanning of a line, nested macros need one pass per level.
const DefaultMaxPasses = 16

// Lookup finds a variable by name; *vars.Chain implements it.
type Lookup interface {
	Lookup(name string) (cty.Value, bool)
}

// Expander substitutes macros outside of quoted strings. Each pass replaces every
// marker found in the line, passes are repeated until no markers are left.
type Expander struct {
	Vars      Lookup
	Runner    Runner
	MaxPasses int
}

// New creates an expander. runner may be nil, then backtick substitution fails.
func New(vars Lookup, runner Runner) *Expander {
	return &Expander{Vars: vars, Runner: runner, MaxPasses: DefaultMaxPasses}
}

func (x *Expander) maxPasses() int {
	if x.MaxPasses <= 0 {
		return DefaultMaxPasses
	}
	return x.MaxPasses
}

// HasMarkers returns true if the text contains @ or ` outside of quotes.
func (x *Expander) HasMarkers(text string) bool {
	return firstMarker(text) >= 0
}

// Expand returns line text with all macros substituted.
func (x *Expander) Expand(ctx context.Context, line source.Line) (string, error) {
	text := line.Text()
	log := ctxlog.FromContext(ctx)
	limit := x.maxPasses()
	for pass := 0; x.HasMarkers(text); pass++ {
		if pass >= limit {
			return "", passLimitError(line.WithText(text).Pos(0), limit)
		}

		next, e := x.pass(ctx, line.WithText(text))
		if e != nil {
			return "", e
		}

		log.Debug("macro pass", "pass", pass+1, "text", next)
		text = next
	}
	return text, nil
}

// firstMarker returns the offset of the first @ or ` outside of quoted strings or -1.
func firstMarker(text string) int {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote && text[i-1] != '\\' {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '@' || c == '`':
			return i
		}
	}
	return -1
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (x *Expander) pass(ctx context.Context, line source.Line) (string, error) {
	text := line.Text()
	var (
		sb    strings.Builder
		quote byte
		from  int
	)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote && text[i-1] != '\\' {
				quote = 0
			}
			continue
		}

		var (
			end int
			sub string
			e   error
		)
		switch c {
		case '\'', '"':
			quote = c
			continue

		case '`':
			end = strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				return "", mismatchedError(line.Pos(i))
			}
			end += i + 2
			sub, e = x.substitute(ctx, line, i, text[i+1:end-1])

		case '@':
			end = i + 1
			for end < len(text) && isNameChar(text[end]) {
				end++
			}
			sub, e = x.value(line, i, text[i+1:end])

		default:
			continue
		}

		if e != nil {
			return "", e
		}
		sb.WriteString(text[from:i])
		sb.WriteString(sub)
		from = end
		i = end - 1
	}

	sb.WriteString(text[from:])
	return sb.String(), nil
}

func (x *Expander) value(line source.Line, at int, name string) (string, error) {
	if x.Vars == nil {
		return "", undefinedError(line.Pos(at), name)
	}

	v, found := x.Vars.Lookup(name)
	if !found || v.IsNull() {
		return "", undefinedError(line.Pos(at), name)
	}
	if !v.IsKnown() || v.Type() != cty.String {
		return "", notStringError(line.Pos(at), name)
	}
	return v.AsString(), nil
}

func (x *Expander) substitute(ctx context.Context, line source.Line, at int, command string) (string, error) {
	if x.Runner == nil {
		return "", spawnError(line.Pos(at), command)
	}

	ctxlog.FromContext(ctx).Debug("shell substitution", "command", command)
	out, e := x.Runner.Run(ctx, command)
	if e != nil {
		if ce := ctx.Err(); ce != nil {
			return "", ce
		}

		var ee *ExitError
		if errors.As(e, &ee) {
			return "", commandError(line.Pos(at))
		}
		return "", spawnError(line.Pos(at), command)
	}

	res := strings.ReplaceAll(string(out), "\n", " ")
	return strings.ReplaceAll(res, "\x00", ""), nil
}
