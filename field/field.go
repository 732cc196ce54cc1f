// Package field implements typed fields of command rules: numbers, strings, words, axes, colours,
// vectors, and expressions delegated to an expression compiler.
package field

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Item is a single value produced by a field.
type Item struct {
	// Offset is the slot offset relative to the first slot of the field.
	Offset int
	// Pos is the byte offset of the value in the line.
	Pos int
	// Options lists value types accepted by the executor, empty for deferred expressions.
	Options string
	// Value is a literal value, unused if Expr is set.
	Value cty.Value
	// Expr is a compiled expression or nil.
	Expr Expr
}

// Match is the result of a successful field match.
type Match struct {
	// End is the offset of the first byte following the field.
	End   int
	Items []Item
}

// Matcher matches typed fields.
type Matcher struct {
	Compiler Compiler
}

// NewMatcher creates a matcher using given expression compiler, default is HCLCompiler.
func NewMatcher(c Compiler) *Matcher {
	if c == nil {
		c = NewHCLCompiler()
	}
	return &Matcher{c}
}

// Match tries to match a field with given tag at line[pos:]; pos must point at a non-space character.
// Returns false if the text does not look like the field. Returns *ExprError if it looks like
// an expression that cannot be compiled.
func (m *Matcher) Match(tag, line string, pos int) (Match, bool, error) {
	if tag == "" || (pos >= len(line) && tag[0] != 'r') {
		return Match{}, false, nil
	}

	switch tag[0] {
	case 'a':
		return matchAxis(line, pos)
	case 'q':
		return matchQuoted(line, pos)
	case 'Q':
		if line[pos] == '\'' || line[pos] == '"' {
			return matchQuoted(line, pos)
		}
		return m.matchExpr(line, pos, "q", Options{})
	case 's':
		return matchRun(line, pos, isLetter, isLetter)
	case 'S':
		return matchRun(line, pos, isWordChar, isWordChar)
	case 'v':
		return matchRun(line, pos, isAlpha, isNameChar)
	case 'r':
		return Match{len(line), []Item{{Pos: pos, Value: cty.StringVal(strings.TrimRight(line[pos:], " \t"))}}}, true, nil
	case 'b':
		if r, ok := matchBool(line, pos); ok {
			return r, true, nil
		}
		return m.matchNumber(tag, line, pos)
	case 'c':
		if r, ok := matchColour(line, pos); ok {
			return r, true, nil
		}
		return m.matchExpr(line, pos, tag, Options{})
	case 'C':
		if r, ok := matchColour(line, pos); ok {
			return r, true, nil
		}
		return m.matchExpr(line, pos, "", Options{})
	case 'e':
		return m.matchExpr(line, pos, "", Options{})
	case 'E':
		return m.matchExpr(line, pos, "", Options{DollarAllowed: true})
	case 'p', 'P':
		width := 2
		if tag[0] == 'P' {
			width = 3
		}
		return m.matchVector(tag, line, pos, width)
	default:
		return m.matchNumber(tag, line, pos)
	}
}

func isLetter(c byte) bool {
	return c == '_' || isAlpha(c)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return c > ' ' && c != '\'' && c != '"'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func skipSpace(line string, pos int) int {
	for pos < len(line) && isSpace(line[pos]) {
		pos++
	}
	return pos
}

func matchRun(line string, pos int, first, rest func(byte) bool) (Match, bool, error) {
	if !first(line[pos]) {
		return Match{}, false, nil
	}

	end := pos + 1
	for end < len(line) && rest(line[end]) {
		end++
	}
	return Match{end, []Item{{Pos: pos, Options: "q", Value: cty.StringVal(line[pos:end])}}}, true, nil
}

// AxisType is the object type of axis values.
var AxisType = cty.Object(map[string]cty.Type{
	"direction": cty.String,
	"number":    cty.Number,
})

// maxAxisDigits limits the axis number; the letter may be followed by a keyword, as in "x2range".
const maxAxisDigits = 4

func matchAxis(line string, pos int) (Match, bool, error) {
	c := line[pos] | 0x20
	if c != 'x' && c != 'y' && c != 'z' {
		return Match{}, false, nil
	}

	end := pos + 1
	number := 0
	for end < len(line) && isDigit(line[end]) {
		number = number*10 + int(line[end]-'0')
		end++
		if end-pos > maxAxisDigits+1 {
			return Match{}, false, nil
		}
	}
	if end == pos+1 {
		number = 1
	}

	v := cty.ObjectVal(map[string]cty.Value{
		"direction": cty.StringVal(string(c)),
		"number":    cty.NumberIntVal(int64(number)),
	})
	return Match{end, []Item{{Pos: pos, Options: "a", Value: v}}}, true, nil
}

// Unquote returns the content of a quoted string starting at line[pos] and the offset following it.
// Backslash escapes the quote character and itself.
func Unquote(line string, pos int) (string, int, bool) {
	if pos >= len(line) || (line[pos] != '\'' && line[pos] != '"') {
		return "", pos, false
	}

	q := line[pos]
	var sb strings.Builder
	for i := pos + 1; i < len(line); i++ {
		c := line[i]
		switch {
		case c == q:
			return sb.String(), i + 1, true
		case c == '\\' && i+1 < len(line) && (line[i+1] == q || line[i+1] == '\\'):
			i++
			sb.WriteByte(line[i])
		default:
			sb.WriteByte(c)
		}
	}
	return "", pos, false
}

func matchQuoted(line string, pos int) (Match, bool, error) {
	s, end, ok := Unquote(line, pos)
	if !ok {
		return Match{}, false, nil
	}
	return Match{end, []Item{{Pos: pos, Options: "q", Value: cty.StringVal(s)}}}, true, nil
}

var boolWords = map[string]bool{
	"on": true, "yes": true, "true": true,
	"off": false, "no": false, "false": false,
}

func wordAt(line string, pos int) string {
	end := pos
	for end < len(line) && isAlpha(line[end]) {
		end++
	}
	if end < len(line) && (isNameChar(line[end]) || line[end] == '(') {
		return ""
	}
	return line[pos:end]
}

func matchBool(line string, pos int) (Match, bool) {
	w := wordAt(line, pos)
	v, found := boolWords[strings.ToLower(w)]
	if w == "" || !found {
		return Match{}, false
	}
	return Match{pos + len(w), []Item{{Pos: pos, Options: "b", Value: cty.BoolVal(v)}}}, true
}

func matchColour(line string, pos int) (Match, bool) {
	w := wordAt(line, pos)
	if w == "" {
		return Match{}, false
	}

	v, found := LookupColour(w)
	if !found {
		return Match{}, false
	}
	return Match{pos + len(w), []Item{{Pos: pos, Options: "c", Value: v}}}, true
}

// scanNumber returns the end of a numeric literal starting at pos or pos if there is none.
func scanNumber(line string, pos int) int {
	i := pos
	if i < len(line) && (line[i] == '+' || line[i] == '-') {
		i++
	}
	digits := 0
	for i < len(line) && isDigit(line[i]) {
		i++
		digits++
	}
	if i < len(line) && line[i] == '.' {
		i++
		for i < len(line) && isDigit(line[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return pos
	}

	if i < len(line) && (line[i] == 'e' || line[i] == 'E') {
		j := i + 1
		if j < len(line) && (line[j] == '+' || line[j] == '-') {
			j++
		}
		if j < len(line) && isDigit(line[j]) {
			for j < len(line) && isDigit(line[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

// numberEnds returns true if a numeric literal ending at pos is a complete field value,
// i.e. it is not a part of a longer expression.
func numberEnds(line string, pos int) bool {
	if pos >= len(line) {
		return true
	}
	if c := line[pos]; !isSpace(c) && strings.IndexByte(",:;)]}\x1d", c) < 0 {
		return false
	}

	pos = skipSpace(line, pos)
	return pos >= len(line) || strings.IndexByte("+-*/%<>=!&|?.([^", line[pos]) < 0
}

func (m *Matcher) matchNumber(tag, line string, pos int) (Match, bool, error) {
	end := scanNumber(line, pos)
	if end > pos && numberEnds(line, end) {
		v, e := cty.ParseNumberVal(line[pos:end])
		if e == nil {
			if tag[0] == 'd' && !v.AsBigFloat().IsInt() {
				return Match{}, false, &ExprError{IntegerError, pos, "Expected an integer"}
			}
			return Match{end, []Item{{Pos: pos, Options: tag, Value: v}}}, true, nil
		}
	}

	return m.matchExpr(line, pos, tag, Options{})
}

func (m *Matcher) matchExpr(line string, pos int, options string, opts Options) (Match, bool, error) {
	expr, n, e := m.Compiler.Compile(line, pos, opts)
	if e != nil {
		return Match{}, false, e
	}
	return Match{pos + n, []Item{{Pos: pos, Options: options, Expr: expr}}}, true, nil
}

// matchVector matches either width comma-separated components or a single vector expression.
func (m *Matcher) matchVector(tag, line string, pos, width int) (Match, bool, error) {
	first, ok, e := m.matchNumber("u", line, pos)
	if !ok {
		return first, ok, e
	}

	next := skipSpace(line, first.End)
	if next >= len(line) || line[next] != ',' {
		item := first.Items[0]
		if item.Expr == nil {
			return Match{}, false, nil
		}
		item.Options = tag[:1]
		return Match{first.End, []Item{item}}, true, nil
	}

	result := first
	for i := 1; i < width; i++ {
		next = skipSpace(line, result.End)
		if next >= len(line) || line[next] != ',' {
			return Match{}, false, nil
		}

		next = skipSpace(line, next+1)
		if next >= len(line) {
			return Match{}, false, nil
		}
		r, ok, e := m.matchNumber("u", line, next)
		if !ok {
			return Match{}, false, e
		}

		item := r.Items[0]
		item.Offset = i
		result.Items = append(result.Items, item)
		result.End = r.End
	}
	return result, true, nil
}

var descriptions = map[byte]string{
	'a': "an axis name",
	'A': "an angle",
	'b': "a boolean",
	'c': "a colour",
	'C': "a colour",
	'd': "an integer",
	'D': "a distance",
	'e': "an algebraic expression",
	'E': "an algebraic expression",
	'f': "a real, dimensionless number",
	'i': "an integer",
	'o': "an expression",
	'p': "a position vector",
	'P': "a position vector",
	'q': "a string",
	'Q': "a string",
	'r': "a string of text",
	's': "an alphabetical word",
	'S': "a word",
	'u': "a physical quantity",
	'v': "a variable name",
}

// Describe returns a human readable description of a field, e.g. "an integer, or a string".
func Describe(tag string) string {
	return strings.Join(Descriptions(tag), ", or ")
}

// Descriptions returns distinct descriptions of value types allowed by a field tag.
func Descriptions(tag string) []string {
	var parts []string
	for i := 0; i < len(tag); i++ {
		d, found := descriptions[tag[i]]
		if found && !contains(parts, d) {
			parts = append(parts, d)
		}
	}
	return parts
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
