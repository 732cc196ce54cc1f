// Package grammar defines compiled command rules used by the parser.
// Grammar structures are built once by ruledef and never modified afterwards.
package grammar

import (
	"fmt"
	"strings"
)

// Kind is a grammar node type.
type Kind int

const (
	Sequence     Kind = iota // children matched in order
	Optional                 // sequence matched 0 or 1 time
	Repeat1                  // sequence matched 1 or more times
	Repeat0                  // sequence matched 0 or more times
	Permutation              // each child matched 0 or 1 time, in any order
	Alternatives             // first matching child
	Literal                  // keyword or punctuation
	Field                    // typed field
	CodeBlock                // nested command sequence in braces
	DataBlock                // raw lines terminated with END
	Confirm                  // point of no return
)

var kindNames = [...]string{
	"sequence", "optional", "repeat1", "repeat0", "permutation", "alternatives",
	"literal", "field", "codeblock", "datablock", "confirm",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", text)
}

// IsLeaf returns true for nodes matching a single token.
func (k Kind) IsLeaf() bool {
	return k == Literal || k == Field
}

// NoSlot is the slot of nodes that emit nothing.
const NoSlot = -1

// Node is a compiled rule tree node.
type Node struct {
	Kind     Kind    `json:"kind" yaml:"kind"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Text is the literal to match (Literal only).
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	// Output is the value emitted by a literal, defaults to Text.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	// MinLen is the number of characters that must be typed (Literal only).
	MinLen int `json:"minLen,omitempty" yaml:"minLen,omitempty"`
	// Exact literals need no word terminator after them.
	Exact bool `json:"exact,omitempty" yaml:"exact,omitempty"`

	// Tag contains field kind letters, the first one selects the matcher (Field only).
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// Var is the variable name, "X" or empty for nodes without output.
	Var string `json:"var,omitempty" yaml:"var,omitempty"`
	// Slot is the output slot, relative to the enclosing repetition block, or NoSlot.
	// For repetitions it is the slot holding the link to the first block.
	Slot int `json:"slot" yaml:"slot"`
	// Width is the number of slots written by a field.
	Width int `json:"width,omitempty" yaml:"width,omitempty"`

	// Sep is the separator expected between repetitions or 0.
	Sep byte `json:"sep,omitempty" yaml:"sep,omitempty"`
	// ListLen is the size of a repetition block, including the link slot.
	ListLen int `json:"listLen,omitempty" yaml:"listLen,omitempty"`
}

// Describe returns a short human readable description of a node.
func (n *Node) Describe() string {
	switch n.Kind {
	case Literal:
		return "\"" + n.Text + "\""
	case Field:
		return "%" + n.Tag
	default:
		return n.Kind.String()
	}
}

// Var describes a named output slot of a rule.
type Var struct {
	Name  string `json:"name" yaml:"name"`
	Slot  int    `json:"slot" yaml:"slot"`
	Width int    `json:"width" yaml:"width"`
	// List is the name of the repetition containing this variable or empty string.
	List string `json:"list,omitempty" yaml:"list,omitempty"`
}

// Rule is a single top-level command alternative.
type Rule struct {
	Index     int    `json:"index" yaml:"index"`
	Text      string `json:"text" yaml:"text"`
	Directive string `json:"directive,omitempty" yaml:"directive,omitempty"`
	// Len is the number of slots in the fixed part of the record.
	Len  int   `json:"len" yaml:"len"`
	Root *Node `json:"root" yaml:"root"`
	Vars []Var `json:"vars,omitempty" yaml:"vars,omitempty"`
	// Initials contains lower-case letters a command can start with;
	// empty for rules that may start with anything else.
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`
}

// Lookup returns the top-level variable with given name.
func (r *Rule) Lookup(name string) (Var, bool) {
	for _, v := range r.Vars {
		if v.Name == name && v.List == "" {
			return v, true
		}
	}
	return Var{}, false
}

// OtherBucket is the index of dispatch bucket containing rules not starting with a letter.
const OtherBucket = 26

// BucketCount is the number of dispatch buckets.
const BucketCount = 27

// Grammar is a set of rules with dispatch index.
type Grammar struct {
	Rules   []*Rule            `json:"rules" yaml:"rules"`
	Buckets [BucketCount][]int `json:"-" yaml:"-"`
}

// New creates a grammar indexing given rules.
func New(rules []*Rule) *Grammar {
	g := &Grammar{Rules: rules}
	for i, r := range rules {
		r.Index = i
		if r.Initials == "" {
			g.Buckets[OtherBucket] = append(g.Buckets[OtherBucket], i)
			continue
		}

		for _, c := range []byte(r.Initials) {
			b := Bucket(c)
			g.Buckets[b] = append(g.Buckets[b], i)
		}
	}
	return g
}

// Bucket returns dispatch bucket index for the first character of a command.
func Bucket(c byte) int {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	default:
		return OtherBucket
	}
}

// Candidates returns rules that may match a line, in trial order:
// rules from the bucket of the first non-space character, then rules from the other bucket.
func (g *Grammar) Candidates(line string) []*Rule {
	line = strings.TrimLeft(line, " \t")
	var result []*Rule
	b := OtherBucket
	if line != "" {
		b = Bucket(line[0])
	}
	if b != OtherBucket {
		for _, i := range g.Buckets[b] {
			result = append(result, g.Rules[i])
		}
	}
	for _, i := range g.Buckets[OtherBucket] {
		result = append(result, g.Rules[i])
	}
	return result
}

// Completable returns rules offered for tab completion of a line: rules from the bucket of
// the first letter, or all letter-initial rules for a blank line. Other rules are never completed.
func (g *Grammar) Completable(line string) []*Rule {
	line = strings.TrimLeft(line, " \t")
	var result []*Rule
	if line == "" {
		for _, r := range g.Rules {
			if r.Initials != "" {
				result = append(result, r)
			}
		}
		return result
	}

	b := Bucket(line[0])
	if b == OtherBucket {
		return nil
	}
	for _, i := range g.Buckets[b] {
		result = append(result, g.Rules[i])
	}
	return result
}

// Directives returns distinct directive names in declaration order.
func (g *Grammar) Directives() []string {
	var result []string
	seen := make(map[string]bool)
	for _, r := range g.Rules {
		if r.Directive != "" && !seen[r.Directive] {
			seen[r.Directive] = true
			result = append(result, r.Directive)
		}
	}
	return result
}

// FieldKinds lists letters that may start a field tag, each selects a matcher.
const FieldKinds = "aAbcCdDeEfopPqQrsSuv"

// FieldOptions lists letters allowed in the rest of a field tag.
const FieldOptions = FieldKinds + "i"

// FieldWidth returns the number of slots written by a field with given tag.
func FieldWidth(tag string) int {
	if tag == "" {
		return 1
	}

	switch tag[0] {
	case 'p':
		return 2
	case 'P':
		return 3
	default:
		return 1
	}
}

// ValidTag returns true if tag is a known field kind followed by known options.
func ValidTag(tag string) bool {
	if tag == "" || !strings.ContainsRune(FieldKinds, rune(tag[0])) {
		return false
	}
	for _, c := range tag[1:] {
		if !strings.ContainsRune(FieldOptions, c) {
			return false
		}
	}
	return true
}
