package parser

import (
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/source"
)

// Marker replaces a closed code block in the text of a block header.
const Marker = '\x1d'

// Atom is a single value written to an instruction record slot.
// Exactly one of Value, Expr, and Block is set.
type Atom struct {
	Slot int
	// Pos is the byte offset of the value in Record.Text.
	Pos int
	// Options lists acceptable value types, see field.Coerce; empty for deferred expressions.
	Options string
	Value   cty.Value
	Expr    field.Expr
	Block   *Block
}

// Block is the content of a code block or a data block.
// Code block records are parsed commands, data block records contain raw lines only.
type Block struct {
	Kind    grammar.Kind
	Records []*Record
}

// Lines returns the text of all records.
func (b *Block) Lines() []string {
	result := make([]string, len(b.Records))
	for i, r := range b.Records {
		result[i] = r.Text
	}
	return result
}

// BlockType is the capsule type of blocks in materialised records.
var BlockType = cty.Capsule("block", reflect.TypeOf(Block{}))

// BlockVal wraps a block into a cty value.
func BlockVal(b *Block) cty.Value {
	return cty.CapsuleVal(BlockType, b)
}

// AsBlock extracts a block wrapped by BlockVal.
func AsBlock(v cty.Value) (*Block, bool) {
	if v.IsNull() || !v.Type().Equals(BlockType) {
		return nil, false
	}
	return v.EncapsulatedValue().(*Block), true
}

// Record is an instruction record: the result of parsing a single command.
// Records of raw data lines and of lines stored for later macro expansion have no rule and no atoms.
type Record struct {
	Rule *grammar.Rule
	// Text is the matched text, closed code blocks are replaced with Marker.
	Text   string
	Source source.Line
	Atoms  []Atom
	// Len is the number of slots, grows with every repetition block.
	Len int
	// ContainsMacros is set for lines that must be expanded and parsed again before execution.
	ContainsMacros bool
}

func newRecord(r *grammar.Rule, line source.Line, text string) *Record {
	return &Record{Rule: r, Text: text, Source: line, Len: r.Len}
}

// Directive returns the directive of the matched rule or empty string.
func (r *Record) Directive() string {
	if r.Rule == nil {
		return ""
	}
	return r.Rule.Directive
}

// Pos converts a byte offset in record text to a source position.
func (r *Record) Pos(offset int) source.Pos {
	return r.Source.WithText(r.Text).Pos(offset)
}

// String returns record text with closed blocks shown as braces.
func (r *Record) String() string {
	return strings.ReplaceAll(r.Text, string(Marker), "{...}")
}

func (r *Record) write(a Atom) {
	r.Atoms = append(r.Atoms, a)
}

// allocate reserves a repetition block and returns the offset of its first slot.
func (r *Record) allocate(size int) int {
	result := r.Len
	r.Len += size
	return result
}
