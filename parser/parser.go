// Package parser matches command lines against compiled rules and builds instruction records.
//
// A line is matched against candidate rules of the grammar in dispatch order, the first rule
// matching the whole line wins. Matching a rule never changes the grammar, all state of an attempt
// lives in a matching context. Commands containing code blocks or data blocks span several lines,
// the parser keeps the continuation state between calls to Parse.
package parser

import (
	"context"
	"strings"

	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/internal/ctxlog"
	"github.com/ava12/plotline/source"
)

// DefaultMaxDepth is the default limit of code block nesting.
const DefaultMaxDepth = 128

// Expander expands macros in a line before it is matched; macro.Expander implements it.
type Expander interface {
	Expand(ctx context.Context, line source.Line) (string, error)
	// HasMarkers returns true if the text contains anything Expand would replace.
	HasMarkers(text string) bool
}

// Options configure a parser. Zero values select defaults.
type Options struct {
	MaxDepth int
	// Fields matches typed fields, default uses field.HCLCompiler.
	Fields *field.Matcher
	// Macros expands top-level lines, nil disables macro expansion.
	Macros Expander
}

// Parser converts lines to instruction records. A parser keeps continuation state and
// must not be used concurrently.
type Parser struct {
	grammar  *grammar.Grammar
	fields   *field.Matcher
	macros   Expander
	maxDepth int
	frames   []*frame
}

// New creates a parser for given grammar, opts may be nil.
func New(g *grammar.Grammar, opts *Options) *Parser {
	if opts == nil {
		opts = &Options{}
	}

	p := &Parser{grammar: g, fields: opts.Fields, macros: opts.Macros, maxDepth: opts.MaxDepth}
	if p.fields == nil {
		p.fields = field.NewMatcher(nil)
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	return p
}

func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Result is the result of parsing a line.
type Result struct {
	// Record is a finished top-level command or nil.
	Record *Record
	// More is set if the command is not finished yet.
	More bool
	// Prompt describes open constructs while More is set, e.g. "for.if" or "plot.data".
	Prompt string
}

// Parse parses the next line of input. Blank and comment lines outside of blocks yield an empty result.
// On error the continuation state is discarded.
func (p *Parser) Parse(ctx context.Context, line source.Line) (Result, error) {
	res, e := p.parse(ctx, line)
	if e != nil {
		p.Reset()
		return Result{}, e
	}
	return res, nil
}

// Pending returns true if a multi-line command is being read.
func (p *Parser) Pending() bool {
	return len(p.frames) > 0
}

// Prompt returns the continuation prompt or empty string.
func (p *Parser) Prompt() string {
	names := make([]string, len(p.frames))
	for i, f := range p.frames {
		names[i] = f.name()
	}
	return strings.Join(names, ".")
}

// Reset discards the continuation state.
func (p *Parser) Reset() {
	p.frames = nil
}

func isBlank(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t[0] == '#'
}

func (p *Parser) expand(ctx context.Context, line source.Line) (string, error) {
	if p.macros == nil {
		return line.Text(), nil
	}
	return p.macros.Expand(ctx, line)
}

func (p *Parser) parse(ctx context.Context, line source.Line) (Result, error) {
	if len(p.frames) == 0 {
		if isBlank(line.Text()) {
			return Result{}, nil
		}

		text, e := p.expand(ctx, line)
		if e != nil {
			return Result{}, e
		}
		return p.compile(ctx, line, text, 0, nil)
	}

	f := p.frames[len(p.frames)-1]
	if f.data {
		return p.feedData(ctx, f, line)
	}
	return p.feedCode(ctx, f, line)
}

// lineResult is the result of matching a single logical line.
type lineResult struct {
	outcome Outcome
	record  *Record
	data    []*Block
	braceAt int
}

// matchLine tries candidate rules in dispatch order. Returns Success or NeedMoreInput outcome or an error.
func (p *Parser) matchLine(ctx context.Context, line source.Line, text string, blocks []*Block) (lineResult, error) {
	log := ctxlog.FromContext(ctx)
	start := skipSpace(text, 0)
	exp := newExpecting()
	for _, r := range p.grammar.Candidates(text) {
		mc := &matchContext{
			parser:   p,
			text:     text,
			rec:      newRecord(r, line, text),
			blocks:   blocks,
			exp:      newExpecting(),
			braceAt:  -1,
			exactEnd: -1,
		}
		out, end := mc.match(r.Root, 0, 0, Commit)
		log.Debug("rule matched", "rule", r.Index, "directive", r.Directive, "outcome", out)

		switch out {
		case Success:
			end = skipSpace(text, end)
			if end >= len(text) {
				return lineResult{Success, mc.rec, mc.data, -1}, nil
			}
			mc.exp.add(end, endOfCommand)
		case NeedMoreInput:
			return lineResult{NeedMoreInput, mc.rec, nil, mc.braceAt}, nil
		}

		// a rule failed past its confirm marker, other rules are not tried
		if mc.committed {
			return lineResult{}, mc.exp.err(line, text, start)
		}
		exp.merge(mc.exp)
	}

	return lineResult{}, exp.err(line, text, start)
}

// Complete returns the n-th completion candidate (counting from 0) for the end of text.
// Candidates may repeat, FilenameCandidate requests filename completion of text[Start:].
// Only rules starting with a letter take part in completion.
func (p *Parser) Complete(text string, n int) (Candidate, bool) {
	rules := p.grammar.Completable(text)
	mc := &matchContext{parser: p, text: text, exp: newExpecting(), completing: true, skip: n}
	for _, r := range rules {
		mc.committed, mc.hard, mc.exactEnd = false, false, -1
		if out, _ := mc.match(r.Root, 0, 0, DryRun); out == TabCompletion {
			return mc.candidate, true
		}
	}
	return Candidate{}, false
}

// Resolve parses again a record stored with ContainsMacros flag, expanding macros first.
// Other records are returned as is.
func (p *Parser) Resolve(ctx context.Context, r *Record) (*Record, error) {
	if !r.ContainsMacros {
		return r, nil
	}
	if p.macros == nil {
		return nil, macroModeError(r.Pos(0))
	}

	text, e := p.macros.Expand(ctx, r.Source.WithText(r.Text))
	if e != nil {
		return nil, e
	}

	lr, e := p.matchLine(ctx, r.Source, text, nil)
	if e != nil {
		return nil, e
	}
	if lr.outcome != Success || len(lr.data) > 0 {
		return nil, incompleteError(r.Source.WithText(text).Pos(len(text)))
	}
	return lr.record, nil
}
