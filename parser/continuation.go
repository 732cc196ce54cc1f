package parser

import (
	"context"
	"strings"

	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/internal/ctxlog"
	"github.com/ava12/plotline/source"
)

const dataEnd = "END"

// frame is an open multi-line construct.
// A code frame holds a block header: the text up to the opening brace with closed blocks
// replaced by Marker. The header is matched again every time a block closes,
// so "} else {" continues the same command. A data frame holds a finished record
// waiting for the content of its data blocks.
type frame struct {
	data      bool
	depth     int
	directive string
	line      source.Line
	header    string
	blocks    []*Block
	open      *Block

	record  *Record
	pending []*Block
}

func (f *frame) name() string {
	if f.data || f.directive == "" {
		return "data"
	}
	return f.directive
}

func (p *Parser) push(ctx context.Context, f *frame) {
	p.frames = append(p.frames, f)
	ctxlog.FromContext(ctx).Debug("continuation", "push", f.name(), "depth", len(p.frames))
}

func (p *Parser) pop(ctx context.Context) *frame {
	f := p.frames[len(p.frames)-1]
	p.frames = p.frames[:len(p.frames)-1]
	ctxlog.FromContext(ctx).Debug("continuation", "pop", f.name(), "depth", len(p.frames))
	return f
}

func (p *Parser) more() Result {
	return Result{More: true, Prompt: p.Prompt()}
}

// compile matches a command at given nesting depth. blocks are code blocks closed so far.
func (p *Parser) compile(ctx context.Context, line source.Line, text string, depth int, blocks []*Block) (Result, error) {
	lr, e := p.matchLine(ctx, line, text, blocks)
	if e != nil {
		return Result{}, e
	}
	if lr.outcome == Success {
		return p.finish(ctx, lr.record, lr.data)
	}

	f := &frame{
		depth:     depth,
		directive: lr.record.Directive(),
		line:      line,
		header:    text,
		blocks:    blocks,
	}
	if lr.braceAt < 0 {
		p.push(ctx, f)
		return p.more(), nil
	}

	if depth+1 > p.maxDepth {
		return Result{}, depthError(line.WithText(text).Pos(lr.braceAt))
	}

	f.header = text[:lr.braceAt]
	f.open = &Block{Kind: grammar.CodeBlock}
	p.push(ctx, f)
	if rest := text[lr.braceAt+1:]; !isBlank(rest) {
		return p.feedCode(ctx, f, line.WithText(rest))
	}
	return p.more(), nil
}

// finish hands a matched record over, reading its data blocks first.
func (p *Parser) finish(ctx context.Context, r *Record, data []*Block) (Result, error) {
	if len(data) > 0 {
		p.push(ctx, &frame{data: true, record: r, pending: data})
		return p.more(), nil
	}
	return p.deliver(r), nil
}

// deliver appends a finished record to the innermost open code block or returns it as a result.
func (p *Parser) deliver(r *Record) Result {
	if len(p.frames) == 0 {
		return Result{Record: r}
	}

	f := p.frames[len(p.frames)-1]
	f.open.Records = append(f.open.Records, r)
	return p.more()
}

func (p *Parser) feedCode(ctx context.Context, f *frame, line source.Line) (Result, error) {
	text := line.Text()
	if f.open != nil {
		t := strings.TrimLeft(text, " \t")
		if !strings.HasPrefix(t, "}") {
			return p.body(ctx, f, line)
		}

		f.blocks = append(f.blocks, f.open)
		f.open = nil
		text = string(Marker) + t[1:]
	}

	if f.depth == 0 {
		var e error
		text, e = p.expand(ctx, line.WithText(text))
		if e != nil {
			return Result{}, e
		}
	}

	if f.open == nil && !strings.HasPrefix(text, string(Marker)) {
		text = " " + text
	}
	p.pop(ctx)
	return p.compile(ctx, f.line, f.header+text, f.depth, f.blocks)
}

// body compiles a line inside of a code block. Lines with macros are stored as is
// to be expanded by Resolve before execution.
func (p *Parser) body(ctx context.Context, f *frame, line source.Line) (Result, error) {
	text := line.Text()
	if isBlank(text) {
		return p.more(), nil
	}

	if p.macros != nil && p.macros.HasMarkers(text) && !strings.HasSuffix(strings.TrimSpace(text), "{") {
		r := &Record{Text: text, Source: line, ContainsMacros: true}
		f.open.Records = append(f.open.Records, r)
		return p.more(), nil
	}

	return p.compile(ctx, line, text, f.depth+1, nil)
}

func (p *Parser) feedData(ctx context.Context, f *frame, line source.Line) (Result, error) {
	if strings.TrimSpace(line.Text()) != dataEnd {
		b := f.pending[0]
		b.Records = append(b.Records, &Record{Text: line.Text(), Source: line})
		return p.more(), nil
	}

	f.pending = f.pending[1:]
	if len(f.pending) > 0 {
		return p.more(), nil
	}

	p.pop(ctx)
	return p.deliver(f.record), nil
}
