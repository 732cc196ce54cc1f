package parser

import (
	"errors"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/grammar"
)

// WriteMode tells the matcher whether to emit atoms.
type WriteMode int

const (
	DryRun WriteMode = iota
	Commit
)

// Outcome is the result of matching a grammar node.
type Outcome int

const (
	Fail Outcome = iota
	Success
	TabCompletion
	NeedMoreInput
)

var outcomeNames = [...]string{"fail", "success", "completion", "need more input"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// FilenameCandidate is the completion candidate requesting filename completion.
const FilenameCandidate = "\n"

// Candidate is a tab completion suggestion: Text replaces the line tail starting at Start.
type Candidate struct {
	Text  string
	Start int
}

// matchContext holds the state of a single attempt to match a rule against a line.
type matchContext struct {
	parser *Parser
	text   string
	rec    *Record
	// blocks are closed code blocks, one for each Marker in text
	blocks []*Block
	// data are data blocks to be filled after the line is matched
	data      []*Block
	exp       *expecting
	committed bool
	hard      bool
	// braceAt is the offset of the opening brace of a code block or -1 if the line ended before it
	braceAt int

	completing bool
	skip       int
	candidate  Candidate
	exactEnd   int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && isSpace(text[pos]) {
		pos++
	}
	return pos
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnumWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// matchWord matches a literal at text[pos:] and returns the offset following it.
// At least MinLen characters must be typed; unless the literal is exact it must be followed
// by a space, the end of text, or (for alphanumeric literals) a punctuation character.
func matchWord(text string, pos int, n *grammar.Node) (int, bool) {
	l := 0
	for l < len(n.Text) && pos+l < len(text) && lower(text[pos+l]) == lower(n.Text[l]) {
		l++
	}
	end := pos + l
	if n.Exact {
		return end, l == len(n.Text)
	}
	if l < n.MinLen {
		return pos, false
	}

	if end < len(text) {
		c := text[end]
		if !isSpace(c) && (isNameChar(c) || !isAlnumWord(n.Text)) {
			return pos, false
		}
	}
	return end, true
}

// failHard returns true if a failed attempt has passed a confirm marker that was not passed before it.
func (mc *matchContext) failHard(wasCommitted bool) bool {
	if mc.completing {
		return false
	}
	if mc.committed && !wasCommitted {
		mc.hard = true
	}
	return mc.hard
}

func (mc *matchContext) match(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	switch n.Kind {
	case grammar.Sequence:
		return mc.matchSeq(n.Children, pos, base, mode)
	case grammar.Optional:
		return mc.matchOptional(n, pos, base, mode)
	case grammar.Repeat1, grammar.Repeat0:
		return mc.matchRepeat(n, pos, base, mode)
	case grammar.Permutation:
		return mc.matchPermutation(n, pos, base, mode)
	case grammar.Alternatives:
		return mc.matchAlternatives(n, pos, base, mode)
	case grammar.Literal:
		return mc.matchLiteral(n, pos, base, mode)
	case grammar.Field:
		return mc.matchField(n, pos, base, mode)
	case grammar.CodeBlock:
		return mc.matchCodeBlock(n, pos, base, mode)
	case grammar.DataBlock:
		if mode == Commit {
			b := &Block{Kind: grammar.DataBlock}
			mc.data = append(mc.data, b)
			mc.writeBlock(n, pos, base, b)
		}
		return Success, pos
	case grammar.Confirm:
		mc.committed = true
		return Success, pos
	}
	return Fail, pos
}

func (mc *matchContext) matchSeq(nodes []*grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	cur := pos
	for _, n := range nodes {
		out, end := mc.match(n, cur, base, mode)
		switch out {
		case Success:
			cur = end
		case Fail:
			return Fail, pos
		default:
			return out, end
		}
	}
	return Success, cur
}

func (mc *matchContext) matchOptional(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	wasCommitted := mc.committed
	out, end := mc.matchSeq(n.Children, pos, base, DryRun)
	switch out {
	case Fail:
		if mc.failHard(wasCommitted) {
			return Fail, pos
		}
		return Success, pos
	case Success, NeedMoreInput:
		if mode == Commit {
			return mc.matchSeq(n.Children, pos, base, Commit)
		}
	}
	return out, end
}

func (mc *matchContext) matchAlternatives(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	wasCommitted := mc.committed
	for _, c := range n.Children {
		out, end := mc.match(c, pos, base, DryRun)
		switch out {
		case Fail:
			if mc.failHard(wasCommitted) {
				return Fail, pos
			}
			continue
		case Success, NeedMoreInput:
			if mode == Commit {
				return mc.match(c, pos, base, Commit)
			}
		}
		return out, end
	}
	return Fail, pos
}

func (mc *matchContext) matchPermutation(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	wasCommitted := mc.committed
	used := make([]bool, len(n.Children))
	cur := pos
	for progress := true; progress; {
		progress = false
		for i, c := range n.Children {
			if used[i] {
				continue
			}

			out, end := mc.match(c, cur, base, DryRun)
			switch out {
			case Fail:
				if mc.failHard(wasCommitted) {
					return Fail, pos
				}
				continue
			case TabCompletion:
				return out, end
			}

			if mode == Commit {
				out, end = mc.match(c, cur, base, Commit)
			}
			used[i] = true
			if out == NeedMoreInput {
				return out, end
			}
			if end > cur {
				progress = true
			}
			cur = end
		}
	}
	return Success, cur
}

// matchRepeat matches a repetition. In commit mode every recorded iteration gets a new block
// of the record; the first slot of each block links to the next one, the last link is 0.
// A separator is required between iterations; an item failing after a separator fails the list.
// A blank first item of a separated list is not recorded.
func (mc *matchContext) matchRepeat(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	wasCommitted := mc.committed
	link := base + n.Slot
	cur := pos
	count := 0
	for {
		start := cur
		if count > 0 && n.Sep != 0 {
			p := skipSpace(mc.text, cur)
			if p >= len(mc.text) || mc.text[p] != n.Sep {
				mc.exp.add(p, "\""+string(n.Sep)+"\"")
				break
			}
			start = p + 1
		}

		out, end := mc.matchSeq(n.Children, start, 0, DryRun)
		if out == TabCompletion {
			return out, end
		}
		if out == Fail {
			if mc.failHard(wasCommitted) || (count > 0 && n.Sep != 0) {
				return Fail, pos
			}
			break
		}

		blank := end == start
		if blank && n.Sep == 0 && count > 0 {
			break
		}

		if mode == Commit && !(blank && count == 0 && n.Sep != 0) {
			block := mc.rec.allocate(n.ListLen)
			mc.writeLink(link, block, start)
			out, end = mc.matchSeq(n.Children, start, block, Commit)
			link = block
		}
		count++
		cur = end
		if out == NeedMoreInput {
			return out, end
		}
		if blank && n.Sep == 0 {
			break
		}
	}

	if count == 0 && n.Kind == grammar.Repeat1 {
		return Fail, pos
	}
	if mode == Commit {
		mc.writeLink(link, 0, cur)
	}
	return Success, cur
}

func (mc *matchContext) writeLink(slot, value, pos int) {
	mc.rec.write(Atom{Slot: slot, Pos: pos, Value: cty.NumberIntVal(int64(value))})
}

func (mc *matchContext) writeBlock(n *grammar.Node, pos, base int, b *Block) {
	if n.Slot != grammar.NoSlot {
		mc.rec.write(Atom{Slot: base + n.Slot, Pos: pos, Block: b})
	}
}

// offer returns a completion candidate unless it must be skipped.
func (mc *matchContext) offer(c Candidate) Outcome {
	if mc.skip > 0 {
		mc.skip--
		return Fail
	}

	mc.candidate = c
	return TabCompletion
}

// completionAllowed returns false for the end of a word that is not terminated yet.
func (mc *matchContext) completionAllowed(pos int) bool {
	return pos == 0 || !isNameChar(mc.text[pos-1]) || mc.exactEnd == pos
}

func (mc *matchContext) matchLiteral(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	pos = skipSpace(mc.text, pos)
	if mc.completing {
		rest := mc.text[pos:]
		typed := n.Exact && strings.EqualFold(rest, n.Text)
		if !typed && len(rest) <= len(n.Text) && strings.EqualFold(rest, n.Text[:len(rest)]) &&
			(rest != "" || mc.completionAllowed(pos)) {
			return mc.offer(Candidate{n.Text, pos}), pos
		}
	}

	end, ok := matchWord(mc.text, pos, n)
	if !ok {
		mc.exp.addNode(pos, n)
		return Fail, pos
	}

	if n.Exact {
		mc.exactEnd = end
	}
	if mode == Commit && n.Slot != grammar.NoSlot {
		mc.rec.write(Atom{Slot: base + n.Slot, Pos: pos, Value: cty.StringVal(n.Output)})
	}
	return Success, end
}

func isFileVar(name string) bool {
	return name == "filename" || name == "directory"
}

// completeFile offers filename completion if the field is the last thing typed.
func (mc *matchContext) completeFile(pos int) (Outcome, bool) {
	rest := mc.text[pos:]
	if rest == "" {
		if !mc.completionAllowed(pos) {
			return Fail, false
		}
	} else if rest[0] == '\'' || rest[0] == '"' {
		if _, _, closed := field.Unquote(mc.text, pos); closed {
			return Fail, false
		}
	} else if strings.ContainsAny(rest, " \t") {
		return Fail, false
	}

	return mc.offer(Candidate{FilenameCandidate, pos}), true
}

func (mc *matchContext) matchField(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	pos = skipSpace(mc.text, pos)
	if mc.completing && isFileVar(n.Var) {
		if out, ok := mc.completeFile(pos); ok {
			return out, pos
		}
	}

	m, ok, e := mc.parser.fields.Match(n.Tag, mc.text, pos)
	if e != nil {
		var ee *field.ExprError
		if errors.As(e, &ee) {
			mc.exp.addFieldError(ee)
		}
	}
	if !ok || e != nil {
		mc.exp.addNode(pos, n)
		return Fail, pos
	}

	if mode == Commit && n.Slot != grammar.NoSlot {
		for _, item := range m.Items {
			mc.rec.write(Atom{
				Slot:    base + n.Slot + item.Offset,
				Pos:     item.Pos,
				Options: item.Options,
				Value:   item.Value,
				Expr:    item.Expr,
			})
		}
	}
	return Success, m.End
}

// matchCodeBlock matches a closed block (Marker) or an opening brace.
// Brace or end of text suspend matching until the block body is read.
func (mc *matchContext) matchCodeBlock(n *grammar.Node, pos, base int, mode WriteMode) (Outcome, int) {
	pos = skipSpace(mc.text, pos)
	if pos >= len(mc.text) {
		mc.braceAt = -1
		return NeedMoreInput, pos
	}

	switch mc.text[pos] {
	case Marker:
		k := strings.Count(mc.text[:pos], string(Marker))
		if k < len(mc.blocks) {
			if mode == Commit {
				mc.writeBlock(n, pos, base, mc.blocks[k])
			}
			return Success, pos + 1
		}
	case '{':
		mc.braceAt = pos
		return NeedMoreInput, pos + 1
	}

	mc.exp.addNode(pos, n)
	return Fail, pos
}
