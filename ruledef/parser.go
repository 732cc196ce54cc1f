package ruledef

import (
	"strconv"
	"strings"

	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/source"
)

const (
	noVar         = "X"
	directiveVar  = "directive"
	codeBlockWord = "CODEBLOCK"
	dataBlockWord = "DATABLOCK"
)

// fixed slots of the root scope, slot 3 is reserved for X and never written
var fixedSlots = map[string]int{
	directiveVar: 0,
	"editno":     1,
	"set_option": 2,
}

const firstFreeSlot = 4

// ParseString parses rule table and returns a grammar on success.
// Returns nil and plotline.Error on error.
func ParseString(name, content string) (*grammar.Grammar, error) {
	return Parse(source.New(name, []byte(content)))
}

// ParseBytes parses rule table and returns a grammar on success.
// Returns nil and plotline.Error on error.
func ParseBytes(name string, content []byte) (*grammar.Grammar, error) {
	return Parse(source.New(name, content))
}

// Parse parses rule table and returns a grammar on success.
// Returns nil and plotline.Error on error.
func Parse(s *source.Source) (*grammar.Grammar, error) {
	var rules []*grammar.Rule
	for _, l := range logicalLines(s) {
		r, e := parseRule(l)
		if e != nil {
			return nil, e
		}

		rules = append(rules, r)
	}
	return grammar.New(rules), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s *source.Source) *grammar.Grammar {
	g, e := Parse(s)
	if e != nil {
		panic(e)
	}
	return g
}

type segment struct {
	offset int
	line   source.Line
}

type logicalLine struct {
	text     string
	segments []segment
}

func (l logicalLine) pos(offset int) source.Pos {
	seg := l.segments[0]
	for _, s := range l.segments[1:] {
		if s.offset > offset {
			break
		}
		seg = s
	}
	return seg.line.Pos(offset - seg.offset)
}

func logicalLines(s *source.Source) []logicalLine {
	var (
		result  []logicalLine
		current logicalLine
		open    bool
	)

	for i := 1; i <= s.Len(); i++ {
		line := s.Line(i)
		text := strings.TrimRight(line.Text(), " \t")
		trimmed := strings.TrimSpace(text)
		if !open && (trimmed == "" || trimmed[0] == '#') {
			continue
		}

		continued := strings.HasSuffix(text, "\\")
		if continued {
			text = text[:len(text)-1]
		}

		if open {
			current.text += " "
		} else {
			current = logicalLine{}
		}
		current.segments = append(current.segments, segment{len(current.text), line})
		current.text += text
		open = continued
		if !open {
			result = append(result, current)
		}
	}

	if open {
		result = append(result, current)
	}
	return result
}

type word struct {
	text   string
	offset int
}

func splitWords(text string) []word {
	var result []word
	start := -1
	for i := 0; i <= len(text); i++ {
		space := i == len(text) || text[i] == ' ' || text[i] == '\t'
		if space && start >= 0 {
			result = append(result, word{text[start:i], start})
			start = -1
		} else if !space && start < 0 {
			start = i
		}
	}
	return result
}

type scope struct {
	vars  map[string]*grammar.Var
	order []*grammar.Var
	next  int
}

func newScope(next int) *scope {
	return &scope{vars: make(map[string]*grammar.Var), next: next}
}

type ruleParser struct {
	line         logicalLine
	words        []word
	index        int
	scopes       []*scope
	directive    string
	hasDirective bool
}

func parseRule(l logicalLine) (*grammar.Rule, error) {
	p := &ruleParser{
		line:   l,
		words:  splitWords(l.text),
		scopes: []*scope{newScope(firstFreeSlot)},
	}

	items, _, e := p.parseItems("")
	if e != nil {
		return nil, e
	}
	if len(items) == 0 {
		return nil, emptyRuleError(l.pos(0))
	}

	root := &grammar.Node{Kind: grammar.Sequence, Children: items, Slot: grammar.NoSlot}
	rs := p.scopes[0]
	r := &grammar.Rule{
		Text:      strings.TrimSpace(l.text),
		Directive: p.directive,
		Len:       rs.next,
		Root:      root,
		Initials:  firstOfSeq(items).initials(),
	}
	for _, v := range rs.order {
		r.Vars = append(r.Vars, *v)
	}
	return r, nil
}

func (p *ruleParser) pos(w word) source.Pos {
	return p.line.pos(w.offset)
}

func (p *ruleParser) scope() *scope {
	return p.scopes[len(p.scopes)-1]
}

func (p *ruleParser) alloc(name string, width int, w word) (int, error) {
	if name == "" || name == noVar {
		return grammar.NoSlot, nil
	}

	sc := p.scope()
	if v, has := sc.vars[name]; has {
		if v.Width != width {
			return 0, widthError(p.pos(w), name)
		}
		return v.Slot, nil
	}

	v := &grammar.Var{Name: name, Width: width}
	if slot, fixed := fixedSlots[name]; fixed && len(p.scopes) == 1 {
		if width != 1 {
			return 0, widthError(p.pos(w), name)
		}
		v.Slot = slot
	} else {
		v.Slot = sc.next
		sc.next += width
	}
	sc.vars[name] = v
	sc.order = append(sc.order, v)
	return v.Slot, nil
}

// parseItems reads words up to one of closers and returns the closing word or nil if words are exhausted.
func (p *ruleParser) parseItems(closers string) ([]*grammar.Node, *word, error) {
	var items []*grammar.Node
	for p.index < len(p.words) {
		w := p.words[p.index]
		p.index++
		t := w.text
		var (
			n *grammar.Node
			e error
		)

		switch {
		case t == "=":
			n = &grammar.Node{Kind: grammar.Confirm, Slot: grammar.NoSlot}
		case t == "{":
			n, e = p.parseOptional(w)
		case t == "<":
			n, e = p.parseChoice(w, grammar.Alternatives, "|>")
		case t == "(":
			n, e = p.parseChoice(w, grammar.Permutation, "~)")
		case t == "[":
			n, e = p.parseRepeat(w)
		case t == "|" || t == "~":
			if strings.Contains(closers, t) {
				return items, &w, nil
			}
			return nil, nil, separatorError(p.pos(w), t)
		case strings.IndexByte("}>)]", t[0]) >= 0:
			if strings.IndexByte(closers, t[0]) < 0 {
				return nil, nil, mismatchedError(p.pos(w), t[:1])
			}
			if t[0] != ']' && len(t) > 1 {
				return nil, nil, storageError(p.pos(w), t)
			}
			return items, &w, nil
		case t[0] == '%':
			n, e = p.parseField(w)
		case isBlockWord(t, codeBlockWord):
			n, e = p.parseBlock(w, grammar.CodeBlock, codeBlockWord)
		case isBlockWord(t, dataBlockWord):
			n, e = p.parseBlock(w, grammar.DataBlock, dataBlockWord)
		default:
			n, e = p.parseLiteral(w)
		}

		if e != nil {
			return nil, nil, e
		}
		items = append(items, n)
	}

	return items, nil, nil
}

func isBlockWord(t, keyword string) bool {
	return t == keyword || strings.HasPrefix(t, keyword+":")
}

func collapse(items []*grammar.Node) *grammar.Node {
	if len(items) == 1 {
		return items[0]
	}
	return &grammar.Node{Kind: grammar.Sequence, Children: items, Slot: grammar.NoSlot}
}

func (p *ruleParser) parseOptional(opener word) (*grammar.Node, error) {
	items, closer, e := p.parseItems("}")
	if e != nil {
		return nil, e
	}
	if closer == nil {
		return nil, unbalancedError(p.pos(opener), opener.text)
	}

	return &grammar.Node{Kind: grammar.Optional, Children: items, Slot: grammar.NoSlot}, nil
}

func (p *ruleParser) parseChoice(opener word, kind grammar.Kind, seps string) (*grammar.Node, error) {
	n := &grammar.Node{Kind: kind, Slot: grammar.NoSlot}
	for {
		items, closer, e := p.parseItems(seps)
		if e != nil {
			return nil, e
		}
		if closer == nil {
			return nil, unbalancedError(p.pos(opener), opener.text)
		}

		n.Children = append(n.Children, collapse(items))
		if closer.text[0] == seps[1] {
			return n, nil
		}
	}
}

func (p *ruleParser) parseRepeat(opener word) (*grammar.Node, error) {
	p.scopes = append(p.scopes, newScope(1))
	items, closer, e := p.parseItems("]")
	if e != nil {
		return nil, e
	}
	if closer == nil {
		return nil, unbalancedError(p.pos(opener), opener.text)
	}

	inner := p.scope()
	p.scopes = p.scopes[:len(p.scopes)-1]
	n := &grammar.Node{Kind: grammar.Repeat1, Children: items, ListLen: inner.next}

	name, valid := strings.CutPrefix(closer.text, "]:")
	if strings.HasPrefix(name, "@") {
		n.Kind = grammar.Repeat0
		name = name[1:]
	}
	if name != "" && !isWordChar(name[len(name)-1]) {
		n.Sep = name[len(name)-1]
		name = name[:len(name)-1]
	}
	if !valid || name == "" || name == noVar {
		return nil, storageError(p.pos(*closer), closer.text)
	}

	n.Var = name
	n.Slot, e = p.alloc(name, 1, *closer)
	if e != nil {
		return nil, e
	}

	outer := p.scope()
	for _, v := range inner.order {
		if v.List == "" {
			v.List = name
		}
		if !hasVar(outer.order, v) {
			outer.order = append(outer.order, v)
		}
	}
	return n, nil
}

func hasVar(vars []*grammar.Var, v *grammar.Var) bool {
	for _, x := range vars {
		if x.Name == v.Name && x.List == v.List && x.Slot == v.Slot {
			return true
		}
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *ruleParser) parseField(w word) (*grammar.Node, error) {
	parts := strings.Split(w.text[1:], ":")
	if len(parts) > 2 {
		return nil, malformedWordError(p.pos(w), w.text)
	}
	if !grammar.ValidTag(parts[0]) {
		return nil, fieldKindError(p.pos(w), w.text)
	}

	n := &grammar.Node{Kind: grammar.Field, Tag: parts[0], Var: noVar, Width: grammar.FieldWidth(parts[0])}
	if len(parts) > 1 && parts[1] != "" {
		n.Var = parts[1]
	}

	var e error
	n.Slot, e = p.alloc(n.Var, n.Width, w)
	return n, e
}

func (p *ruleParser) parseBlock(w word, kind grammar.Kind, keyword string) (*grammar.Node, error) {
	n := &grammar.Node{Kind: kind, Var: noVar, Width: 1}
	if name := strings.TrimPrefix(w.text, keyword+":"); name != w.text && name != "" {
		n.Var = name
	}

	var e error
	n.Slot, e = p.alloc(n.Var, 1, w)
	return n, e
}

// parseLiteral handles [\]text[@n|@k][:var[:output]] words.
// The first character always belongs to the text, so ":@n" matches a colon.
func (p *ruleParser) parseLiteral(w word) (*grammar.Node, error) {
	text := w.text
	if len(text) > 1 && text[0] == '\\' {
		text = text[1:]
	}

	parts := strings.Split(text[1:], ":")
	parts[0] = text[:1] + parts[0]
	if len(parts) > 3 {
		return nil, malformedWordError(p.pos(w), w.text)
	}

	match := parts[0]
	n := &grammar.Node{Kind: grammar.Literal, Var: noVar}
	if i := strings.IndexByte(match[1:], '@'); i >= 0 {
		abbr := match[i+2:]
		match = match[:i+1]
		if abbr == "n" {
			n.Exact = true
			n.MinLen = len(match)
		} else {
			k, e := strconv.Atoi(abbr)
			if e != nil || k < 1 || k > len(match) {
				return nil, abbreviationError(p.pos(w), w.text)
			}
			n.MinLen = k
		}
	} else {
		n.MinLen = len(match)
	}

	n.Text = match
	n.Output = match
	if len(parts) > 1 && parts[1] != "" {
		n.Var = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		n.Output = parts[2]
	}

	if n.Var == directiveVar && !p.hasDirective {
		p.hasDirective = true
		p.directive = n.Output
	}

	var e error
	n.Slot, e = p.alloc(n.Var, 1, w)
	return n, e
}

type firstSet struct {
	letters  [26]bool
	other    bool
	nullable bool
}

func (f *firstSet) merge(g firstSet) {
	for i, l := range g.letters {
		f.letters[i] = f.letters[i] || l
	}
	f.other = f.other || g.other
}

func (f firstSet) initials() string {
	if f.other || f.nullable {
		return ""
	}

	var sb strings.Builder
	for i, l := range f.letters {
		if l {
			sb.WriteByte(byte('a' + i))
		}
	}
	return sb.String()
}

func firstOfSeq(nodes []*grammar.Node) firstSet {
	result := firstSet{nullable: true}
	for _, n := range nodes {
		f := firstOf(n)
		result.merge(f)
		if !f.nullable {
			result.nullable = false
			break
		}
	}
	return result
}

func firstOf(n *grammar.Node) firstSet {
	var result firstSet
	switch n.Kind {
	case grammar.Sequence, grammar.Repeat1:
		result = firstOfSeq(n.Children)
	case grammar.Optional, grammar.Repeat0:
		result = firstOfSeq(n.Children)
		result.nullable = true
	case grammar.Permutation:
		result.nullable = true
		for _, c := range n.Children {
			result.merge(firstOf(c))
		}
	case grammar.Alternatives:
		for _, c := range n.Children {
			f := firstOf(c)
			result.merge(f)
			result.nullable = result.nullable || f.nullable
		}
	case grammar.Literal:
		c := n.Text[0]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 'a' && c <= 'z' {
			result.letters[c-'a'] = true
		} else {
			result.other = true
		}
	case grammar.Field, grammar.CodeBlock:
		result.other = true
	default:
		result.nullable = true
	}
	return result
}
