package ruledef

import (
	"strings"
	"testing"

	"github.com/ava12/plotline/grammar"
	. "github.com/ava12/plotline/internal/test"
)

func checkErrorCode(t *testing.T, samples []string, code int) {
	t.Helper()
	for index, src := range samples {
		_, e := ParseString("string", src)
		if e == nil {
			t.Errorf("sample #%d %q: error expected, got success", index, src)
			continue
		}

		if ErrorCode(e) != code {
			t.Errorf("sample #%d %q: expecting error code %d, got %q", index, src, code, e.Error())
		}
	}
}

func TestUnbalanced(t *testing.T) {
	checkErrorCode(t, []string{"a { b", "< a | b", "[ a", "( a ~ b", "{ a [ b ]:x"}, UnbalancedError)
}

func TestMismatched(t *testing.T) {
	checkErrorCode(t, []string{"a }", "{ a >", "< a )", "a ]:x", "( a ]:x )"}, MismatchedError)
}

func TestSeparator(t *testing.T) {
	checkErrorCode(t, []string{"a | b", "{ a ~ b }", "( a | b )", "[ a | b ]:x"}, SeparatorError)
}

func TestStorage(t *testing.T) {
	checkErrorCode(t, []string{"{ a }:x", "[ a ]", "[ a ]:X", "< a >:y", "( a ):z", "[ a ]:@,"}, StorageError)
}

func TestAbbreviation(t *testing.T) {
	checkErrorCode(t, []string{"foo@4", "foo@0", "foo@x", "foo@"}, AbbreviationError)
}

func TestFieldKind(t *testing.T) {
	checkErrorCode(t, []string{"%z:x", "%dz", "%", "%:x"}, FieldKindError)
}

func TestEmptyRule(t *testing.T) {
	checkErrorCode(t, []string{"\\\n", "  \\\n\\"}, EmptyRuleError)
}

func TestWidth(t *testing.T) {
	checkErrorCode(t, []string{"%p:pos %d:pos", "%p:directive", "%P:a < %p:a | b >"}, WidthError)
}

func TestMalformed(t *testing.T) {
	checkErrorCode(t, []string{"a:b:c:d", "%d:a:b"}, MalformedWordError)
}

func TestValidRules(t *testing.T) {
	samples := []string{
		"quit@1:directive =",
		"",
		"# comment only\n\n",
		"a \\\n b \\\n c",
		"{ let@3 } %v:varname \\=@n:directive:var_set = { %fi:value }",
		"< a | > b",
		"x [ [ %d:n ]:inner, ]:outer",
		"CODEBLOCK DATABLOCK:data",
	}
	for i, src := range samples {
		_, e := ParseString("string", src)
		if e != nil {
			t.Errorf("sample #%d %q: unexpected error: %s", i, src, e.Error())
		}
	}
}

func TestErrorPosition(t *testing.T) {
	_, e := ParseString("rules", "a \\\n  b }")
	ExpectErrorCode(t, MismatchedError, e)
	ExpectString(t, "unexpected \"}\" in rules at line 2 col 5", e.Error())
}

func parseOne(t *testing.T, src string) *grammar.Rule {
	t.Helper()
	g, e := ParseString("string", src)
	ExpectNoError(t, e)
	ExpectInt(t, 1, len(g.Rules))
	return g.Rules[0]
}

func expectVar(t *testing.T, r *grammar.Rule, name string, slot, width int) {
	t.Helper()
	v, found := r.Lookup(name)
	Assert(t, found, "variable %q not found", name)
	ExpectInt(t, slot, v.Slot)
	ExpectInt(t, width, v.Width)
}

func TestSlots(t *testing.T) {
	r := parseOne(t, "set@2:directive { item@1 %d:editno } title@2:set_option = < %q:title | %s:title > { %p:offset }")
	ExpectString(t, "set", r.Directive)
	ExpectString(t, "s", r.Initials)
	ExpectInt(t, 7, r.Len)
	expectVar(t, r, "directive", 0, 1)
	expectVar(t, r, "editno", 1, 1)
	expectVar(t, r, "set_option", 2, 1)
	expectVar(t, r, "title", 4, 1)
	expectVar(t, r, "offset", 5, 2)
	_, found := r.Lookup("X")
	ExpectBool(t, false, found)
}

func TestRepetition(t *testing.T) {
	r := parseOne(t, "print@2:directive = [ < %q:string | %fi:expression > ]:@print_list,")
	ExpectInt(t, 5, r.Len)
	children := r.Root.Children
	ExpectInt(t, 3, len(children))
	ExpectInt(t, int(grammar.Literal), int(children[0].Kind))
	ExpectInt(t, int(grammar.Confirm), int(children[1].Kind))

	rep := children[2]
	ExpectInt(t, int(grammar.Repeat0), int(rep.Kind))
	ExpectInt(t, ',', int(rep.Sep))
	ExpectString(t, "print_list", rep.Var)
	ExpectInt(t, 4, rep.Slot)
	ExpectInt(t, 3, rep.ListLen)

	alt := rep.Children[0]
	ExpectInt(t, int(grammar.Alternatives), int(alt.Kind))
	ExpectInt(t, 1, alt.Children[0].Slot)
	ExpectInt(t, 2, alt.Children[1].Slot)

	found := 0
	for _, v := range r.Vars {
		if v.List == "print_list" {
			found++
		}
	}
	ExpectInt(t, 2, found)
}

func TestRepetitionKinds(t *testing.T) {
	samples := []struct {
		src  string
		kind grammar.Kind
		sep  byte
		name string
	}{
		{"a [ b ]:list", grammar.Repeat1, 0, "list"},
		{"a [ b ]:@list", grammar.Repeat0, 0, "list"},
		{"a [ b ]:list:", grammar.Repeat1, ':', "list"},
		{"a [ b ]:@list_2,", grammar.Repeat0, ',', "list_2"},
	}

	for i, s := range samples {
		r := parseOne(t, s.src)
		rep := r.Root.Children[1]
		if rep.Kind != s.kind || rep.Sep != s.sep || rep.Var != s.name {
			t.Errorf("sample #%d: expecting %s %q %q, got %s %q %q", i, s.kind, s.sep, s.name, rep.Kind, rep.Sep, rep.Var)
		}
	}
}

func TestLiterals(t *testing.T) {
	samples := []struct {
		src, text, output string
		minLen            int
		exact             bool
		slot              int
	}{
		{"quit", "quit", "quit", 4, false, grammar.NoSlot},
		{"plot@1", "plot", "plot", 1, false, grammar.NoSlot},
		{":@n", ":", ":", 1, true, grammar.NoSlot},
		{"\\=~@n:directive:var_set_regex", "=~", "var_set_regex", 2, true, 0},
		{"\\3d@2:threedim", "3d", "3d", 2, false, 4},
		{"exec@3:directive:", "exec", "exec", 3, false, 0},
		{"nohead@2:arrow_style:none", "nohead", "none", 2, false, 4},
	}

	for i, s := range samples {
		n := parseOne(t, s.src).Root.Children[0]
		if n.Kind != grammar.Literal || n.Text != s.text || n.Output != s.output ||
			n.MinLen != s.minLen || n.Exact != s.exact || n.Slot != s.slot {
			t.Errorf("sample #%d %q: unexpected node %+v", i, s.src, *n)
		}
	}
}

func TestFields(t *testing.T) {
	r := parseOne(t, "%fu:x %p:pos %P:pos3 %d CODEBLOCK:body DATABLOCK")
	nodes := r.Root.Children
	ExpectString(t, "fu", nodes[0].Tag)
	ExpectInt(t, 4, nodes[0].Slot)
	ExpectInt(t, 5, nodes[1].Slot)
	ExpectInt(t, 2, nodes[1].Width)
	ExpectInt(t, 7, nodes[2].Slot)
	ExpectInt(t, 3, nodes[2].Width)
	ExpectInt(t, grammar.NoSlot, nodes[3].Slot)
	ExpectInt(t, int(grammar.CodeBlock), int(nodes[4].Kind))
	ExpectInt(t, 10, nodes[4].Slot)
	ExpectInt(t, int(grammar.DataBlock), int(nodes[5].Kind))
	ExpectInt(t, grammar.NoSlot, nodes[5].Slot)
	ExpectInt(t, 11, r.Len)
}

func TestInitials(t *testing.T) {
	g, e := ParseString("string", `plot@1:directive =
%v:x \=@n
< a@1 | B@1 > c
{ let@3 } %v:x
{ q } r
( a ~ b ) c
\?@n:directive:help
= DATABLOCK
`)
	ExpectNoError(t, e)
	expected := []string{"p", "", "ab", "", "qr", "abc", "", ""}
	ExpectInt(t, len(expected), len(g.Rules))
	for i, r := range g.Rules {
		if r.Initials != expected[i] {
			t.Errorf("rule #%d %q: expecting initials %q, got %q", i, r.Text, expected[i], r.Initials)
		}
	}

	ExpectInt(t, 1, len(g.Buckets[grammar.Bucket('p')]))
	ExpectInt(t, 4, len(g.Buckets[grammar.OtherBucket]))
	ExpectInt(t, 2, len(g.Buckets[grammar.Bucket('a')]))
}

func TestBuiltin(t *testing.T) {
	g := Builtin()
	Assert(t, g == Builtin(), "built-in grammar compiled twice")
	Assert(t, len(g.Rules) > 50, "expecting more than 50 rules, got %d", len(g.Rules))

	directives := make(map[string]bool)
	for _, d := range g.Directives() {
		directives[d] = true
	}
	for _, d := range []string{"set", "unset", "plot", "print", "for", "foreach", "if", "while",
		"do", "var_set", "func_set", "quit", "help", "pling", "set_error", "subroutine"} {
		Assert(t, directives[d], "directive %q not found", d)
	}

	candidates := g.Candidates("  print 1")
	foundPrint := false
	for _, r := range candidates {
		if r.Directive == "print" {
			foundPrint = true
		}
		Assert(t, r.Initials == "" || strings.ContainsRune(r.Initials, 'p'), "unexpected candidate %q", r.Text)
	}
	ExpectBool(t, true, foundPrint)
	ExpectString(t, "var_set_regex", candidates[len(candidates)-len(g.Buckets[grammar.OtherBucket])].Directive)
}
