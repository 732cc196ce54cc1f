package grammar

import (
	"testing"

	. "github.com/ava12/plotline/internal/test"
)

func TestBucket(t *testing.T) {
	samples := map[byte]int{'a': 0, 'A': 0, 'z': 25, 'Z': 25, 'p': 15, '?': OtherBucket, '1': OtherBucket, ' ': OtherBucket}
	for c, expected := range samples {
		if got := Bucket(c); got != expected {
			t.Errorf("char %q: expecting bucket %d, got %d", c, expected, got)
		}
	}
}

func TestCandidates(t *testing.T) {
	rules := []*Rule{
		{Directive: "plot", Initials: "p"},
		{Directive: "var_set"},
		{Directive: "replot", Initials: "pr"},
		{Directive: "help"},
		{Directive: "print", Initials: "p"},
	}
	g := New(rules)
	for i, r := range rules {
		ExpectInt(t, i, r.Index)
	}

	samples := map[string][]string{
		"print 1":  {"plot", "replot", "print", "var_set", "help"},
		"  Replot": {"replot", "var_set", "help"},
		"x = 1":    {"var_set", "help"},
		"":         {"var_set", "help"},
		"?":        {"var_set", "help"},
	}
	for line, expected := range samples {
		got := g.Candidates(line)
		if len(got) != len(expected) {
			t.Errorf("line %q: expecting %d candidates, got %d", line, len(expected), len(got))
			continue
		}
		for i, r := range got {
			if r.Directive != expected[i] {
				t.Errorf("line %q, candidate #%d: expecting %q, got %q", line, i, expected[i], r.Directive)
			}
		}
	}
}

func TestCompletable(t *testing.T) {
	g := New([]*Rule{
		{Directive: "plot", Initials: "p"},
		{Directive: "var_set"},
		{Directive: "replot", Initials: "pr"},
	})

	samples := map[string][]string{
		"pl":  {"plot", "replot"},
		"r":   {"replot"},
		"":    {"plot", "replot"},
		"  ":  {"plot", "replot"},
		"x":   {},
		"?":   {},
		"1 =": {},
	}
	for line, expected := range samples {
		got := g.Completable(line)
		if len(got) != len(expected) {
			t.Errorf("line %q: expecting %d rules, got %d", line, len(expected), len(got))
			continue
		}
		for i, r := range got {
			if r.Directive != expected[i] {
				t.Errorf("line %q, rule #%d: expecting %q, got %q", line, i, expected[i], r.Directive)
			}
		}
	}
}

func TestDirectives(t *testing.T) {
	g := New([]*Rule{{Directive: "set"}, {}, {Directive: "plot"}, {Directive: "set"}})
	got := g.Directives()
	ExpectInt(t, 2, len(got))
	ExpectString(t, "set", got[0])
	ExpectString(t, "plot", got[1])
}

func TestTags(t *testing.T) {
	valid := []string{"d", "fu", "fi", "E", "Q", "p", "fb", "oi"}
	invalid := []string{"", "i", "z", "dz", "f-"}
	for _, tag := range valid {
		Assert(t, ValidTag(tag), "expecting %q to be valid", tag)
	}
	for _, tag := range invalid {
		Assert(t, !ValidTag(tag), "expecting %q to be invalid", tag)
	}

	ExpectInt(t, 1, FieldWidth("fu"))
	ExpectInt(t, 2, FieldWidth("p"))
	ExpectInt(t, 3, FieldWidth("P"))
}

func TestDescribe(t *testing.T) {
	ExpectString(t, "\"plot\"", (&Node{Kind: Literal, Text: "plot"}).Describe())
	ExpectString(t, "%fu", (&Node{Kind: Field, Tag: "fu"}).Describe())
	ExpectString(t, "permutation", (&Node{Kind: Permutation}).Describe())
	ExpectString(t, "unknown", Kind(100).String())
}

func TestKindText(t *testing.T) {
	for k := Sequence; k <= Confirm; k++ {
		text, e := k.MarshalText()
		ExpectNoError(t, e)
		var got Kind
		ExpectNoError(t, got.UnmarshalText(text))
		ExpectInt(t, int(k), int(got))
	}

	var k Kind
	Assert(t, k.UnmarshalText([]byte("loop")) != nil, "unknown kind must fail")
}
