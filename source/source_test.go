package source

import (
	"testing"

	"github.com/google/uuid"

	. "github.com/ava12/plotline/internal/test"
)

func TestNewSplitsLines(t *testing.T) {
	samples := map[string][]string{
		"":                {},
		"\n":              {""},
		"foo":             {"foo"},
		"foo\r\nbar\n":    {"foo", "bar"},
		"a\n\nb":          {"a", "", "b"},
		"print 1\nquit\n": {"print 1", "quit"},
	}

	for text, lines := range samples {
		s := New("test", []byte(text))
		if s.Len() != len(lines) {
			t.Errorf("sample %q: expecting %d lines, got %d", text, len(lines), s.Len())
			continue
		}
		for i, expected := range lines {
			got := s.Line(i + 1)
			if got.Text() != expected || got.Number() != i+1 {
				t.Errorf("sample %q, line #%d: expecting %q, got %q (%d)", text, i+1, expected, got.Text(), got.Number())
			}
		}
	}
}

func TestLinePos(t *testing.T) {
	s := FromLines("script.plt", "set title 'héllo' x")
	line := s.Line(1)
	samples := []struct{ offset, col int }{
		{-1, 1},
		{0, 1},
		{4, 5},
		{16, 16},
		{17, 17},
		{100, 20},
	}

	for _, sample := range samples {
		p := line.Pos(sample.offset)
		ExpectInt(t, sample.col, p.Col())
		ExpectInt(t, 1, p.Line())
		ExpectString(t, "script.plt", p.SourceName())
	}
}

func TestSourceIDs(t *testing.T) {
	a := New("a", []byte("x"))
	b := New("a", []byte("x"))
	Assert(t, a.ID() != b.ID(), "expecting distinct ids")
	Assert(t, a.Line(1).SourceID() == a.ID(), "line does not carry source id")
	Assert(t, Text("x").SourceID() == uuid.Nil, "anonymous line has an id")
	ExpectString(t, "", Text("x").SourceName())
}

func TestInteractiveAdd(t *testing.T) {
	s := FromLines("stdin")
	l := s.Add("print 1\r")
	ExpectInt(t, 1, l.Number())
	ExpectString(t, "print 1", l.Text())
	l = s.Add("print 2")
	ExpectInt(t, 2, l.Number())
	ExpectString(t, "print 2", s.Line(2).Text())
	ExpectInt(t, 0, s.Line(3).Number())
}

func readAll(q *Queue) []string {
	var result []string
	for {
		line, ok := q.NextLine()
		if !ok {
			return result
		}
		result = append(result, q.Source().Name()+":"+line.Text())
	}
}

func expectChain(t *testing.T, expected, got []string) {
	t.Helper()
	ExpectInt(t, len(expected), len(got))
	for i := range expected {
		ExpectString(t, expected[i], got[i])
	}
}

func TestQueueOrder(t *testing.T) {
	q := NewQueue()
	ExpectBool(t, true, q.IsEmpty())
	q.Append(FromLines("b", "1", "2")).Append(FromLines("c", "3")).Prepend(FromLines("a", "0"))
	ExpectBool(t, false, q.IsEmpty())
	expectChain(t, []string{"a:0", "b:1", "b:2", "c:3"}, readAll(q))
	ExpectBool(t, true, q.IsEmpty())
}

func TestQueueNestedLoad(t *testing.T) {
	q := NewQueue().Append(FromLines("main", "a", "load x", "b"))
	var got []string
	for {
		line, ok := q.NextLine()
		if !ok {
			break
		}
		got = append(got, q.Source().Name()+":"+line.Text())
		if line.Text() == "load x" {
			q.Prepend(FromLines("x", "x1", "x2"))
		}
	}
	expectChain(t, []string{"main:a", "main:load x", "x:x1", "x:x2", "main:b"}, got)
}

func TestQueueSkipsEmptySources(t *testing.T) {
	q := NewQueue().Append(New("empty", nil)).Append(FromLines("b", "1")).Append(FromLines("empty2"))
	ExpectBool(t, false, q.IsEmpty())
	expectChain(t, []string{"b:1"}, readAll(q))
	ExpectBool(t, true, q.IsEmpty())
}
