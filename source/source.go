// Package source defines named line sources and the source queue used to read scripts.
package source

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ava12/plotline/internal/queue"
)

// Source is a named sequence of lines.
// Every source gets a random identifier that is copied to instruction records built from its lines.
type Source struct {
	id    uuid.UUID
	name  string
	lines []string
}

// New splits content into lines. Trailing carriage returns are removed,
// a final line feed does not produce an empty line.
func New(name string, content []byte) *Source {
	s := &Source{id: uuid.New(), name: name}
	if len(content) == 0 {
		return s
	}

	content = bytes.TrimSuffix(content, []byte("\n"))
	for _, line := range bytes.Split(content, []byte("\n")) {
		s.lines = append(s.lines, string(bytes.TrimSuffix(line, []byte("\r"))))
	}
	return s
}

// FromLines creates a source containing given lines.
func FromLines(name string, lines ...string) *Source {
	s := &Source{id: uuid.New(), name: name, lines: make([]string, len(lines))}
	copy(s.lines, lines)
	return s
}

func (s *Source) ID() uuid.UUID {
	return s.id
}

func (s *Source) Name() string {
	return s.name
}

// Len returns the number of lines.
func (s *Source) Len() int {
	return len(s.lines)
}

// Add appends a line to an interactive source and returns it.
func (s *Source) Add(text string) Line {
	s.lines = append(s.lines, strings.TrimSuffix(text, "\r"))
	return Line{s, len(s.lines), s.lines[len(s.lines)-1]}
}

// Line returns a line by its 1-based number. Out of range numbers yield an empty line with number 0.
func (s *Source) Line(number int) Line {
	if number <= 0 || number > len(s.lines) {
		return Line{src: s}
	}
	return Line{s, number, s.lines[number-1]}
}

// Line is a single line of a source.
// Zero value is an anonymous empty line.
type Line struct {
	src    *Source
	number int
	text   string
}

// Text creates an anonymous line not bound to any source.
func Text(text string) Line {
	return Line{text: text}
}

func (l Line) Source() *Source {
	return l.src
}

func (l Line) SourceName() string {
	if l.src == nil {
		return ""
	}
	return l.src.name
}

// SourceID returns the identifier of the owning source or uuid.Nil.
func (l Line) SourceID() uuid.UUID {
	if l.src == nil {
		return uuid.Nil
	}
	return l.src.id
}

func (l Line) Number() int {
	return l.number
}

func (l Line) Text() string {
	return l.text
}

// WithText returns a line with the same origin and replaced text.
func (l Line) WithText(text string) Line {
	l.text = text
	return l
}

// Pos converts a byte offset in line text to a position.
// Columns are counted in runes starting from 1.
func (l Line) Pos(offset int) Pos {
	if offset < 0 {
		offset = 0
	} else if offset > len(l.text) {
		offset = len(l.text)
	}
	return Pos{l, utf8.RuneCountInString(l.text[:offset]) + 1}
}

// Pos is a position in a source line, implements plotline.SourcePos.
type Pos struct {
	line Line
	col  int
}

func (p Pos) SourceName() string {
	return p.line.SourceName()
}

func (p Pos) Line() int {
	return p.line.number
}

func (p Pos) Col() int {
	return p.col
}

type cursor struct {
	src  *Source
	next int
}

// Queue reads lines from a sequence of sources.
// A prepended source is read before the rest of the current one, this is how nested scripts are loaded.
type Queue struct {
	sources *queue.Queue[*cursor]
	current *cursor
}

func NewQueue() *Queue {
	return &Queue{sources: queue.New[*cursor]()}
}

// Source returns the source of the most recently read line or nil.
func (q *Queue) Source() *Source {
	if q.current == nil {
		return nil
	}
	return q.current.src
}

// Append adds a source to the end of the queue.
func (q *Queue) Append(s *Source) *Queue {
	q.sources.Append(&cursor{s, 1})
	return q
}

// Prepend puts a source in front of the unread part of the current one.
func (q *Queue) Prepend(s *Source) *Queue {
	if q.current != nil && q.current.next <= q.current.src.Len() {
		q.sources.Prepend(q.current)
	}
	q.current = nil
	q.sources.Prepend(&cursor{s, 1})
	return q
}

// IsEmpty returns true if there are no unread lines.
func (q *Queue) IsEmpty() bool {
	if q.current != nil && q.current.next <= q.current.src.Len() {
		return false
	}
	for _, c := range q.sources.Items() {
		if c.next <= c.src.Len() {
			return false
		}
	}
	return true
}

// NextLine returns the next unread line. Exhausted sources are dropped.
func (q *Queue) NextLine() (Line, bool) {
	for {
		if q.current != nil && q.current.next <= q.current.src.Len() {
			line := q.current.src.Line(q.current.next)
			q.current.next++
			return line, true
		}

		c, ok := q.sources.First()
		if !ok {
			return Line{}, false
		}
		q.current = c
	}
}
