package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ava12/plotline/source"
)

// interactive reads commands from in. Terminals get line editing and tab completion,
// other inputs are read line by line without prompts.
func (s *session) interactive(ctx context.Context, in *os.File) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return s.stream(ctx, in)
	}

	state, e := term.MakeRaw(fd)
	if e != nil {
		return e
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, s.out}, s.prompt())
	s.out = t
	t.AutoCompleteCallback = s.autoComplete
	src := source.FromLines("stdin")

	for !s.quit {
		if w, h, e := term.GetSize(fd); e == nil {
			_ = t.SetSize(w, h)
		}

		text, e := t.ReadLine()
		if e == io.EOF {
			return nil
		}
		if e != nil {
			return e
		}

		s.remember(text)
		s.step(ctx, src.Add(text))
		t.SetPrompt(s.prompt())
	}
	return nil
}

func (s *session) stream(ctx context.Context, in io.Reader) error {
	src := source.FromLines("stdin")
	scanner := bufio.NewScanner(in)
	for !s.quit && scanner.Scan() {
		s.remember(scanner.Text())
		s.step(ctx, src.Add(scanner.Text()))
	}
	return scanner.Err()
}

// step feeds a typed line and then any lines it loaded. Errors are reported, not returned.
func (s *session) step(ctx context.Context, line source.Line) {
	if e := s.feed(ctx, line); e != nil {
		s.report(line, e)
		return
	}

	for !s.quit {
		next, ok := s.queue.NextLine()
		if !ok {
			break
		}
		if e := s.feed(ctx, next); e != nil {
			s.report(next, e)
			s.queue = source.NewQueue()
			break
		}
	}
}

func (s *session) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}

	head := line[:pos]
	res := s.completer.Complete(head)
	switch {
	case len(res.Items) == 0:
		return "", 0, false
	case len(res.Items) == 1:
		c := res.Items[0].Line
		return c + line[pos:], len(c), true
	case len(res.Common) > len(head):
		return res.Common + line[pos:], len(res.Common), true
	}

	words := make([]string, len(res.Items))
	for i, item := range res.Items {
		words[i] = item.Word
	}
	fmt.Fprintln(s.out, strings.Join(words, "  "))
	return "", 0, false
}
