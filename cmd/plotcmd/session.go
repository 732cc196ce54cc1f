package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zclconf/go-cty/cty"

	"github.com/ava12/plotline"
	"github.com/ava12/plotline/complete"
	"github.com/ava12/plotline/internal/ctxlog"
	"github.com/ava12/plotline/internal/queue"
	"github.com/ava12/plotline/parser"
	"github.com/ava12/plotline/source"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, expecting one of %s", format, strings.Join(allowed, ", "))
}

type styles struct {
	prompt, directive, err, hint lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain}
	}
	return styles{
		prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		directive: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		err:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

// session feeds lines to the parser and acts on finished records.
// Only a few commands are executed (quit, load, assignment, history), other records are printed.
type session struct {
	*env
	out     io.Writer
	format  string
	queue   *source.Queue
	history *queue.Queue[string]
	styles  styles
	quit    bool
}

func newSession(en *env, out io.Writer, format string) *session {
	return &session{
		env:     en,
		out:     out,
		format:  format,
		queue:   source.NewQueue(),
		history: queue.New[string](),
		styles:  newStyles(en.cfg.Repl.Color && format == formatText),
	}
}

// appendFile queues a script, "-" means in.
func (s *session) appendFile(name string, in io.Reader) error {
	var (
		content []byte
		e       error
	)
	if name == "-" {
		content, e = io.ReadAll(in)
		name = "stdin"
	} else {
		content, e = os.ReadFile(name)
	}
	if e != nil {
		return e
	}

	s.queue.Append(source.New(name, content))
	return nil
}

// run processes queued lines, stops at the first error.
func (s *session) run(ctx context.Context) error {
	for !s.quit {
		line, ok := s.queue.NextLine()
		if !ok {
			break
		}
		if e := s.feed(ctx, line); e != nil {
			return e
		}
	}

	if s.parser.Pending() {
		prompt := s.parser.Prompt()
		s.parser.Reset()
		return fmt.Errorf("unexpected end of input inside of %s", prompt)
	}
	return nil
}

func (s *session) feed(ctx context.Context, line source.Line) error {
	res, e := s.parser.Parse(ctx, line)
	if e != nil || res.Record == nil {
		return e
	}
	return s.execute(ctx, res.Record)
}

func (s *session) execute(ctx context.Context, rec *parser.Record) error {
	rec, e := s.parser.Resolve(ctx, rec)
	if e != nil {
		return e
	}

	o, e := rec.Output(ctx, s.vars)
	if e != nil {
		return e
	}

	switch rec.Directive() {
	case "quit":
		s.quit = true
		return nil
	case "load":
		return s.load(ctx, o.Var("filename"))
	case "var_set":
		s.assign(o)
	case "history":
		s.showHistory(o.Var("number_lines"))
		return nil
	}
	return s.show(rec, o)
}

func (s *session) load(ctx context.Context, name cty.Value) error {
	if name.IsNull() || name.Type() != cty.String {
		return errors.New("file name expected")
	}

	path := name.AsString()
	content, e := os.ReadFile(path)
	if e != nil {
		return e
	}

	ctxlog.FromContext(ctx).Info("loading script", "path", path)
	s.queue.Prepend(source.New(path, content))
	return nil
}

func (s *session) assign(o parser.Output) {
	name := o.Var("varname").AsString()
	for _, key := range []string{"string_value", "numeric_value"} {
		if v := o.Var(key); !v.IsNull() {
			s.vars.Set(name, v)
			return
		}
	}
	s.vars.Unset(name)
}

func (s *session) remember(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.history.Append(text)
	for s.history.Len() > s.cfg.Repl.History {
		s.history.First()
	}
}

func (s *session) showHistory(n cty.Value) {
	items := s.history.Items()
	if !n.IsNull() && n.Type() == cty.Number {
		if k, _ := n.AsBigFloat().Int64(); k >= 0 && int(k) < len(items) {
			items = items[len(items)-int(k):]
		}
	}
	for _, text := range items {
		fmt.Fprintln(s.out, text)
	}
}

// report prints an error. Lines failing right after an unknown first word get "did you mean" hints.
func (s *session) report(line source.Line, e error) {
	if e == nil {
		return
	}

	fmt.Fprintln(s.out, s.styles.err.Render("error:"), e.Error())
	var pe *plotline.Error
	if errors.As(e, &pe) && s.unknownWord(line.Text(), pe) {
		if hints := complete.Suggest(s.grammar, line.Text(), 3); len(hints) > 0 {
			fmt.Fprintln(s.out, s.styles.hint.Render("did you mean: "+strings.Join(hints, ", ")+"?"))
		}
	}
}

func (s *session) unknownWord(text string, pe *plotline.Error) bool {
	switch pe.Code {
	case parser.UnrecognisedError:
		return true
	case parser.ExpectingError:
	default:
		return false
	}

	t := strings.TrimLeft(text, " \t")
	word := t
	if i := strings.IndexAny(t, " \t"); i >= 0 {
		word = t[:i]
	}
	rest := strings.TrimLeft(t[len(word):], " \t")
	if pe.Col != len(text)-len(rest)+1 {
		return false
	}

	word = strings.ToLower(word)
	for _, d := range s.grammar.Directives() {
		if strings.HasPrefix(d, word) {
			return false
		}
	}
	return true
}

func (s *session) prompt() string {
	p := s.cfg.Prompt
	if s.parser.Pending() {
		p = s.parser.Prompt() + "> "
	}
	return s.styles.prompt.Render(p)
}
