package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/plotline/internal/config"
	"github.com/ava12/plotline/ruledef"
)

func execute(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(in))
	cmd.SetArgs(args)
	e := cmd.ExecuteContext(context.Background())
	return out.String(), e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeRecords(t *testing.T, out string) []recordView {
	t.Helper()
	var result []recordView
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var v recordView
		require.NoError(t, json.Unmarshal([]byte(line), &v), line)
		result = append(result, v)
	}
	return result
}

func TestRunScript(t *testing.T) {
	script := "cmd = 'print 1+2'\n@cmd\nfor i = 1 to 3 {\nprint i\n}\nquit\nprint 5\n"
	out, e := execute(t, script, "run", "-f", "json")
	require.NoError(t, e)

	records := decodeRecords(t, out)
	require.Len(t, records, 3)

	assert.Equal(t, "var_set", records[0].Directive)
	assert.Equal(t, "cmd", records[0].Values["varname"])
	assert.Equal(t, "print 1+2", records[0].Values["string_value"])
	assert.Equal(t, "stdin", records[0].Source)
	assert.Equal(t, 1, records[0].Line)

	assert.Equal(t, "print", records[1].Directive)
	assert.Equal(t, "print 1+2", records[1].Text)
	assert.Equal(t, []any{map[string]any{"expression": 3.0}}, records[1].Values["print_list"])

	assert.Equal(t, "for", records[2].Directive)
	assert.Equal(t, "i", records[2].Values["var_name"])
	assert.Equal(t, 3.0, records[2].Values["final_value"])
	assert.Equal(t, []any{"print i"}, records[2].Values["body"])
}

func TestRunLoad(t *testing.T) {
	dir := t.TempDir()
	inner := writeFile(t, dir, "inner.ppl", "y = 5\n")
	script := writeFile(t, dir, "main.ppl", "load '"+inner+"'\nprint y * 2\n")

	out, e := execute(t, "", "run", "--format", "json", script)
	require.NoError(t, e)
	records := decodeRecords(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, inner, records[0].Source)
	assert.Equal(t, 5.0, records[0].Values["numeric_value"])
	assert.Equal(t, script, records[1].Source)
	assert.Equal(t, 2, records[1].Line)
	assert.Equal(t, []any{map[string]any{"expression": 10.0}}, records[1].Values["print_list"])
}

func TestRunErrors(t *testing.T) {
	_, e := execute(t, "for i = 1 to 3 {\nprint i\n", "run")
	assert.EqualError(t, e, "unexpected end of input inside of for")

	_, e = execute(t, "print 1\n", "run", "-f", "xml")
	assert.ErrorContains(t, e, "unknown format")

	_, e = execute(t, "", "run", filepath.Join(t.TempDir(), "missing.ppl"))
	assert.Error(t, e)

	out, e := execute(t, "print 1\nprint (\nprint 3\n", "run", "-f", "json")
	assert.Error(t, e)
	assert.Len(t, decodeRecords(t, out), 1)
}

func TestRunDataBlock(t *testing.T) {
	out, e := execute(t, "plot -- with lines\n1 2\n2 4\nEND\nplot --\nOslo 1 2 3\nEND\n", "run", "-f", "json")
	require.NoError(t, e)
	require.Len(t, decodeRecords(t, out), 2)
	assert.Contains(t, out, `"data":[{"x":1,"y":2},{"x":2,"y":4}]`)
	assert.Contains(t, out, `"data":[["Oslo","1","2","3"]]`)
}

func TestRunYAML(t *testing.T) {
	out, e := execute(t, "print 'hi'\n", "run", "-f", "yaml")
	require.NoError(t, e)
	assert.Contains(t, out, "directive: print")
	assert.Contains(t, out, "string: hi")
}

func TestRulesCommand(t *testing.T) {
	out, e := execute(t, "", "rules", "-f", "json")
	require.NoError(t, e)
	var dump struct {
		Rules []struct {
			Directive string
			Root      struct{ Kind string }
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	require.NotEmpty(t, dump.Rules)
	directives := make(map[string]bool)
	for _, r := range dump.Rules {
		directives[r.Directive] = true
		assert.Equal(t, "sequence", r.Root.Kind)
	}
	assert.True(t, directives["plot"])

	out, e = execute(t, "", "rules", "-f", "text")
	require.NoError(t, e)
	assert.Contains(t, out, "directive")
	assert.Contains(t, out, "replot")

	out, e = execute(t, "", "rules", "-f", "source")
	require.NoError(t, e)
	assert.Equal(t, string(ruledef.BuiltinText()), out)

	path := writeFile(t, t.TempDir(), "mini.rules", "go@2:directive = %d:count\n")
	out, e = execute(t, "", "rules", path)
	require.NoError(t, e)
	assert.Contains(t, out, "directive: go")

	_, e = execute(t, "", "rules", "-f", "xml")
	assert.Error(t, e)
}

func TestCompleteCommand(t *testing.T) {
	out, e := execute(t, "", "complete", "set ti")
	require.NoError(t, e)
	assert.Equal(t, "set title\n", out)

	out, e = execute(t, "", "complete", "-w", "set ti")
	require.NoError(t, e)
	assert.Equal(t, "title\n", out)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "mini.rules", "go@2:directive = %d:count\n")
	cfg := writeFile(t, dir, "config.toml", "[grammar]\nrules = \""+filepath.Base(rules)+"\"\n")

	out, e := execute(t, "go 3\n", "--config", cfg, "run", "-f", "json")
	require.NoError(t, e)
	records := decodeRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, 3.0, records[0].Values["count"])

	_, e = execute(t, "print 1\n", "--config", cfg, "run")
	assert.Error(t, e)
}

func newTestSession(t *testing.T, format string) (*session, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Repl.History = 2
	en, e := newEnv(cfg)
	require.NoError(t, e)
	var out bytes.Buffer
	return newSession(en, &out, format), &out
}

func TestStream(t *testing.T) {
	s, out := newTestSession(t, formatJSON)
	require.NoError(t, s.stream(context.Background(), strings.NewReader("prnt 1\nprint (\nprint 2\n")))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "error: "), lines[0])
	assert.Contains(t, lines[1], "did you mean: print")
	assert.True(t, strings.HasPrefix(lines[2], "error: "), lines[2])
	assert.Len(t, decodeRecords(t, lines[3]), 1)
}

func TestHistory(t *testing.T) {
	s, out := newTestSession(t, formatText)
	require.NoError(t, s.stream(context.Background(), strings.NewReader("print 1\n\nprint 3\nhistory\n")))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, []string{"print 3", "history"}, lines[len(lines)-2:])
}

func TestAutoComplete(t *testing.T) {
	s, out := newTestSession(t, formatText)

	line, pos, ok := s.autoComplete("set ti", 6, '\t')
	require.True(t, ok)
	assert.Equal(t, "set title", line)
	assert.Equal(t, 9, pos)

	_, _, ok = s.autoComplete("set ti", 6, 'x')
	assert.False(t, ok)

	_, _, ok = s.autoComplete("zzz", 3, '\t')
	assert.False(t, ok)

	_, _, ok = s.autoComplete("", 0, '\t')
	assert.False(t, ok)
	assert.Contains(t, out.String(), "print")
}
