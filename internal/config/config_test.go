package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "plot> ", cfg.Prompt)
	assert.Equal(t, 16, cfg.Macro.MaxPasses)
	assert.Equal(t, "/bin/sh", cfg.Macro.Shell)
	assert.Equal(t, 128, cfg.Parser.MaxDepth)
	assert.True(t, cfg.Repl.Color)
	assert.Equal(t, 100, cfg.Repl.History)
	assert.Empty(t, cfg.Grammar.Rules)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
prompt = "pl> "

[log]
level = "debug"

[macro]
max_passes = 4
shell = "/bin/bash"

[parser]
max_depth = 10

[grammar]
rules = "rules/custom.rules"

[repl]
color = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pl> ", cfg.Prompt)
	assert.Equal(t, 4, cfg.Macro.MaxPasses)
	assert.Equal(t, "/bin/bash", cfg.Macro.Shell)
	assert.Equal(t, 10, cfg.Parser.MaxDepth)
	assert.False(t, cfg.Repl.Color)
	assert.Equal(t, 100, cfg.Repl.History)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "rules", "custom.rules"), cfg.Grammar.Rules)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "prompt = "))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[parser]\nmax_depht = 3\n"))
	assert.ErrorContains(t, err, "parser.max_depht")

	_, err = Load(writeConfig(t, "[log]\nlevel = \"loud\"\n"))
	assert.ErrorContains(t, err, "invalid log level")
}

func TestFind(t *testing.T) {
	path := writeConfig(t, "prompt = \"env> \"\n")
	t.Setenv(EnvVar, path)
	cfg, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, "env> ", cfg.Prompt)

	cfg, err = Find(writeConfig(t, "prompt = \"flag> \"\n"))
	require.NoError(t, err)
	assert.Equal(t, "flag> ", cfg.Prompt)

	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err = Find("")
	require.NoError(t, err)
	assert.Equal(t, "plot> ", cfg.Prompt)
}
