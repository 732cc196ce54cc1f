package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava12/plotline/complete"
	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/internal/config"
	"github.com/ava12/plotline/internal/ctxlog"
	"github.com/ava12/plotline/macro"
	"github.com/ava12/plotline/parser"
	"github.com/ava12/plotline/ruledef"
	"github.com/ava12/plotline/vars"
)

// env holds everything a command needs to parse lines.
type env struct {
	cfg       *config.Config
	grammar   *grammar.Grammar
	vars      *vars.Chain
	parser    *parser.Parser
	completer *complete.Completer
}

func loadGrammar(path string) (*grammar.Grammar, error) {
	if path == "" {
		return ruledef.Builtin(), nil
	}

	content, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}
	return ruledef.ParseBytes(path, content)
}

func newEnv(cfg *config.Config) (*env, error) {
	g, e := loadGrammar(cfg.Grammar.Rules)
	if e != nil {
		return nil, e
	}

	chain := vars.New()
	opts := &parser.Options{MaxDepth: cfg.Parser.MaxDepth}
	if !cfg.Macro.Disabled {
		x := macro.New(chain, macro.ShellRunner{Shell: cfg.Macro.Shell, Stderr: os.Stderr})
		x.MaxPasses = cfg.Macro.MaxPasses
		opts.Macros = x
	}
	p := parser.New(g, opts)
	return &env{cfg, g, chain, p, complete.New(p)}, nil
}

type options struct {
	configFile string
	verbose    bool
}

// setup reads configuration and returns the context carrying the logger.
func (o *options) setup(cmd *cobra.Command) (context.Context, *env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, e := config.Find(o.configFile)
	if e != nil {
		return ctx, nil, e
	}

	level, e := cfg.LogLevel()
	if e != nil {
		return ctx, nil, e
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	ctx = ctxlog.WithLogger(ctx, log)

	en, e := newEnv(cfg)
	if e != nil {
		return ctx, nil, e
	}
	log.Debug("environment ready", "rules", len(en.grammar.Rules), "config", o.configFile)
	return ctx, en, nil
}
