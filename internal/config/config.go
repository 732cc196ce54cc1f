// Package config reads the plotcmd configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvVar names the environment variable holding the configuration path.
const EnvVar = "PLOTCMD_CONFIG"

// Config holds the complete plotcmd configuration
type Config struct {
	Prompt  string        `toml:"prompt"`
	Log     LogConfig     `toml:"log"`
	Macro   MacroConfig   `toml:"macro"`
	Parser  ParserConfig  `toml:"parser"`
	Grammar GrammarConfig `toml:"grammar"`
	Repl    ReplConfig    `toml:"repl"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// MacroConfig holds macro expansion settings
type MacroConfig struct {
	MaxPasses int    `toml:"max_passes"`
	Shell     string `toml:"shell"`
	Disabled  bool   `toml:"disabled"`
}

type ParserConfig struct {
	MaxDepth int `toml:"max_depth"`
}

// GrammarConfig selects a replacement rule table, empty Rules means the built-in one.
type GrammarConfig struct {
	Rules string `toml:"rules"`
}

// ReplConfig holds interactive prompt settings
type ReplConfig struct {
	Color   bool `toml:"color"`
	History int  `toml:"history"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{Repl: ReplConfig{Color: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. Relative grammar paths are resolved against the file directory.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	if !md.IsDefined("repl", "color") {
		cfg.Repl.Color = true
	}
	cfg.applyDefaults()
	if cfg.Grammar.Rules != "" {
		cfg.Grammar.Rules = os.ExpandEnv(cfg.Grammar.Rules)
		if !filepath.IsAbs(cfg.Grammar.Rules) {
			cfg.Grammar.Rules = filepath.Join(filepath.Dir(path), cfg.Grammar.Rules)
		}
	}

	if _, err := cfg.LogLevel(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find returns the configuration named by path, by EnvVar, or found in the user config directory.
// Missing default files yield Default().
func Find(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path != "" {
		return Load(path)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return Default(), nil
	}
	path = filepath.Join(dir, "plotcmd", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Prompt == "" {
		c.Prompt = "plot> "
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Macro.MaxPasses == 0 {
		c.Macro.MaxPasses = 16
	}
	if c.Macro.Shell == "" {
		c.Macro.Shell = "/bin/sh"
	}
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = 128
	}
	if c.Repl.History == 0 {
		c.Repl.History = 100
	}
}

// LogLevel converts the configured level name.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
