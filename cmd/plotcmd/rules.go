package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/ruledef"
)

const formatSource = "source"

func newRulesCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "rules [file]",
		Short: "Compile a rule table and print it",
		Long: `Compiles a rule table and prints the compiled rules.
Without a file the configured table is used, the built-in one by default.

Formats: yaml and json dump complete rule trees, text lists rules with their
directives and dispatch letters, source prints the built-in rule table text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e := checkFormat(format, formatYAML, formatJSON, formatText, formatSource); e != nil {
				return e
			}
			if format == formatSource {
				_, e := cmd.OutOrStdout().Write(ruledef.BuiltinText())
				return e
			}

			var (
				g *grammar.Grammar
				e error
			)
			if len(args) > 0 {
				g, e = loadGrammar(args[0])
			} else {
				var en *env
				_, en, e = opts.setup(cmd)
				if en != nil {
					g = en.grammar
				}
			}
			if e != nil {
				return e
			}

			content, e := dumpGrammar(g, format)
			if e == nil {
				_, e = cmd.OutOrStdout().Write(content)
			}
			return e
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format: yaml, json, text, or source")
	return cmd
}

func dumpGrammar(g *grammar.Grammar, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		content, e := json.MarshalIndent(g, "", "  ")
		if e != nil {
			return nil, e
		}
		return append(content, '\n'), nil

	case formatYAML:
		return yaml.Marshal(g)
	}

	var buffer bytes.Buffer
	w := tabwriter.NewWriter(&buffer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tdirective\tletters\tslots\trule")
	for _, r := range g.Rules {
		letters := r.Initials
		if letters == "" {
			letters = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", r.Index, r.Directive, letters, r.Len, r.Text)
	}
	if e := w.Flush(); e != nil {
		return nil, e
	}
	return buffer.Bytes(), nil
}
