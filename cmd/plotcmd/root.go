package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "plotcmd",
		Short: "Plotting command line parser console",
		Long: `plotcmd reads plotting commands, parses them with the plotline rule table,
and prints the resulting instruction records.

Multi-line commands (loops, conditionals, inline data) are continued on
the following lines, the prompt shows the open constructs.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, en, e := opts.setup(cmd)
			if e != nil {
				return e
			}
			return newSession(en, cmd.OutOrStdout(), formatText).interactive(ctx, os.Stdin)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: $PLOTCMD_CONFIG or <user config dir>/plotcmd/config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(newRunCmd(opts), newRulesCmd(opts), newCompleteCmd(opts))
	return root
}

func newRunCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "run [file...]",
		Short: "Parse scripts and print instruction records",
		Long: `Parses script files in order, standard input if no files are given.
Scripts may load other scripts, loaded lines are read before the rest of the script.
Parsing stops at the first error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, en, e := opts.setup(cmd)
			if e != nil {
				return e
			}
			if e = checkFormat(format, formatText, formatJSON, formatYAML); e != nil {
				return e
			}

			s := newSession(en, cmd.OutOrStdout(), format)
			if len(args) == 0 {
				args = []string{"-"}
			}
			for _, name := range args {
				if e = s.appendFile(name, cmd.InOrStdin()); e != nil {
					return e
				}
			}
			return s.run(ctx)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, or yaml")
	return cmd
}

func newCompleteCmd(opts *options) *cobra.Command {
	var words bool
	cmd := &cobra.Command{
		Use:   "complete <line>",
		Short: "Print completions for the end of a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, en, e := opts.setup(cmd)
			if e != nil {
				return e
			}

			out := cmd.OutOrStdout()
			for _, item := range en.completer.Complete(args[0]).Items {
				if words {
					fmt.Fprintln(out, item.Word)
				} else {
					fmt.Fprintln(out, item.Line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&words, "words", "w", false, "print completed words instead of whole lines")
	return cmd
}
