/*
plotcmd is the console front end of the plotline parser.
Usage is

	plotcmd [--config <file>] [-v]
	plotcmd run [-f text|json|yaml] [<file>...]
	plotcmd rules [-f yaml|json|text|source] [<file>]
	plotcmd complete <line>

Without a subcommand plotcmd reads commands interactively, with tab completion
and continuation prompts for multi-line commands.

run parses scripts (standard input if no files given) and prints the instruction records;

rules compiles a rule table (the configured one if no file given) and prints it;

complete prints completions for the end of a line.
*/
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	e := newRootCmd().ExecuteContext(ctx)
	stop()
	if e != nil {
		os.Exit(1)
	}
}
