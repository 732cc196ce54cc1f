/*
Package plotline is a grammar-driven command line parser for an interactive plotting and scripting tool.

A single line of user text is matched against a table of command rules and converted
to an instruction record that an executor can act upon without re-reading the text.
The same rules are used to produce tab completions and "was expecting" diagnostics.

Consists of subpackages:
  - cmd/plotcmd: console front end (interactive prompt, script runner, rule table dump);
  - grammar: immutable rule trees and the dispatch index;
  - ruledef: converts the rule table text to grammar.Grammar, contains the built-in rule table;
  - field: typed fields (numbers, strings, colours, axes, expressions) and the expression compiler;
  - parser: node matcher, instruction records, continuation of multi-line commands, completion;
  - macro: @name and `command` substitution applied to a line before matching;
  - complete: tab completion and "did you mean" hints on top of the parser;
  - datablock: decoding of inline data blocks;
  - source: named line sources and source queue used for scripts;
  - vars: variable scope chain.

Typical usage is:

1. Compile the rule table once, either the built-in one (ruledef.Builtin) or a custom one (ruledef.ParseString).

2. Create a parser.Parser for the compiled grammar, an expression compiler, and a macro expander.

3. Feed the parser one line at a time. Every call returns either a finished record,
a request for more input (with a prompt describing the open construct), or an error.
*/
package plotline

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	RuleDefErrors  = 1   // used by ruledef
	FieldErrors    = 101 // used by field
	SyntaxErrors   = 201 // used by parser
	ParserErrors   = 301 // used by parser
	MacroErrors    = 401 // used by macro
	ResourceErrors = 501 // used by parser and macro
	DataErrors     = 601 // used by datablock
)

// Error is the error type used by plotline subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source or 0.
	Line int

	// Col contains column number in source line or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos implements this interface.
type SourcePos interface {
	// SourceName returns source name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

