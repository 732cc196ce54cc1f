/*
Package ruledef converts a textual command rule table to grammar.Grammar structure.

A rule table contains one rule per line, each rule describes a single top-level command alternative.
Empty lines and lines starting with # are ignored. A line ending with backslash is joined with the next one.
Rules are tried in the order they are listed, so a more specific rule must precede a more generic one.

A rule is a sequence of words separated with spaces or tabs. Notation:
*/
//  =                      point of no return: a failure after this point is a syntax error
//                         instead of a signal to try the next rule
//  text@3:var             literal "text", may be abbreviated down to 3 characters,
//                         its text is stored in variable var
//  text@n                 literal "text" that must be typed in full and needs no space after it
//  text:var:output        literal "text" storing "output" instead of "text"
//  \text                  the first character is taken literally, e.g. \{@n or \=@n
//  { ... }                optional group, matched 0 or 1 time
//  < a | b >              alternatives, the first matching one wins
//  ( a ~ b )              permutation, each item matched 0 or 1 time in any order
//  [ ... ]:list           repetition, matched 1 or more times
//  [ ... ]:@list          repetition, matched 0 or more times
//  [ ... ]:list,          repetition with items separated by comma (any punctuation may be used)
//  %d:var                 typed field, see below
//  CODEBLOCK:var          block of commands enclosed in braces, may span several lines
//  DATABLOCK:var          raw data lines following the command, terminated by END line
/*
Literals are matched case-insensitively. An abbreviated literal must end either at a space,
at the end of line, or at a punctuation character (the latter only if the literal contains
letters and digits only). A word longer than the literal never matches, so "foreach" does not match "for".

Field tag is one or more letters, the first letter selects the kind of token,
all letters are value types the field accepts when it is an expression:
*/
//  a   axis name: x, y, or z optionally followed by axis number
//  A   angle
//  b   boolean: on, off, yes, no, true, false, or an expression
//  c   colour name or an expression
//  C   colour name or an expression evaluated by the executor
//  d   integer
//  D   distance
//  e   algebraic expression evaluated by the executor
//  E   algebraic expression evaluated by the executor, $n column references allowed
//  f   real dimensionless number
//  i   (type only) integer
//  o   expression of any type
//  p   position vector, two comma-separated components or one vector expression
//  P   position vector, three components
//  q   quoted string
//  Q   quoted string or an expression
//  r   the rest of the line
//  s   alphabetical word
//  S   word without spaces and quotes
//  u   physical quantity
//  v   variable name
/*
Variables are output slots of an instruction record. Slots 0-2 are reserved for directive, editno,
and set_option variables, slot 3 is reserved for X which is the default name meaning "no output".
Other variables get slots in the order of their first appearance; p fields use two slots, P fields use three.
A variable may appear several times in a rule, e.g. in different alternatives, but must keep its width.

A repetition opens its own slot space: slot 0 of each repetition block holds the position of the next block,
variables inside the repetition are numbered from 1. The name of the repetition is the variable
holding the position of the first block.

The directive of a rule is the output of its first literal stored in the directive variable.
The executor uses directive names to dispatch commands.

Rules are indexed by the letters their commands may start with. A rule that may start with
a field, a punctuation character, or nothing at all is tried for every line.
*/
package ruledef
