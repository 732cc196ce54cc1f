package ruledef

import (
	_ "embed"
	"sync"

	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/source"
)

// BuiltinName is the source name of the built-in rule table.
const BuiltinName = "builtin.rules"

//go:embed builtin.rules
var builtinRules []byte

var (
	builtinOnce    sync.Once
	builtinGrammar *grammar.Grammar
)

// Builtin returns compiled built-in rule table. The table is compiled on first call.
// Malformed built-in table is a programming error and causes panic.
func Builtin() *grammar.Grammar {
	builtinOnce.Do(func() {
		builtinGrammar = MustParse(source.New(BuiltinName, builtinRules))
	})
	return builtinGrammar
}

// BuiltinText returns the text of the built-in rule table.
func BuiltinText() []byte {
	result := make([]byte, len(builtinRules))
	copy(result, builtinRules)
	return result
}
