package macro

import (
	"github.com/ava12/plotline"
	"github.com/ava12/plotline/source"
)

const (
	MismatchedError = plotline.MacroErrors + iota
	NotStringError
	UndefinedError
	PassLimitError
)

// ResourceErrors+0 is used by parser.
const (
	SpawnError = plotline.ResourceErrors + 1 + iota
	CommandError
)

func mismatchedError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, MismatchedError, "Mismatched `")
}

func notStringError(pos source.Pos, name string) *plotline.Error {
	return plotline.FormatErrorPos(pos, NotStringError, "Attempt to expand a macro, \"%s\", which is not a string variable.", name)
}

func undefinedError(pos source.Pos, name string) *plotline.Error {
	return plotline.FormatErrorPos(pos, UndefinedError, "Undefined macro, \"%s\".", name)
}

func passLimitError(pos source.Pos, passes int) *plotline.Error {
	return plotline.FormatErrorPos(pos, PassLimitError, "Macro expansion did not finish after %d passes.", passes)
}

func spawnError(pos source.Pos, command string) *plotline.Error {
	return plotline.FormatErrorPos(pos, SpawnError, "Could not spawn shell substitution command '%s'.", command)
}

func commandError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, CommandError, "Command failure during ` ` substitution.")
}
