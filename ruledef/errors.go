package ruledef

import (
	"github.com/ava12/plotline"
	"github.com/ava12/plotline/source"
)

const (
	UnbalancedError = plotline.RuleDefErrors + iota
	MismatchedError
	SeparatorError
	StorageError
	AbbreviationError
	FieldKindError
	EmptyRuleError
	WidthError
	MalformedWordError
)

func unbalancedError(pos source.Pos, opener string) *plotline.Error {
	return plotline.FormatErrorPos(pos, UnbalancedError, "unclosed %q", opener)
}

func mismatchedError(pos source.Pos, closer string) *plotline.Error {
	return plotline.FormatErrorPos(pos, MismatchedError, "unexpected %q", closer)
}

func separatorError(pos source.Pos, sep string) *plotline.Error {
	return plotline.FormatErrorPos(pos, SeparatorError, "%q used outside of its group", sep)
}

func storageError(pos source.Pos, word string) *plotline.Error {
	return plotline.FormatErrorPos(pos, StorageError, "misplaced storage information in %q", word)
}

func abbreviationError(pos source.Pos, word string) *plotline.Error {
	return plotline.FormatErrorPos(pos, AbbreviationError, "invalid abbreviation in %q", word)
}

func fieldKindError(pos source.Pos, word string) *plotline.Error {
	return plotline.FormatErrorPos(pos, FieldKindError, "unknown field kind in %q", word)
}

func emptyRuleError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, EmptyRuleError, "empty rule")
}

func widthError(pos source.Pos, name string) *plotline.Error {
	return plotline.FormatErrorPos(pos, WidthError, "variable %q reused with different width", name)
}

func malformedWordError(pos source.Pos, word string) *plotline.Error {
	return plotline.FormatErrorPos(pos, MalformedWordError, "malformed word %q", word)
}
