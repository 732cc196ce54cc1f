package parser

import (
	"github.com/ava12/plotline"
	"github.com/ava12/plotline/field"
	"github.com/ava12/plotline/source"
)

const (
	ExpectingError = plotline.SyntaxErrors + iota
	UnrecognisedError
)

const (
	IncompleteError = plotline.ParserErrors + iota
	SlotRangeError
	DuplicateSlotError
	MacroModeError
)

const (
	DepthError = plotline.ResourceErrors + iota
)

func expectingError(pos source.Pos, expected string) *plotline.Error {
	return plotline.FormatErrorPos(pos, ExpectingError, "At this point, was expecting %s.", expected)
}

func unrecognisedError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, UnrecognisedError, "Unrecognised command.")
}

func fieldError(pos source.Pos, e *field.ExprError) *plotline.Error {
	return plotline.FormatErrorPos(pos, e.Code, "%s", e.Message)
}

func incompleteError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, IncompleteError, "Incomplete command.")
}

func slotRangeError(pos source.Pos, slot, size int) *plotline.Error {
	return plotline.FormatErrorPos(pos, SlotRangeError, "slot %d is out of record bounds (%d)", slot, size)
}

func duplicateSlotError(pos source.Pos, slot int) *plotline.Error {
	return plotline.FormatErrorPos(pos, DuplicateSlotError, "slot %d is written twice", slot)
}

func macroModeError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, MacroModeError, "Line contains macros but macro expansion is disabled.")
}

func depthError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, DepthError, "Maximum recursion depth exceeded.")
}
