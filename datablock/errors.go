package datablock

import (
	"github.com/ava12/plotline"
	"github.com/ava12/plotline/source"
)

const (
	QuoteError = plotline.DataErrors + iota
	NumberError
	DecodeError
)

func quoteError(pos source.Pos) *plotline.Error {
	return plotline.FormatErrorPos(pos, QuoteError, "Unterminated quoted field.")
}

func numberError(pos source.Pos, text string) *plotline.Error {
	return plotline.FormatErrorPos(pos, NumberError, "Could not read %q as a number.", text)
}

func decodeError(pos source.Pos, e error) *plotline.Error {
	return plotline.FormatErrorPos(pos, DecodeError, "Could not decode data row: %s", e.Error())
}
