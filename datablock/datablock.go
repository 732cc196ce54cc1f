// Package datablock reads inline data blocks captured by the parser.
//
// Every line of a block is a row. Fields are separated by whitespace or commas,
// double-quoted fields may contain separators. Blank lines and lines starting with '#' are skipped.
package datablock

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/parser"
	"github.com/ava12/plotline/source"
)

// Row is a single data line split into fields.
type Row struct {
	Fields []string
	// Cols holds byte offsets of the fields in the line.
	Cols []int
	Line source.Line
}

func (r Row) pos(i int) source.Pos {
	if i < len(r.Cols) {
		return r.Line.Pos(r.Cols[i])
	}
	return r.Line.Pos(0)
}

// Blocks returns data blocks of a record in slot order.
func Blocks(r *parser.Record) []*parser.Block {
	var result []*parser.Block
	for _, a := range r.Atoms {
		if a.Block != nil && a.Block.Kind == grammar.DataBlock {
			result = append(result, a.Block)
		}
	}
	return result
}

// Rows splits all lines of the block.
func Rows(b *parser.Block) ([]Row, error) {
	var result []Row
	for _, r := range b.Records {
		line := r.Source.WithText(r.Text)
		t := strings.TrimSpace(r.Text)
		if t == "" || t[0] == '#' {
			continue
		}

		row, e := Split(line)
		if e != nil {
			return nil, e
		}
		result = append(result, row)
	}
	return result, nil
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == ',' || c == '\r'
}

// Split splits a single line into fields.
func Split(line source.Line) (Row, error) {
	text := line.Text()
	row := Row{Line: line}
	for i := 0; i < len(text); {
		if isSeparator(text[i]) {
			i++
			continue
		}

		start := i
		if text[i] == '"' {
			end := strings.IndexByte(text[i+1:], '"')
			if end < 0 {
				return Row{}, quoteError(line.Pos(i))
			}
			i += end + 2
			row.Fields = append(row.Fields, text[start+1:i-1])
		} else {
			for i < len(text) && !isSeparator(text[i]) {
				i++
			}
			row.Fields = append(row.Fields, text[start:i])
		}
		row.Cols = append(row.Cols, start)
	}
	return row, nil
}

// Numbers converts all fields to numbers. Rows may have different lengths.
func Numbers(b *parser.Block) ([][]float64, error) {
	rows, e := Rows(b)
	if e != nil {
		return nil, e
	}

	result := make([][]float64, len(rows))
	for i, row := range rows {
		values := make([]float64, len(row.Fields))
		for j, f := range row.Fields {
			values[j], e = strconv.ParseFloat(f, 64)
			if e != nil {
				return nil, numberError(row.pos(j), f)
			}
		}
		result[i] = values
	}
	return result, nil
}

type rowReader struct {
	rows []Row
	next int
}

func (r *rowReader) Read() ([]string, error) {
	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	r.next++
	return r.rows[r.next-1].Fields, nil
}

// Decode decodes rows into values of type T using csv struct tags.
// header names the columns, if it is empty the first row of the block is the header.
func Decode[T any](b *parser.Block, header ...string) ([]T, error) {
	rows, e := Rows(b)
	if e != nil {
		return nil, e
	}
	if len(rows) == 0 || (len(header) == 0 && len(rows) == 1) {
		return nil, nil
	}

	rr := &rowReader{rows: rows}
	dec, e := csvutil.NewDecoder(rr, header...)
	if e != nil {
		return nil, decodeError(rows[0].pos(0), e)
	}

	var result []T
	for {
		var v T
		e = dec.Decode(&v)
		if errors.Is(e, io.EOF) {
			return result, nil
		}
		if e != nil {
			return nil, decodeError(rows[rr.next-1].pos(0), e)
		}
		result = append(result, v)
	}
}

// Point is a row of a block with two or three numeric columns.
type Point struct {
	X float64 `csv:"x" json:"x" yaml:"x"`
	Y float64 `csv:"y" json:"y" yaml:"y"`
	Z float64 `csv:"z,omitempty" json:"z,omitempty" yaml:"z,omitempty"`
}

var pointHeader = []string{"x", "y", "z"}

// Points decodes a block whose rows all have two or three fields.
// Returns false if the block has another shape.
func Points(b *parser.Block) ([]Point, bool, error) {
	rows, e := Rows(b)
	if e != nil || len(rows) == 0 {
		return nil, false, e
	}

	width := len(rows[0].Fields)
	if width < 2 || width > len(pointHeader) {
		return nil, false, nil
	}
	for _, r := range rows[1:] {
		if len(r.Fields) != width {
			return nil, false, nil
		}
	}

	points, e := Decode[Point](b, pointHeader[:width]...)
	if e != nil {
		return nil, false, e
	}
	return points, true, nil
}
