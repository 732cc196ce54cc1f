package datablock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ava12/plotline/internal/test"
	"github.com/ava12/plotline/grammar"
	"github.com/ava12/plotline/parser"
	"github.com/ava12/plotline/ruledef"
	"github.com/ava12/plotline/source"
)

func block(lines ...string) *parser.Block {
	src := source.FromLines("data", lines...)
	b := &parser.Block{Kind: grammar.DataBlock}
	for i, text := range lines {
		b.Records = append(b.Records, &parser.Record{Text: text, Source: src.Line(i + 1)})
	}
	return b
}

func TestSplit(t *testing.T) {
	samples := map[string][]string{
		"1 2 3":                 {"1", "2", "3"},
		"  1,2 ,\t3  ":          {"1", "2", "3"},
		`"New York" 8.3`:        {"New York", "8.3"},
		`a,"b, c",,d`:           {"a", "b, c", "d"},
		"":                      nil,
		"\"\" x":                {"", "x"},
		"1e3 -2.5e-1 +4 0x10 x": {"1e3", "-2.5e-1", "+4", "0x10", "x"},
	}
	for text, expected := range samples {
		row, e := Split(source.Text(text))
		require.NoError(t, e, text)
		assert.Equal(t, expected, row.Fields, text)
		assert.Len(t, row.Cols, len(row.Fields), text)
	}

	row, _ := Split(source.Text(` a  "b"`))
	assert.Equal(t, []int{1, 4}, row.Cols)

	_, e := Split(source.FromLines("data", `1 "oops`).Line(1))
	ExpectErrorCode(t, QuoteError, e)
	ExpectString(t, "Unterminated quoted field. in data at line 1 col 3", e.Error())
}

func TestNumbers(t *testing.T) {
	values, e := Numbers(block("# x y", "1 2", "", "3, 4.5", "6"))
	require.NoError(t, e)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4.5}, {6}}, values)

	_, e = Numbers(block("1 2", "3 four"))
	ExpectErrorCode(t, NumberError, e)
	ExpectString(t, "Could not read \"four\" as a number. in data at line 2 col 3", e.Error())
}

type sale struct {
	City  string  `csv:"city"`
	Total float64 `csv:"total"`
	Count int     `csv:"count"`
}

func TestDecode(t *testing.T) {
	expected := []sale{{"Oslo", 10.5, 2}, {"New York", 7, 1}}

	sales, e := Decode[sale](block("city total count", "Oslo 10.5 2", `"New York" 7 1`))
	require.NoError(t, e)
	assert.Equal(t, expected, sales)

	sales, e = Decode[sale](block("Oslo,10.5,2", `"New York",7,1`), "city", "total", "count")
	require.NoError(t, e)
	assert.Equal(t, expected, sales)

	sales, e = Decode[sale](block("city total count"))
	require.NoError(t, e)
	assert.Empty(t, sales)

	_, e = Decode[sale](block("city total count", "Oslo ten 2"))
	ExpectErrorCode(t, DecodeError, e)

	_, e = Decode[sale](block("city total count", "Oslo 1"))
	ExpectErrorCode(t, DecodeError, e)
}

func TestPoints(t *testing.T) {
	points, ok, e := Points(block("1 2", "# skipped", "3,4.5"))
	require.NoError(t, e)
	require.True(t, ok)
	assert.Equal(t, []Point{{X: 1, Y: 2}, {X: 3, Y: 4.5}}, points)

	points, ok, e = Points(block("1 2 3"))
	require.NoError(t, e)
	require.True(t, ok)
	assert.Equal(t, []Point{{1, 2, 3}}, points)

	for _, b := range []*parser.Block{block("1"), block("1 2", "3"), block("1 2 3 4"), block()} {
		_, ok, e = Points(b)
		require.NoError(t, e)
		assert.False(t, ok)
	}

	_, _, e = Points(block("1 two"))
	ExpectErrorCode(t, DecodeError, e)
}

func TestInlineDataBlock(t *testing.T) {
	p := parser.New(ruledef.Builtin(), nil)
	ctx := context.Background()
	for _, text := range []string{"plot -- with lines", "1 2", "# comment", "2 4"} {
		res, e := p.Parse(ctx, source.Text(text))
		require.NoError(t, e, text)
		require.True(t, res.More, text)
	}
	res, e := p.Parse(ctx, source.Text("END"))
	require.NoError(t, e)
	require.NotNil(t, res.Record)

	blocks := Blocks(res.Record)
	require.Len(t, blocks, 1)
	values, e := Numbers(blocks[0])
	require.NoError(t, e)
	assert.Equal(t, [][]float64{{1, 2}, {2, 4}}, values)
}
