package field

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ColourType is the object type of colour values.
var ColourType = cty.Object(map[string]cty.Type{
	"r": cty.Number,
	"g": cty.Number,
	"b": cty.Number,
})

// ColourVal creates a colour value, components are in range 0..1.
func ColourVal(r, g, b float64) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"r": cty.NumberFloatVal(r),
		"g": cty.NumberFloatVal(g),
		"b": cty.NumberFloatVal(b),
	})
}

// Colours is the table of named colours.
var Colours = map[string][3]float64{
	"black":      {0, 0, 0},
	"white":      {1, 1, 1},
	"red":        {1, 0, 0},
	"green":      {0, 1, 0},
	"blue":       {0, 0, 1},
	"yellow":     {1, 1, 0},
	"cyan":       {0, 1, 1},
	"magenta":    {1, 0, 1},
	"grey":       {0.5, 0.5, 0.5},
	"gray":       {0.5, 0.5, 0.5},
	"orange":     {1, 0.5, 0},
	"purple":     {0.5, 0, 0.5},
	"brown":      {0.6, 0.3, 0},
	"pink":       {1, 0.75, 0.8},
	"navyblue":   {0, 0, 0.5},
	"olivegreen": {0.33, 0.42, 0.18},
}

// LookupColour finds a named colour, names are case-insensitive.
func LookupColour(name string) (cty.Value, bool) {
	c, found := Colours[strings.ToLower(name)]
	if !found {
		return cty.NilVal, false
	}
	return ColourVal(c[0], c[1], c[2]), true
}
