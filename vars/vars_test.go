package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestLookupInnermostFirst(t *testing.T) {
	c := New()
	c.Set("x", cty.NumberIntVal(1))
	c.Set("name", cty.StringVal("global"))
	c.Push()
	c.Local("name")
	c.Set("name", cty.StringVal("local"))

	v, found := c.Lookup("name")
	require.True(t, found)
	assert.Equal(t, "local", v.AsString())

	v, found = c.Lookup("x")
	require.True(t, found)
	assert.True(t, v.RawEquals(cty.NumberIntVal(1)))

	require.True(t, c.Pop())
	v, _ = c.Lookup("name")
	assert.Equal(t, "global", v.AsString())
	assert.False(t, c.Pop())
	assert.Equal(t, 1, c.Depth())
}

func TestSetUpdatesOuter(t *testing.T) {
	c := New()
	c.Set("x", cty.NumberIntVal(1))
	c.Push()
	c.Set("x", cty.NumberIntVal(2))
	c.Set("y", cty.NumberIntVal(3))
	c.Pop()

	v, _ := c.Lookup("x")
	assert.True(t, v.RawEquals(cty.NumberIntVal(2)))
	_, found := c.Lookup("y")
	assert.False(t, found)
}

func TestGlobal(t *testing.T) {
	c := New()
	c.Push()
	c.Local("g")
	c.Global("g")
	c.Set("g", cty.StringVal("v"))
	c.Pop()

	v, found := c.Lookup("g")
	require.True(t, found)
	assert.Equal(t, "v", v.AsString())
}

func TestFlattenAndUnset(t *testing.T) {
	c := New()
	c.Set("a", cty.NumberIntVal(1))
	c.Set("b", cty.StringVal("x"))
	c.Push()
	c.Local("a")
	c.Local("c")
	c.Set("a", cty.NumberIntVal(5))

	flat := c.Flatten()
	assert.Len(t, flat, 2)
	assert.True(t, flat["a"].RawEquals(cty.NumberIntVal(5)))
	assert.Equal(t, []string{"a", "b", "c"}, c.Names())

	c.Unset("a")
	v, _ := c.Lookup("a")
	assert.True(t, v.RawEquals(cty.NumberIntVal(1)))
	c.Unset("b")
	_, found := c.Lookup("b")
	assert.False(t, found)
}
