// Package vars implements the variable scope chain used by macro expansion and expression evaluation.
package vars

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

type frame struct {
	values  map[string]cty.Value
	globals map[string]bool
}

func newFrame() *frame {
	return &frame{values: make(map[string]cty.Value), globals: make(map[string]bool)}
}

// Chain is a stack of variable scopes, the first one is the global scope.
// Lookups go from the innermost scope outwards.
type Chain struct {
	frames []*frame
}

// New creates a chain containing only the global scope.
func New() *Chain {
	return &Chain{frames: []*frame{newFrame()}}
}

// Depth returns the number of scopes including the global one.
func (c *Chain) Depth() int {
	return len(c.frames)
}

// Push opens a new innermost scope, e.g. on subroutine call.
func (c *Chain) Push() {
	c.frames = append(c.frames, newFrame())
}

// Pop drops the innermost scope. The global scope is never dropped.
func (c *Chain) Pop() bool {
	if len(c.frames) <= 1 {
		return false
	}

	c.frames = c.frames[:len(c.frames)-1]
	return true
}

func (c *Chain) inner() *frame {
	return c.frames[len(c.frames)-1]
}

// Global marks name in the innermost scope as referring to the global variable.
func (c *Chain) Global(name string) {
	if len(c.frames) > 1 {
		f := c.inner()
		f.globals[name] = true
		delete(f.values, name)
	}
}

// Local marks name in the innermost scope as a local variable hiding outer ones.
func (c *Chain) Local(name string) {
	f := c.inner()
	delete(f.globals, name)
	if _, has := f.values[name]; !has {
		f.values[name] = cty.NullVal(cty.DynamicPseudoType)
	}
}

// Lookup finds a variable searching from the innermost scope outwards.
// Declared but unset local variables are found with null value.
func (c *Chain) Lookup(name string) (cty.Value, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := c.frames[i]
		if f.globals[name] {
			v, has := c.frames[0].values[name]
			return v, has
		}
		if v, has := f.values[name]; has {
			return v, true
		}
	}
	return cty.NilVal, false
}

// Set assigns a variable. The variable is created in the innermost scope
// unless it is declared global there or already exists in an outer scope.
func (c *Chain) Set(name string, value cty.Value) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := c.frames[i]
		if f.globals[name] {
			c.frames[0].values[name] = value
			return
		}
		if _, has := f.values[name]; has {
			f.values[name] = value
			return
		}
	}
	c.inner().values[name] = value
}

// Unset removes a variable from the scope it is found in.
func (c *Chain) Unset(name string) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := c.frames[i]
		if f.globals[name] {
			delete(c.frames[0].values, name)
			return
		}
		if _, has := f.values[name]; has {
			delete(f.values, name)
			return
		}
	}
}

// Flatten returns all visible non-null variables, inner scopes hiding outer ones.
func (c *Chain) Flatten() map[string]cty.Value {
	result := make(map[string]cty.Value)
	for _, name := range c.Names() {
		if v, has := c.Lookup(name); has && !v.IsNull() {
			result[name] = v
		}
	}
	return result
}

// Names returns sorted names of all visible variables.
func (c *Chain) Names() []string {
	seen := make(map[string]bool)
	var result []string
	for _, f := range c.frames {
		for name := range f.values {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	sort.Strings(result)
	return result
}
