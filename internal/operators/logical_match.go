package operators

import (
	"strings"

	"github.com/puppetlabs/go-puppet/internal/types"
)

// `&&`/`and` and `||`/`or` are not registered here: they short-circuit
// their right operand, so the evaluator evaluates them directly rather
// than through this eager-operand dispatch table.

func init() {
	register("!", Entry{Pattern: any1(), Fn: func(c *CallContext) (types.Value, error) {
		return types.Boolean(!types.Truthy(c.Left())), nil
	}})

	register("=~", matchEntries(true)...)
	register("!~", matchEntries(false)...)

	register("in", Entry{Pattern: any2(), Fn: func(c *CallContext) (types.Value, error) {
		return inOperator(c)
	}})
}

// matchEntries implements `=~` and `!~`: they set the enclosing match
// scope to the captured groups when a regex matches a string; a match
// against a Type calls is_instance instead.
func matchEntries(wantMatch bool) []Entry {
	return []Entry{
		{Pattern: Pattern{types.UnboundedString(), types.RegexpType{}}, Fn: func(c *CallContext) (types.Value, error) {
			return matchString(c, c.Right().(types.Regex), wantMatch)
		}},
		{Pattern: Pattern{types.UnboundedString(), types.TypeType{}}, Fn: func(c *CallContext) (types.Value, error) {
			tr := c.Right().(types.TypeRef)
			matched := types.IsInstance(tr.Type, c.Left())
			return types.Boolean(matched == wantMatch), nil
		}},
	}
}

func matchString(c *CallContext, re types.Regex, wantMatch bool) (types.Value, error) {
	s := string(c.Left().(types.String))
	m := re.Compiled.FindStringSubmatch(s)
	matched := m != nil
	if matched {
		captures := make([]types.Value, len(m))
		for i, g := range m {
			captures[i] = types.String(g)
		}
		c.Captures = captures
	}
	return types.Boolean(matched == wantMatch), nil
}

// inOperator implements `in`: substring containment, regex search with
// group capture, array/hash membership with ==, and Type-in-collection
// by is_instance.
func inOperator(c *CallContext) (types.Value, error) {
	needle, haystack := c.Left(), c.Right()
	switch hay := haystack.(type) {
	case types.String:
		switch n := needle.(type) {
		case types.String:
			return types.Boolean(strings.Contains(strings.ToLower(string(hay)), strings.ToLower(string(n)))), nil
		case types.Regex:
			m := n.Compiled.FindStringSubmatch(string(hay))
			if m != nil {
				captures := make([]types.Value, len(m))
				for i, g := range m {
					captures[i] = types.String(g)
				}
				c.Captures = captures
			}
			return types.Boolean(m != nil), nil
		}
		return types.Boolean(false), nil
	case types.Array:
		if tr, ok := needle.(types.TypeRef); ok {
			for _, e := range hay.Elements {
				if types.IsInstance(tr.Type, e) {
					return types.Boolean(true), nil
				}
			}
			return types.Boolean(false), nil
		}
		for _, e := range hay.Elements {
			if types.Equal(e, needle) {
				return types.Boolean(true), nil
			}
		}
		return types.Boolean(false), nil
	case *types.Hash:
		_, ok := hay.Get(needle)
		return types.Boolean(ok), nil
	default:
		return types.Boolean(false), nil
	}
}
