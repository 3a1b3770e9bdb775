package operators

import "github.com/puppetlabs/go-puppet/internal/types"

func init() {
	register("==", Entry{Pattern: any2(), Fn: func(c *CallContext) (types.Value, error) {
		return types.Boolean(types.Equal(c.Left(), c.Right())), nil
	}})
	register("!=", Entry{Pattern: any2(), Fn: func(c *CallContext) (types.Value, error) {
		return types.Boolean(!types.Equal(c.Left(), c.Right())), nil
	}})

	register("<", orderEntries(func(cmp int) bool { return cmp < 0 })...)
	register("<=", orderEntries(func(cmp int) bool { return cmp <= 0 })...)
	register(">", orderEntries(func(cmp int) bool { return cmp > 0 })...)
	register(">=", orderEntries(func(cmp int) bool { return cmp >= 0 })...)
}

// orderEntries builds the two overloads every ordering comparator shares:
// numeric (int/float mixed) and string (case-insensitive,
// locale-independent lexicographic).
func orderEntries(accept func(int) bool) []Entry {
	return []Entry{
		{Pattern: numericType(), Fn: func(c *CallContext) (types.Value, error) {
			a, b := asFloat(c.Left()), asFloat(c.Right())
			cmp := 0
			switch {
			case a < b:
				cmp = -1
			case a > b:
				cmp = 1
			}
			return types.Boolean(accept(cmp)), nil
		}},
		{Pattern: Pattern{types.UnboundedString(), types.UnboundedString()}, Fn: func(c *CallContext) (types.Value, error) {
			l, r := string(c.Left().(types.String)), string(c.Right().(types.String))
			return types.Boolean(accept(types.CompareStrings(l, r))), nil
		}},
	}
}
