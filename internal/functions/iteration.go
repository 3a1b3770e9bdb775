package functions

import (
	"errors"

	"github.com/puppetlabs/go-puppet/internal/types"
)

// iterableElements flattens an Iterable value into a slice of (key,
// value) pairs, where key is the Integer index for arrays and the hash
// key for hashes.
func iterableElements(v types.Value) ([][2]types.Value, error) {
	switch val := v.(type) {
	case types.Array:
		pairs := make([][2]types.Value, len(val.Elements))
		for i, e := range val.Elements {
			pairs[i] = [2]types.Value{types.Integer(int64(i)), e}
		}
		return pairs, nil
	case *types.Hash:
		pairs := make([][2]types.Value, 0, val.Len())
		val.Each(func(k, v types.Value) {
			pairs = append(pairs, [2]types.Value{k, v})
		})
		return pairs, nil
	case types.Iterator:
		return nil, errors.New("iteration over a lazy Iterator is not supported outside each/map chains")
	default:
		return nil, errors.New("value is not Iterable")
	}
}

// yieldOne calls the lambda with either (value) or (key, value)
// depending on its declared parameter count, matching real Puppet's
// each/map block-arity convention.
func yieldOne(c *CallContext, key, value types.Value) (types.Value, error) {
	if c.Lambda != nil && len(c.Lambda.Parameters) >= 2 {
		return c.Yield([]types.Value{key, value})
	}
	return c.Yield([]types.Value{value})
}

func init() {
	register("each", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		pairs, err := iterableElements(c.Arg(0))
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			result, err := yieldOne(c, p[0], p[1])
			if err != nil {
				return nil, err
			}
			if _, isBreak := result.(types.Break); isBreak {
				break
			}
		}
		return c.Arg(0), nil
	}})

	register("map", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		pairs, err := iterableElements(c.Arg(0))
		if err != nil {
			return nil, err
		}
		out := make([]types.Value, 0, len(pairs))
		for _, p := range pairs {
			result, err := yieldOne(c, p[0], p[1])
			if err != nil {
				return nil, err
			}
			if _, isBreak := result.(types.Break); isBreak {
				break
			}
			if next, isNext := result.(types.Next); isNext {
				if next.Value != nil {
					out = append(out, next.Value)
				}
				continue
			}
			out = append(out, result)
		}
		return types.Array{Elements: out}, nil
	}})

	register("filter", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		pairs, err := iterableElements(c.Arg(0))
		if err != nil {
			return nil, err
		}
		out := make([]types.Value, 0, len(pairs))
		for _, p := range pairs {
			result, err := yieldOne(c, p[0], p[1])
			if err != nil {
				return nil, err
			}
			if _, isBreak := result.(types.Break); isBreak {
				break
			}
			if types.Truthy(result) {
				out = append(out, p[1])
			}
		}
		return types.Array{Elements: out}, nil
	}})

	register("reverse_each", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		pairs, err := iterableElements(c.Arg(0))
		if err != nil {
			return nil, err
		}
		for i := len(pairs) - 1; i >= 0; i-- {
			result, err := yieldOne(c, pairs[i][0], pairs[i][1])
			if err != nil {
				return nil, err
			}
			if _, isBreak := result.(types.Break); isBreak {
				break
			}
		}
		return c.Arg(0), nil
	}})

	register("reduce", Entry{Pattern: anySignature(), Fn: reduceFn})
	register("step", Entry{Pattern: anySignature(), Fn: stepFn})
	register("with", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		if c.Yield == nil {
			return nil, errors.New("with: a lambda is required")
		}
		return c.Yield(append([]types.Value{}, c.Args...))
	}})
}

// reduceFn implements `reduce(iterable, [initial]) |memo, value| { ... }`.
func reduceFn(c *CallContext) (types.Value, error) {
	pairs, err := iterableElements(c.Arg(0))
	if err != nil {
		return nil, err
	}
	var memo types.Value
	start := 0
	if len(c.Args) > 1 {
		memo = c.Arg(1)
	} else if len(pairs) > 0 {
		memo = pairs[0][1]
		start = 1
	} else {
		return types.UndefV, nil
	}
	for _, p := range pairs[start:] {
		result, err := c.Yield([]types.Value{memo, p[1]})
		if err != nil {
			return nil, err
		}
		if _, isBreak := result.(types.Break); isBreak {
			break
		}
		memo = result
	}
	return memo, nil
}

// stepFn implements `step(iterable, n) |value| { ... }`: yield every nth element.
func stepFn(c *CallContext) (types.Value, error) {
	pairs, err := iterableElements(c.Arg(0))
	if err != nil {
		return nil, err
	}
	n, ok := c.Arg(1).(types.Integer)
	if !ok || n <= 0 {
		return nil, errors.New("step: second argument must be a positive Integer")
	}
	for i := 0; i < len(pairs); i += int(n) {
		result, err := yieldOne(c, pairs[i][0], pairs[i][1])
		if err != nil {
			return nil, err
		}
		if _, isBreak := result.(types.Break); isBreak {
			break
		}
	}
	return c.Arg(0), nil
}
