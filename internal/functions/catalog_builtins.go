package functions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/types"
)

func stringArgs(args []types.Value) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case types.String:
			out = append(out, string(v))
		case types.Array:
			out = append(out, stringArgs(v.Elements)...)
		}
	}
	return out
}

func init() {
	register("include", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		return types.UndefV, declareEach(c, "none")
	}})
	register("require", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		return types.UndefV, declareEach(c, "require")
	}})
	register("contain", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		return types.UndefV, declareEach(c, "contains")
	}})

	register("realize", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		if c.Realize == nil {
			return types.UndefV, errors.New("realize: no catalog in scope")
		}
		return types.UndefV, c.Realize(c.Args)
	}})

	register("fail", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		parts := make([]string, len(c.Args))
		for i, a := range c.Args {
			parts[i] = a.Inspect()
		}
		return nil, errors.New(strings.Join(parts, " "))
	}})

	register("tag", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		if c.CurrentResource == nil {
			return types.UndefV, errors.New("tag: no resource in scope")
		}
		r := c.CurrentResource()
		if tagger, ok := r.(interface{ AddTags(...string) }); ok {
			tagger.AddTags(stringArgs(c.Args)...)
		}
		return types.UndefV, nil
	}})

	register("tagged", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		if c.CurrentResource == nil {
			return types.Boolean(false), nil
		}
		r := c.CurrentResource()
		tagger, ok := r.(interface{ HasTag(string) bool })
		if !ok {
			return types.Boolean(false), nil
		}
		for _, tag := range stringArgs(c.Args) {
			if tagger.HasTag(tag) {
				return types.Boolean(true), nil
			}
		}
		return types.Boolean(false), nil
	}})

	register("assert_type", Entry{Pattern: anySignature(), Fn: assertType})
	register("new", Entry{Pattern: anySignature(), Fn: newFn})
	register("split", Entry{Pattern: anySignature(), Fn: splitFn})
}

// declareEach implements include/require/contain: declare every named
// (or array-of-named) class, installing relationship if any.
func declareEach(c *CallContext, relationship string) error {
	if c.DeclareClass == nil {
		return errors.New("include/require/contain: no catalog in scope")
	}
	for _, name := range stringArgs(c.Args) {
		if err := c.DeclareClass(name, relationship); err != nil {
			return err
		}
	}
	return nil
}

// assertType implements `assert_type`: return the value if it matches
// the type; otherwise, if a lambda is given, invoke it with
// (value, inferred_type) and use its return; otherwise, error.
func assertType(c *CallContext) (types.Value, error) {
	tr, ok := c.Arg(0).(types.TypeRef)
	if !ok {
		return nil, errors.New("assert_type: first argument must be a Type")
	}
	value := c.Arg(1)
	if types.IsInstance(tr.Type, value) {
		return value, nil
	}
	if c.Yield != nil {
		return c.Yield([]types.Value{value, types.TypeRef{Type: types.Reduce(value)}})
	}
	return nil, fmt.Errorf("type assertion failure: expected %s but found %s.", tr.Type.String(), types.Infer(value).String())
}

// newFn implements `new`: dispatch to a type's instantiate; if a lambda
// is given, call it with the constructed value.
func newFn(c *CallContext) (types.Value, error) {
	tr, ok := c.Arg(0).(types.TypeRef)
	if !ok {
		return nil, errors.New("new: first argument must be a Type")
	}
	result, err := types.Instantiate(tr.Type, c.Args[1:])
	if err != nil {
		return nil, err
	}
	if c.Yield != nil {
		return c.Yield([]types.Value{result})
	}
	return result, nil
}

// splitFn implements `split`: split a string by a string, regex, or
// Regexp type; empty separator explodes into code points.
func splitFn(c *CallContext) (types.Value, error) {
	s, ok := c.Arg(0).(types.String)
	if !ok {
		return nil, errors.New("split: first argument must be a String")
	}
	str := string(s)
	var parts []string
	switch sep := c.Arg(1).(type) {
	case types.String:
		if sep == "" {
			for _, r := range str {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(str, string(sep))
		}
	case types.Regex:
		parts = sep.Compiled.Split(str, -1)
	case types.TypeRef:
		re, ok := sep.Type.(types.RegexpType)
		if !ok {
			return nil, errors.New("split: second argument must be a String, Regexp value, or Regexp type")
		}
		compiled, err := types.NewRegex(re.Pattern)
		if err != nil {
			return nil, err
		}
		parts = compiled.Compiled.Split(str, -1)
	default:
		return nil, errors.New("split: second argument must be a String, Regexp value, or Regexp type")
	}
	elems := make([]types.Value, len(parts))
	for i, p := range parts {
		elems[i] = types.String(p)
	}
	return types.Array{Elements: elems}, nil
}
