package functions

import (
	"errors"
	"os"

	"github.com/puppetlabs/go-puppet/internal/types"
)

func init() {
	register("epp", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		path, ok := c.Arg(0).(types.String)
		if !ok {
			return nil, errors.New("epp: first argument must be a template path")
		}
		source, err := os.ReadFile(string(path))
		if err != nil {
			return nil, err
		}
		return renderEPP(c, string(source))
	}})

	register("inline_epp", Entry{Pattern: anySignature(), Fn: func(c *CallContext) (types.Value, error) {
		source, ok := c.Arg(0).(types.String)
		if !ok {
			return nil, errors.New("inline_epp: first argument must be a String")
		}
		return renderEPP(c, string(source))
	}})
}

// renderEPP extracts the optional argument hash (second positional
// argument; its keys must be strings) and delegates to the
// evaluator-supplied EvalEPP closure.
func renderEPP(c *CallContext, source string) (types.Value, error) {
	if c.EvalEPP == nil {
		return nil, errors.New("epp: no template renderer is configured")
	}
	var args *types.Hash
	if len(c.Args) > 1 {
		h, ok := c.Arg(1).(*types.Hash)
		if !ok {
			return nil, errors.New("epp: second argument must be a Hash of template parameters")
		}
		for _, k := range h.Keys() {
			if _, ok := k.(types.String); !ok {
				return nil, errors.New("epp: argument keys must be strings")
			}
		}
		args = h
	} else {
		args = types.NewHash()
	}
	out, err := c.EvalEPP(source, args)
	if err != nil {
		return nil, err
	}
	return types.String(out), nil
}
