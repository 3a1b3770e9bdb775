package evaluator

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// evalAccess implements `target[args]`: array/string indexing and
// slicing, hash lookup (single key or a list of keys), and type
// parameterization, dispatched on the runtime kind of target.
func (ev *Evaluator) evalAccess(a *ast.AccessExpr) (types.Value, error) {
	target, err := ev.evalExpr(a.Target)
	if err != nil {
		return nil, err
	}
	args := make([]types.Value, len(a.Arguments))
	for i, e := range a.Arguments {
		v, err := ev.evalExpr(e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch t := target.(type) {
	case types.Array:
		return accessArray(t, args)
	case types.String:
		return accessString(t, args)
	case *types.Hash:
		return accessHash(t, args)
	case types.TypeRef:
		name := baseTypeName(t.Type.String())
		if !types.IsBuiltinTypeName(name) {
			if refs, ok := multiTitleRefs(name, args); ok {
				return refs, nil
			}
		}
		built, err := types.Build(name, args)
		if err != nil {
			return nil, ev.fail(a.Range(), err)
		}
		return types.TypeRef{Type: built}, nil
	default:
		return nil, ev.fail(a.Range(), fmt.Errorf("cannot index into a %s value", types.Infer(target).String()))
	}
}

// multiTitleRefs flattens a plain resource-type reference's multiple
// String titles (`File['a', 'b']`) into an Array of single-title
// references, the way a relationship or override statement expects to
// consume either a single reference or a list of them. A single title,
// or any non-String argument (a variable holding a type, say), falls
// through to types.Build's own single-reference handling instead.
func multiTitleRefs(typeName string, args []types.Value) (types.Value, bool) {
	if len(args) < 2 {
		return nil, false
	}
	elems := make([]types.Value, len(args))
	for i, a := range args {
		s, ok := a.(types.String)
		if !ok {
			return nil, false
		}
		elems[i] = types.TypeRef{Type: types.ResourceType{TypeName: typeName, Title: string(s)}}
	}
	return types.Array{Elements: elems}, true
}

func baseTypeName(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}

func normalizeIndex(i, length int64) int64 {
	if i < 0 {
		return length + i
	}
	return i
}

func accessArray(a types.Array, args []types.Value) (types.Value, error) {
	n := int64(len(a.Elements))
	if len(args) == 1 {
		idx, ok := args[0].(types.Integer)
		if !ok {
			return nil, fmt.Errorf("array index must be an Integer")
		}
		i := normalizeIndex(int64(idx), n)
		if i < 0 || i >= n {
			return types.UndefV, nil
		}
		return a.Elements[i], nil
	}
	if len(args) == 2 {
		start, ok1 := args[0].(types.Integer)
		count, ok2 := args[1].(types.Integer)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("array slice bounds must be Integers")
		}
		from := normalizeIndex(int64(start), n)
		if from < 0 {
			from = 0
		}
		to := from + int64(count)
		if to > n {
			to = n
		}
		if from >= to {
			return types.Array{}, nil
		}
		out := make([]types.Value, to-from)
		copy(out, a.Elements[from:to])
		return types.Array{Elements: out}, nil
	}
	return nil, fmt.Errorf("array access takes 1 or 2 arguments, got %d", len(args))
}

func accessString(s types.String, args []types.Value) (types.Value, error) {
	runes := []rune(string(s))
	n := int64(len(runes))
	if len(args) == 1 {
		idx, ok := args[0].(types.Integer)
		if !ok {
			return nil, fmt.Errorf("string index must be an Integer")
		}
		i := normalizeIndex(int64(idx), n)
		if i < 0 || i >= n {
			return types.UndefV, nil
		}
		return types.String(string(runes[i])), nil
	}
	if len(args) == 2 {
		start, ok1 := args[0].(types.Integer)
		count, ok2 := args[1].(types.Integer)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("string slice bounds must be Integers")
		}
		from := normalizeIndex(int64(start), n)
		if from < 0 {
			from = 0
		}
		to := from + int64(count)
		if to > n {
			to = n
		}
		if from >= to {
			return types.String(""), nil
		}
		return types.String(string(runes[from:to])), nil
	}
	return nil, fmt.Errorf("string access takes 1 or 2 arguments, got %d", len(args))
}

func accessHash(h *types.Hash, args []types.Value) (types.Value, error) {
	if len(args) == 1 {
		v, ok := h.Get(args[0])
		if !ok {
			return types.UndefV, nil
		}
		return v, nil
	}
	out := make([]types.Value, len(args))
	for i, k := range args {
		v, ok := h.Get(k)
		if !ok {
			v = types.UndefV
		}
		out[i] = v
	}
	return types.Array{Elements: out}, nil
}
