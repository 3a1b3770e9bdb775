package functions_test

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/functions"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func call(t *testing.T, name string, cc *functions.CallContext) (types.Value, error) {
	t.Helper()
	return functions.Dispatch(name, cc)
}

func TestFailRaisesJoinedMessage(t *testing.T) {
	_, err := call(t, "fail", &functions.CallContext{Args: []types.Value{types.String("a"), types.String("b")}})
	if err == nil || err.Error() != "a b" {
		t.Fatalf("got %v", err)
	}
}

func TestSplitByString(t *testing.T) {
	v, err := call(t, "split", &functions.CallContext{Args: []types.Value{types.String("a,b,c"), types.String(",")}})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	arr := v.(types.Array)
	if len(arr.Elements) != 3 || arr.Elements[1] != types.String("b") {
		t.Fatalf("got %v", arr)
	}
}

func TestSplitEmptySeparatorExplodes(t *testing.T) {
	v, err := call(t, "split", &functions.CallContext{Args: []types.Value{types.String("abc"), types.String("")}})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	arr := v.(types.Array)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 code points, got %v", arr)
	}
}

func TestReduceSumsWithoutInitial(t *testing.T) {
	arr := types.Array{Elements: []types.Value{types.Integer(1), types.Integer(2), types.Integer(3)}}
	yield := func(args []types.Value) (types.Value, error) {
		a, b := args[0].(types.Integer), args[1].(types.Integer)
		return types.Integer(a + b), nil
	}
	v, err := call(t, "reduce", &functions.CallContext{Args: []types.Value{arr}, Yield: yield})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if v != types.Integer(6) {
		t.Fatalf("got %v, want 6", v)
	}
}

func TestMapBreaksEarly(t *testing.T) {
	arr := types.Array{Elements: []types.Value{types.Integer(1), types.Integer(2), types.Integer(3)}}
	yield := func(args []types.Value) (types.Value, error) {
		n := args[0].(types.Integer)
		if n == 2 {
			return types.Break{}, nil
		}
		return types.Integer(n * 10), nil
	}
	v, err := call(t, "map", &functions.CallContext{Args: []types.Value{arr}, Yield: yield})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	got := v.(types.Array)
	if len(got.Elements) != 1 || got.Elements[0] != types.Integer(10) {
		t.Fatalf("got %v", got)
	}
}

func TestAssertTypePassesThrough(t *testing.T) {
	v, err := call(t, "assert_type", &functions.CallContext{
		Args: []types.Value{types.TypeRef{Type: types.UnboundedInteger()}, types.Integer(5)},
	})
	if err != nil {
		t.Fatalf("assert_type: %v", err)
	}
	if v != types.Integer(5) {
		t.Fatalf("got %v", v)
	}
}

func TestAssertTypeFailsWithoutLambda(t *testing.T) {
	_, err := call(t, "assert_type", &functions.CallContext{
		Args: []types.Value{types.TypeRef{Type: types.UnboundedInteger()}, types.String("nope")},
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestNewInstantiatesAndYields(t *testing.T) {
	yielded := false
	yield := func(args []types.Value) (types.Value, error) {
		yielded = true
		return args[0], nil
	}
	v, err := call(t, "new", &functions.CallContext{
		Args:  []types.Value{types.TypeRef{Type: types.BooleanType{}}, types.String("yes")},
		Yield: yield,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !yielded || v != types.Boolean(true) {
		t.Fatalf("got %v, yielded=%v", v, yielded)
	}
}
