package operators_test

import (
	"math"
	"testing"

	"github.com/puppetlabs/go-puppet/internal/operators"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func dispatch(t *testing.T, op string, args ...types.Value) types.Value {
	t.Helper()
	v, err := operators.Dispatch(op, args, nil)
	if err != nil {
		t.Fatalf("dispatch %q: %v", op, err)
	}
	return v
}

func TestIntegerArithmetic(t *testing.T) {
	if got := dispatch(t, "+", types.Integer(2), types.Integer(3)); got != types.Integer(5) {
		t.Fatalf("2+3 = %v, want 5", got)
	}
	if got := dispatch(t, "*", types.Integer(6), types.Integer(7)); got != types.Integer(42) {
		t.Fatalf("6*7 = %v, want 42", got)
	}
}

func TestIntegerOverflow(t *testing.T) {
	_, err := operators.Dispatch("*", []types.Value{types.Integer(math.MaxInt64), types.Integer(2)}, nil)
	if _, ok := err.(*operators.OverflowError); !ok {
		t.Fatalf("expected *OverflowError, got %v", err)
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := operators.Dispatch("/", []types.Value{types.Integer(1), types.Integer(0)}, nil)
	if _, ok := err.(*operators.DivideByZeroError); !ok {
		t.Fatalf("expected *DivideByZeroError, got %v", err)
	}
}

func TestStringConcat(t *testing.T) {
	if got := dispatch(t, "+", types.String("foo"), types.String("bar")); got != types.String("foobar") {
		t.Fatalf("got %v", got)
	}
}

func TestArrayAppendViaShiftLeft(t *testing.T) {
	got := dispatch(t, "<<", types.Array{Elements: []types.Value{types.Integer(1)}}, types.Integer(2))
	arr := got.(types.Array)
	if len(arr.Elements) != 2 || arr.Elements[1] != types.Integer(2) {
		t.Fatalf("got %v", arr)
	}
}

func TestCaseInsensitiveStringEquality(t *testing.T) {
	if got := dispatch(t, "==", types.String("Foo"), types.String("foo")); got != types.Boolean(true) {
		t.Fatalf("expected case-insensitive equality, got %v", got)
	}
}

func TestCaseInsensitiveStringComparison(t *testing.T) {
	if got := dispatch(t, "<", types.String("Apple"), types.String("banana")); got != types.Boolean(true) {
		t.Fatalf("expected Apple < banana, got %v", got)
	}
}

func TestNegativeShiftReversesDirection(t *testing.T) {
	// 8 >> -1 behaves as 8 << 1 (spec: negative operand reverses direction).
	got := dispatch(t, ">>", types.Integer(8), types.Integer(-1))
	if got != types.Integer(16) {
		t.Fatalf("8 >> -1 = %v, want 16", got)
	}
}

func TestInSubstring(t *testing.T) {
	got := dispatch(t, "in", types.String("oo"), types.String("FooBar"))
	if got != types.Boolean(true) {
		t.Fatalf("expected 'oo' in 'FooBar', got %v", got)
	}
}

func TestMatchInstallsCaptures(t *testing.T) {
	re, err := types.NewRegex(`(\d+)-(\d+)`)
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	d := operators.Lookup("=~")
	var ctx *operators.CallContext
	for _, e := range d.Entries {
		if e.Pattern.String() == "(String, Regexp)" {
			ctx = &operators.CallContext{Operands: []types.Value{types.String("12-34"), re}}
			if _, err := e.Fn(ctx); err != nil {
				t.Fatalf("match: %v", err)
			}
			break
		}
	}
	if ctx == nil || len(ctx.Captures) != 3 {
		t.Fatalf("expected 3 captures ($0 whole match, $1, $2), got %v", ctx)
	}
}

func TestUnaryNegate(t *testing.T) {
	if got := dispatch(t, "-@", types.Integer(5)); got != types.Integer(-5) {
		t.Fatalf("got %v", got)
	}
}

func TestNoMatchingOverloadReportsTypeError(t *testing.T) {
	_, err := operators.Dispatch("+", []types.Value{types.Boolean(true), types.Boolean(false)}, nil)
	if _, ok := err.(*operators.TypeError); !ok {
		t.Fatalf("expected *TypeError, got %v", err)
	}
}
