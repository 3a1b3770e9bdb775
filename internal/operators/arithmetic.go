package operators

import (
	"fmt"
	"math"

	"github.com/puppetlabs/go-puppet/internal/types"
)

// OverflowError reports a signed-64-bit arithmetic overflow.
type OverflowError struct {
	Operator string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("arithmetic overflow in %q", e.Operator)
}

// DivideByZeroError reports integer division or modulo by zero.
type DivideByZeroError struct{ Operator string }

func (e *DivideByZeroError) Error() string {
	return fmt.Sprintf("%q by zero", e.Operator)
}

func numericType() Pattern {
	return Pattern{types.NumericType{}, types.NumericType{}}
}

func asFloat(v types.Value) float64 {
	switch n := v.(type) {
	case types.Integer:
		return float64(n)
	case types.Float:
		return float64(n)
	default:
		return math.NaN()
	}
}

func bothInt(v []types.Value) (int64, int64, bool) {
	a, ok1 := v[0].(types.Integer)
	b, ok2 := v[1].(types.Integer)
	return int64(a), int64(b), ok1 && ok2
}

func init() {
	register("+",
		Entry{Pattern: Pattern{types.ByName("Array"), types.ByName("Array")}, Fn: func(c *CallContext) (types.Value, error) {
			l, r := c.Left().(types.Array), c.Right().(types.Array)
			elems := append(append([]types.Value{}, l.Elements...), r.Elements...)
			return types.Array{Elements: elems}, nil
		}},
		Entry{Pattern: numericType(), Fn: func(c *CallContext) (types.Value, error) {
			if a, b, ok := bothInt(c.Operands); ok {
				sum := a + b
				if (b > 0 && sum < a) || (b < 0 && sum > a) {
					return nil, &OverflowError{Operator: "+"}
				}
				return types.Integer(sum), nil
			}
			return types.Float(asFloat(c.Left()) + asFloat(c.Right())), nil
		}},
		Entry{Pattern: Pattern{types.UnboundedString(), types.UnboundedString()}, Fn: func(c *CallContext) (types.Value, error) {
			return types.String(string(c.Left().(types.String)) + string(c.Right().(types.String))), nil
		}},
	)

	register("-",
		Entry{Pattern: numericType(), Fn: func(c *CallContext) (types.Value, error) {
			if a, b, ok := bothInt(c.Operands); ok {
				diff := a - b
				if (b < 0 && diff < a) || (b > 0 && diff > a) {
					return nil, &OverflowError{Operator: "-"}
				}
				return types.Integer(diff), nil
			}
			return types.Float(asFloat(c.Left()) - asFloat(c.Right())), nil
		}},
	)

	register("*",
		Entry{Pattern: numericType(), Fn: func(c *CallContext) (types.Value, error) {
			if a, b, ok := bothInt(c.Operands); ok {
				if a == 0 || b == 0 {
					return types.Integer(0), nil
				}
				prod := a * b
				if prod/b != a {
					return nil, &OverflowError{Operator: "*"}
				}
				return types.Integer(prod), nil
			}
			return types.Float(asFloat(c.Left()) * asFloat(c.Right())), nil
		}},
	)

	register("/",
		Entry{Pattern: numericType(), Fn: func(c *CallContext) (types.Value, error) {
			if a, b, ok := bothInt(c.Operands); ok {
				if b == 0 {
					return nil, &DivideByZeroError{Operator: "/"}
				}
				return types.Integer(a / b), nil
			}
			return types.Float(asFloat(c.Left()) / asFloat(c.Right())), nil
		}},
	)

	register("%",
		Entry{Pattern: Pattern{types.UnboundedInteger(), types.UnboundedInteger()}, Fn: func(c *CallContext) (types.Value, error) {
			a, b, _ := bothInt(c.Operands)
			if b == 0 {
				return nil, &DivideByZeroError{Operator: "%"}
			}
			return types.Integer(a % b), nil
		}},
	)

	register("<<",
		Entry{Pattern: Pattern{types.ByName("Array"), types.AnyType{}}, Fn: func(c *CallContext) (types.Value, error) {
			l := c.Left().(types.Array)
			elems := append(append([]types.Value{}, l.Elements...), c.Right())
			return types.Array{Elements: elems}, nil
		}},
		Entry{Pattern: Pattern{types.UnboundedInteger(), types.UnboundedInteger()}, Fn: func(c *CallContext) (types.Value, error) {
			return shift(c, true)
		}},
	)

	register(">>",
		Entry{Pattern: Pattern{types.UnboundedInteger(), types.UnboundedInteger()}, Fn: func(c *CallContext) (types.Value, error) {
			return shift(c, false)
		}},
	)

	register("-@",
		Entry{Pattern: Pattern{types.UnboundedInteger()}, Fn: func(c *CallContext) (types.Value, error) {
			n := int64(c.Left().(types.Integer))
			if n == math.MinInt64 {
				return nil, &OverflowError{Operator: "-@"}
			}
			return types.Integer(-n), nil
		}},
		Entry{Pattern: Pattern{types.UnboundedFloat()}, Fn: func(c *CallContext) (types.Value, error) {
			return types.Float(-float64(c.Left().(types.Float))), nil
		}},
	)
}

// shift implements `<<`/`>>`: if either operand is negative, reverse
// direction and keep the sign of the left operand.
func shift(c *CallContext, left bool) (types.Value, error) {
	a := int64(c.Left().(types.Integer))
	b := int64(c.Right().(types.Integer))
	dir := left
	if b < 0 {
		dir = !dir
		b = -b
	}
	if a < 0 {
		mag := uint64(-a)
		var shifted uint64
		if dir {
			shifted = mag << uint(b)
		} else {
			shifted = mag >> uint(b)
		}
		return types.Integer(-int64(shifted)), nil
	}
	if dir {
		return types.Integer(a << uint(b)), nil
	}
	return types.Integer(a >> uint(b)), nil
}
