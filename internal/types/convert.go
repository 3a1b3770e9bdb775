package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversionError is raised by Instantiate when an argument cannot be
// converted to the target type.
type ConversionError struct {
	Target    Type
	ArgIndex  int
	Reason    string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("new %s(...): argument %d: %s", e.Target.String(), e.ArgIndex, e.Reason)
}

// Instantiate implements `new T(args...)` for the handful of concrete
// types with well-defined conversions (Boolean, Integer, Float, Numeric,
// String, Array, Hash). Types without a conversion rule return a
// ConversionError.
func Instantiate(target Type, args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, &ConversionError{Target: target, ArgIndex: 0, Reason: "missing argument"}
	}
	switch t := target.(type) {
	case BooleanType:
		return instantiateBoolean(args[0])
	case IntegerType:
		return instantiateInteger(t, args[0])
	case FloatType:
		return instantiateFloat(args[0])
	case NumericType:
		return instantiateNumeric(args[0])
	case StringType:
		return instantiateString(args[0])
	case ArrayType:
		return instantiateArray(t, args[0])
	case HashType:
		return instantiateHash(args[0])
	default:
		return nil, &ConversionError{Target: target, ArgIndex: 0, Reason: "no conversion defined for " + target.String()}
	}
}

func instantiateBoolean(v Value) (Value, error) {
	switch val := v.(type) {
	case Boolean:
		return val, nil
	case String:
		switch strings.ToLower(string(val)) {
		case "true", "yes", "y", "t", "1":
			return Boolean(true), nil
		case "false", "no", "n", "f", "0":
			return Boolean(false), nil
		}
		return nil, &ConversionError{Target: BooleanType{}, ArgIndex: 0, Reason: "cannot convert '" + string(val) + "' to Boolean"}
	case Integer:
		return Boolean(val != 0), nil
	default:
		return nil, &ConversionError{Target: BooleanType{}, ArgIndex: 0, Reason: "unsupported source value"}
	}
}

func instantiateInteger(t IntegerType, v Value) (Value, error) {
	var i int64
	switch val := v.(type) {
	case Integer:
		i = int64(val)
	case Float:
		i = int64(val)
	case Boolean:
		if val {
			i = 1
		}
	case String:
		s := strings.TrimSpace(string(val))
		base := 10
		switch {
		case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
			base = 16
			s = s[2:]
		case strings.HasPrefix(s, "0") && len(s) > 1:
			base = 8
			s = s[1:]
		}
		n, err := strconv.ParseInt(s, base, 64)
		if err != nil {
			return nil, &ConversionError{Target: t, ArgIndex: 0, Reason: "cannot convert '" + string(val) + "' to Integer"}
		}
		i = n
	default:
		return nil, &ConversionError{Target: t, ArgIndex: 0, Reason: "unsupported source value"}
	}
	if i < t.From || i > t.To {
		return nil, &ConversionError{Target: t, ArgIndex: 0, Reason: "value out of range"}
	}
	return Integer(i), nil
}

func instantiateFloat(v Value) (Value, error) {
	switch val := v.(type) {
	case Float:
		return val, nil
	case Integer:
		return Float(val), nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return nil, &ConversionError{Target: UnboundedFloat(), ArgIndex: 0, Reason: "cannot convert '" + string(val) + "' to Float"}
		}
		return Float(f), nil
	default:
		return nil, &ConversionError{Target: UnboundedFloat(), ArgIndex: 0, Reason: "unsupported source value"}
	}
}

func instantiateNumeric(v Value) (Value, error) {
	switch val := v.(type) {
	case Integer, Float:
		return val, nil
	case String:
		s := strings.TrimSpace(string(val))
		if n, err := strconv.ParseInt(s, 0, 64); err == nil {
			return Integer(n), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f), nil
		}
		return nil, &ConversionError{Target: NumericType{}, ArgIndex: 0, Reason: "cannot convert '" + s + "' to Numeric"}
	default:
		return nil, &ConversionError{Target: NumericType{}, ArgIndex: 0, Reason: "unsupported source value"}
	}
}

func instantiateString(v Value) (Value, error) {
	return String(v.Inspect()), nil
}

func instantiateArray(t ArrayType, v Value) (Value, error) {
	switch val := v.(type) {
	case Array:
		return val, nil
	case *Hash:
		elems := make([]Value, 0, val.Len())
		val.Each(func(k, v Value) {
			elems = append(elems, Array{Elements: []Value{k, v}})
		})
		return Array{Elements: elems}, nil
	default:
		return Array{Elements: []Value{val}}, nil
	}
}

func instantiateHash(v Value) (Value, error) {
	switch val := v.(type) {
	case *Hash:
		return val, nil
	case Array:
		h := NewHash()
		for i := 0; i+1 < len(val.Elements); i += 2 {
			h.Set(val.Elements[i], val.Elements[i+1])
		}
		return h, nil
	default:
		return nil, &ConversionError{Target: HashType{}, ArgIndex: 0, Reason: "unsupported source value"}
	}
}
