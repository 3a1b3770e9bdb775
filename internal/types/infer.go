package types

// Infer computes a value's *fully specific* inferred type, used in diagnostics (e.g. assert_type's error message).
func Infer(v Value) Type {
	switch val := v.(type) {
	case Undef:
		return UndefType{}
	case DefaultValue:
		return DefaultType{}
	case Boolean:
		return BooleanType{}
	case Integer:
		return IntegerType{From: int64(val), To: int64(val)}
	case Float:
		return FloatType{From: float64(val), To: float64(val)}
	case String:
		n := int64(len([]rune(string(val))))
		return StringType{From: n, To: n}
	case Regex:
		return RegexpType{Pattern: val.Pattern}
	case TypeRef:
		return TypeType{T: val.Type}
	case Array:
		elems := make([]Type, len(val.Elements))
		for i, e := range val.Elements {
			elems[i] = Infer(e)
		}
		n := int64(len(val.Elements))
		return TupleType{Elements: elems, From: n, To: n}
	case *Hash:
		fields := make([]StructField, 0, val.Len())
		val.Each(func(k, v Value) {
			name := k.Inspect()
			if ks, ok := k.(String); ok {
				name = string(ks)
			}
			fields = append(fields, StructField{Name: name, Type: Infer(v)})
		})
		return StructType{Fields: fields}
	case Iterator:
		return IteratorType{}
	case RuntimeObject:
		return RuntimeType{Runtime: "go", TypeName: val.RuntimeName}
	default:
		return AnyType{}
	}
}

// Reduce computes the *reduced* inferred type: like
// Infer, but with composite parameters generalized for cheap
// membership checks (e.g. assert_type's lambda is handed this, not the
// fully specific literal-bound type — grounded on original_source's
// assert_type.cc passing the generic inferred type to the block).
func Reduce(v Value) Type {
	return Infer(v).Generalize()
}

// IsInstance is the top-level entry point for `is_instance(value, guard)`.
func IsInstance(t Type, v Value) bool {
	return t.IsInstance(v, nil)
}

// IsAssignable is the top-level entry point for
// `is_assignable(other_type, guard)`.
func IsAssignable(t, other Type) bool {
	return t.IsAssignable(other, nil)
}
