package types

import "fmt"

// Build constructs a Type from a type reference's bare name and its
// already-evaluated parameter values, as produced by evaluating a
// TypeReferenceExpr. Unknown names produce ResourceType so that
// user-defined resource/class type references (e.g. `File`, `My::Thing`)
// still round-trip as values even though this package only models the
// built-in type algebra.
// builtinTypeNames holds every name Build gives special parameterization
// rules to. A name outside this set reaching Build's default branch is a
// plain resource type or user type alias — the case evalAccess treats
// specially for multi-title references like File['a', 'b'].
var builtinTypeNames = map[string]bool{
	"Any": true, "Undef": true, "Default": true, "Scalar": true,
	"Data": true, "Numeric": true, "Boolean": true, "Integer": true,
	"Float": true, "String": true, "Pattern": true, "Enum": true,
	"Regexp": true, "Array": true, "Hash": true, "Tuple": true,
	"Collection": true, "Iterator": true, "Iterable": true,
	"Optional": true, "NotUndef": true, "Variant": true, "Type": true,
	"CatalogEntry": true, "Class": true, "Resource": true,
	"Runtime": true, "Callable": true,
}

// IsBuiltinTypeName reports whether name is one of the built-in
// parameterized types Build special-cases, as opposed to a plain
// resource type or user type alias.
func IsBuiltinTypeName(name string) bool {
	return builtinTypeNames[name]
}

func Build(name string, params []Value) (Type, error) {
	switch name {
	case "Any":
		return AnyType{}, nil
	case "Undef":
		return UndefType{}, nil
	case "Default":
		return DefaultType{}, nil
	case "Scalar":
		return ScalarType{}, nil
	case "Data":
		return DataType{}, nil
	case "Numeric":
		return NumericType{}, nil
	case "Boolean":
		return BooleanType{}, nil
	case "Integer":
		return buildIntegerLike(params)
	case "Float":
		return buildFloatLike(params)
	case "String":
		return buildStringLike(params)
	case "Pattern":
		pats := make([]Regex, 0, len(params))
		for _, p := range params {
			if r, ok := p.(Regex); ok {
				pats = append(pats, r)
			} else if s, ok := p.(String); ok {
				r, err := NewRegex(string(s))
				if err != nil {
					return nil, err
				}
				pats = append(pats, r)
			}
		}
		return PatternType{Patterns: pats}, nil
	case "Enum":
		vals := make([]string, 0, len(params))
		for _, p := range params {
			if s, ok := p.(String); ok {
				vals = append(vals, string(s))
			}
		}
		return EnumType{Values: vals}, nil
	case "Regexp":
		if len(params) == 0 {
			return RegexpType{}, nil
		}
		if s, ok := params[0].(String); ok {
			return RegexpType{Pattern: string(s)}, nil
		}
		if r, ok := params[0].(Regex); ok {
			return RegexpType{Pattern: r.Pattern}, nil
		}
		return RegexpType{}, nil
	case "Array":
		return buildArray(params)
	case "Hash":
		return buildHash(params)
	case "Tuple":
		return buildTuple(params)
	case "Collection":
		return buildCollection(params)
	case "Iterator":
		return IteratorType{T: firstTypeParam(params)}, nil
	case "Iterable":
		return IterableType{T: firstTypeParam(params)}, nil
	case "Optional":
		return OptionalType{T: firstTypeParam(params)}, nil
	case "NotUndef":
		return NotUndefType{T: firstTypeParam(params)}, nil
	case "Variant":
		ts := make([]Type, 0, len(params))
		for _, p := range params {
			if t := asType(p); t != nil {
				ts = append(ts, t)
			}
		}
		return VariantType{Types: ts}, nil
	case "Type":
		return TypeType{T: firstTypeParam(params)}, nil
	case "CatalogEntry":
		return CatalogEntryType{}, nil
	case "Class":
		if len(params) > 0 {
			if s, ok := params[0].(String); ok {
				return ClassType{Title: string(s)}, nil
			}
		}
		return ClassType{}, nil
	case "Resource":
		var typeName, title string
		if len(params) > 0 {
			if s, ok := params[0].(String); ok {
				typeName = string(s)
			}
		}
		if len(params) > 1 {
			if s, ok := params[1].(String); ok {
				title = string(s)
			}
		}
		return ResourceType{TypeName: typeName, Title: title}, nil
	case "Runtime":
		var rt, tn string
		if len(params) > 0 {
			if s, ok := params[0].(String); ok {
				rt = string(s)
			}
		}
		if len(params) > 1 {
			if s, ok := params[1].(String); ok {
				tn = string(s)
			}
		}
		return RuntimeType{Runtime: rt, TypeName: tn}, nil
	case "Callable":
		return buildCallable(params)
	default:
		// A resource-type or class reference used as a value, e.g.
		// `File['/tmp/x']` or a user type alias name.
		title := ""
		if len(params) == 1 {
			if s, ok := params[0].(String); ok {
				title = string(s)
			}
		}
		return ResourceType{TypeName: name, Title: title}, nil
	}
}

func asType(v Value) Type {
	if tv, ok := v.(TypeRef); ok {
		return tv.Type
	}
	return nil
}

func firstTypeParam(params []Value) Type {
	if len(params) == 0 {
		return nil
	}
	return asType(params[0])
}

func intParam(v Value) (int64, bool) {
	switch n := v.(type) {
	case Integer:
		return int64(n), true
	case Float:
		return int64(n), true
	default:
		return 0, false
	}
}

func buildIntegerLike(params []Value) (Type, error) {
	if len(params) == 0 {
		return UnboundedInteger(), nil
	}
	from, to := -unbounded, unbounded
	if v, ok := intParam(params[0]); ok {
		from = v
	}
	if len(params) > 1 {
		if v, ok := intParam(params[1]); ok {
			to = v
		}
	}
	return IntegerType{From: from, To: to}, nil
}

func buildFloatLike(params []Value) (Type, error) {
	if len(params) == 0 {
		return UnboundedFloat(), nil
	}
	t := UnboundedFloat()
	if f, ok := params[0].(Float); ok {
		t.From = float64(f)
	} else if i, ok := params[0].(Integer); ok {
		t.From = float64(i)
	}
	if len(params) > 1 {
		if f, ok := params[1].(Float); ok {
			t.To = float64(f)
		} else if i, ok := params[1].(Integer); ok {
			t.To = float64(i)
		}
	}
	return t, nil
}

func buildStringLike(params []Value) (Type, error) {
	if len(params) == 0 {
		return UnboundedString(), nil
	}
	from, to := int64(0), unbounded
	if v, ok := intParam(params[0]); ok {
		from = v
	}
	if len(params) > 1 {
		if v, ok := intParam(params[1]); ok {
			to = v
		}
	}
	return StringType{From: from, To: to}, nil
}

func buildArray(params []Value) (Type, error) {
	t := ArrayType{From: 0, To: unbounded}
	idx := 0
	if idx < len(params) {
		if elem := asType(params[idx]); elem != nil {
			t.Element = elem
			idx++
		}
	}
	if idx < len(params) {
		if v, ok := intParam(params[idx]); ok {
			t.From = v
			idx++
		}
	}
	if idx < len(params) {
		if v, ok := intParam(params[idx]); ok {
			t.To = v
		}
	}
	return t, nil
}

func buildHash(params []Value) (Type, error) {
	t := HashType{From: 0, To: unbounded}
	idx := 0
	if idx < len(params) {
		if k := asType(params[idx]); k != nil {
			t.Key = k
			idx++
		}
	}
	if idx < len(params) {
		if v := asType(params[idx]); v != nil {
			t.Value = v
			idx++
		}
	}
	if idx < len(params) {
		if v, ok := intParam(params[idx]); ok {
			t.From = v
			idx++
		}
	}
	if idx < len(params) {
		if v, ok := intParam(params[idx]); ok {
			t.To = v
		}
	}
	return t, nil
}

func buildTuple(params []Value) (Type, error) {
	t := TupleType{From: 0, To: unbounded}
	n := len(params)
	for n > 0 {
		if _, ok := intParam(params[n-1]); !ok {
			break
		}
		n--
	}
	for _, p := range params[:n] {
		if tt := asType(p); tt != nil {
			t.Elements = append(t.Elements, tt)
		}
	}
	t.From, t.To = int64(len(t.Elements)), int64(len(t.Elements))
	if n < len(params) {
		if v, ok := intParam(params[n]); ok {
			t.From = v
		}
	}
	if n+1 < len(params) {
		if v, ok := intParam(params[n+1]); ok {
			t.To = v
		}
	}
	return t, nil
}

func buildCollection(params []Value) (Type, error) {
	t := CollectionType{From: 0, To: unbounded}
	if len(params) > 0 {
		if v, ok := intParam(params[0]); ok {
			t.From = v
		}
	}
	if len(params) > 1 {
		if v, ok := intParam(params[1]); ok {
			t.To = v
		}
	}
	return t, nil
}

func buildCallable(params []Value) (Type, error) {
	t := CallableType{MinArity: 0, MaxArity: -1}
	for _, p := range params {
		if tt := asType(p); tt != nil {
			t.Params = append(t.Params, tt)
		} else if v, ok := intParam(p); ok {
			if t.MinArity == 0 {
				t.MinArity = int(v)
			} else {
				t.MaxArity = int(v)
			}
		}
	}
	if t.MinArity == 0 {
		t.MinArity = len(t.Params)
	}
	if t.MaxArity == -1 {
		t.MaxArity = len(t.Params)
	}
	return t, nil
}

// ByName is a convenience constructor for parameterless types, used by
// callers that don't have Values handy (e.g. wiring up function
// descriptors' signatures).
func ByName(name string) Type {
	t, err := Build(name, nil)
	if err != nil {
		panic(fmt.Sprintf("types: unbuildable bare name %q: %v", name, err))
	}
	return t
}
