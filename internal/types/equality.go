package types

import "strings"

// Truthy reports Puppet's truthiness rule: undef and boolean false are
// falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Undef:
		return false
	case Boolean:
		return bool(val)
	default:
		return true
	}
}

// Equal implements Puppet's `==` operator semantics:
// strings compare case-insensitively, arrays/hashes compare structurally,
// everything else compares by tag and value.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Undef:
		_, ok := b.(Undef)
		return ok
	case DefaultValue:
		_, ok := b.(DefaultValue)
		return ok
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case Integer:
		switch bv := b.(type) {
		case Integer:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Integer:
			return float64(av) == float64(bv)
		case Float:
			return av == bv
		}
		return false
	case String:
		bv, ok := b.(String)
		return ok && strings.EqualFold(string(av), string(bv))
	case Regex:
		bv, ok := b.(Regex)
		return ok && av.Pattern == bv.Pattern
	case TypeRef:
		bv, ok := b.(TypeRef)
		return ok && av.Type.String() == bv.Type.String()
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Hash:
		bv, ok := b.(*Hash)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		eq := true
		av.Each(func(k, v Value) {
			ov, found := bv.Get(k)
			if !found || !Equal(v, ov) {
				eq = false
			}
		})
		return eq
	default:
		return a == b
	}
}

// CompareStrings implements the case-insensitive, locale-independent
// lexicographic ordering Puppet's string comparison operators use.
func CompareStrings(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la < lb {
		return -1
	}
	if la > lb {
		return 1
	}
	return 0
}
