package types

import (
	"fmt"
	"strings"
)

// Guard bounds the recursion of IsInstance/IsAssignable on
// self-referential composite types. A full
// identity-set of (type,value) pairs would require every Type/Value
// variant to be comparable with ==, which the slice-bearing variants
// (Variant, Tuple, Struct, Array element types...) are not in Go.
// A bounded depth counter gives the same termination guarantee with
// none of that bookkeeping: past the cap we coinductively assume a
// match, exactly as an identity-set would once it found a repeat.
type Guard struct {
	depth int
}

const guardMaxDepth = 64

// Enter returns a child guard one level deeper, and whether the caller
// should short-circuit (true) because the cap was reached.
func (g *Guard) Enter() (*Guard, bool) {
	if g == nil {
		return &Guard{depth: 1}, false
	}
	if g.depth >= guardMaxDepth {
		return g, true
	}
	return &Guard{depth: g.depth + 1}, false
}

// Type is a tagged-variant type in Puppet's gradual type system.
type Type interface {
	String() string
	IsInstance(v Value, guard *Guard) bool
	IsAssignable(other Type, guard *Guard) bool
	Generalize() Type
}

func isInstance(t Type, v Value, guard *Guard) bool {
	g, stop := guard.Enter()
	if stop {
		return true
	}
	return t.IsInstance(v, g)
}

func isAssignable(t Type, other Type, guard *Guard) bool {
	g, stop := guard.Enter()
	if stop {
		return true
	}
	return t.IsAssignable(other, g)
}

// --- Leaf / structural types ---------------------------------------------

type AnyType struct{}

func (AnyType) String() string                             { return "Any" }
func (AnyType) IsInstance(Value, *Guard) bool               { return true }
func (AnyType) IsAssignable(Type, *Guard) bool               { return true }
func (AnyType) Generalize() Type                             { return AnyType{} }

type UndefType struct{}

func (UndefType) String() string { return "Undef" }
func (UndefType) IsInstance(v Value, _ *Guard) bool {
	_, ok := v.(Undef)
	return ok
}
func (UndefType) IsAssignable(other Type, _ *Guard) bool {
	switch other.(type) {
	case UndefType:
		return true
	default:
		return false
	}
}
func (UndefType) Generalize() Type { return UndefType{} }

type DefaultType struct{}

func (DefaultType) String() string { return "Default" }
func (DefaultType) IsInstance(v Value, _ *Guard) bool {
	_, ok := v.(DefaultValue)
	return ok
}
func (DefaultType) IsAssignable(other Type, _ *Guard) bool {
	_, ok := other.(DefaultType)
	return ok
}
func (DefaultType) Generalize() Type { return DefaultType{} }

// NotUndefType rejects Undef and otherwise defers to T (or accepts
// anything non-undef if T is nil).
type NotUndefType struct{ T Type }

func (n NotUndefType) String() string {
	if n.T == nil {
		return "NotUndef"
	}
	return "NotUndef[" + n.T.String() + "]"
}
func (n NotUndefType) IsInstance(v Value, guard *Guard) bool {
	if _, ok := v.(Undef); ok {
		return false
	}
	if n.T == nil {
		return true
	}
	return isInstance(n.T, v, guard)
}
func (n NotUndefType) IsAssignable(other Type, guard *Guard) bool {
	if _, ok := other.(UndefType); ok {
		return false
	}
	if no, ok := other.(NotUndefType); ok {
		other = no.T
		if other == nil {
			return true
		}
	}
	if n.T == nil {
		return true
	}
	return isAssignable(n.T, other, guard)
}
func (n NotUndefType) Generalize() Type {
	if n.T == nil {
		return n
	}
	return NotUndefType{T: n.T.Generalize()}
}

type ScalarType struct{}

func (ScalarType) String() string { return "Scalar" }
func (ScalarType) IsInstance(v Value, _ *Guard) bool {
	switch v.(type) {
	case Boolean, Integer, Float, String, Regex, TypeRef:
		return true
	default:
		return false
	}
}
func (ScalarType) IsAssignable(other Type, _ *Guard) bool {
	switch other.(type) {
	case ScalarType, BooleanType, IntegerType, FloatType, NumericType, StringType,
		PatternType, EnumType, RegexpType:
		return true
	default:
		return false
	}
}
func (ScalarType) Generalize() Type { return ScalarType{} }

// DataType is Scalar + Array[Data] + Hash[Scalar,Data] + Undef, simplified
// here to the common-case membership check used by real manifests.
type DataType struct{}

func (DataType) String() string { return "Data" }
func (d DataType) IsInstance(v Value, guard *Guard) bool {
	switch val := v.(type) {
	case Undef:
		return true
	case Array:
		for _, e := range val.Elements {
			if !isInstance(d, e, guard) {
				return false
			}
		}
		return true
	case *Hash:
		ok := true
		val.Each(func(k, v Value) {
			if _, isStr := k.(String); !isStr {
				ok = false
			}
			if !isInstance(d, v, guard) {
				ok = false
			}
		})
		return ok
	default:
		return (ScalarType{}).IsInstance(v, guard)
	}
}
func (DataType) IsAssignable(other Type, _ *Guard) bool {
	switch other.(type) {
	case DataType, ScalarType, UndefType, ArrayType, HashType:
		return true
	default:
		return false
	}
}
func (DataType) Generalize() Type { return DataType{} }

type NumericType struct{}

func (NumericType) String() string { return "Numeric" }
func (NumericType) IsInstance(v Value, _ *Guard) bool {
	switch v.(type) {
	case Integer, Float:
		return true
	default:
		return false
	}
}
func (NumericType) IsAssignable(other Type, _ *Guard) bool {
	switch other.(type) {
	case NumericType, IntegerType, FloatType:
		return true
	default:
		return false
	}
}
func (NumericType) Generalize() Type { return NumericType{} }

type BooleanType struct{}

func (BooleanType) String() string { return "Boolean" }
func (BooleanType) IsInstance(v Value, _ *Guard) bool {
	_, ok := v.(Boolean)
	return ok
}
func (BooleanType) IsAssignable(other Type, _ *Guard) bool {
	_, ok := other.(BooleanType)
	return ok
}
func (BooleanType) Generalize() Type { return BooleanType{} }

// --- Sized numeric types -------------------------------------------------

const unbounded = int64(1)<<62 - 1

type IntegerType struct{ From, To int64 }

func UnboundedInteger() IntegerType { return IntegerType{From: -unbounded, To: unbounded} }

func (t IntegerType) String() string {
	if t.From == -unbounded && t.To == unbounded {
		return "Integer"
	}
	return fmt.Sprintf("Integer[%d, %d]", t.From, t.To)
}
func (t IntegerType) IsInstance(v Value, _ *Guard) bool {
	i, ok := v.(Integer)
	return ok && int64(i) >= t.From && int64(i) <= t.To
}
func (t IntegerType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(IntegerType)
	return ok && o.From >= t.From && o.To <= t.To
}
func (t IntegerType) Generalize() Type { return UnboundedInteger() }

type FloatType struct{ From, To float64 }

func UnboundedFloat() FloatType {
	return FloatType{From: -1e308, To: 1e308}
}

func (t FloatType) String() string {
	if t == UnboundedFloat() {
		return "Float"
	}
	return fmt.Sprintf("Float[%g, %g]", t.From, t.To)
}
func (t FloatType) IsInstance(v Value, _ *Guard) bool {
	f, ok := v.(Float)
	return ok && float64(f) >= t.From && float64(f) <= t.To
}
func (t FloatType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(FloatType)
	return ok && o.From >= t.From && o.To <= t.To
}
func (t FloatType) Generalize() Type { return UnboundedFloat() }

// StringType bounds the *length* of an instance string.
type StringType struct{ From, To int64 }

func UnboundedString() StringType { return StringType{From: 0, To: unbounded} }

func (t StringType) String() string {
	if t == UnboundedString() {
		return "String"
	}
	return fmt.Sprintf("String[%d, %d]", t.From, t.To)
}
func (t StringType) IsInstance(v Value, _ *Guard) bool {
	s, ok := v.(String)
	if !ok {
		return false
	}
	n := int64(len([]rune(string(s))))
	return n >= t.From && n <= t.To
}
func (t StringType) IsAssignable(other Type, _ *Guard) bool {
	switch o := other.(type) {
	case StringType:
		return o.From >= t.From && o.To <= t.To
	case PatternType, EnumType:
		return t.From == 0 && t.To == unbounded
	default:
		_ = o
		return false
	}
}
func (t StringType) Generalize() Type { return UnboundedString() }

// PatternType accepts strings matching any of its regexes.
type PatternType struct{ Patterns []Regex }

func (t PatternType) String() string {
	parts := make([]string, len(t.Patterns))
	for i, p := range t.Patterns {
		parts[i] = "/" + p.Pattern + "/"
	}
	return "Pattern[" + strings.Join(parts, ", ") + "]"
}
func (t PatternType) IsInstance(v Value, _ *Guard) bool {
	s, ok := v.(String)
	if !ok {
		return false
	}
	for _, p := range t.Patterns {
		if p.Compiled != nil && p.Compiled.MatchString(string(s)) {
			return true
		}
	}
	return false
}
func (t PatternType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(PatternType)
	if !ok {
		return false
	}
	for _, op := range o.Patterns {
		found := false
		for _, p := range t.Patterns {
			if p.Pattern == op.Pattern {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
func (t PatternType) Generalize() Type { return PatternType{} }

// EnumType accepts exactly the listed strings (case-sensitively, as in
// real Puppet's Enum type).
type EnumType struct{ Values []string }

func (t EnumType) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = "'" + v + "'"
	}
	return "Enum[" + strings.Join(parts, ", ") + "]"
}
func (t EnumType) IsInstance(v Value, _ *Guard) bool {
	s, ok := v.(String)
	if !ok {
		return false
	}
	for _, e := range t.Values {
		if string(s) == e {
			return true
		}
	}
	return false
}
func (t EnumType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(EnumType)
	if !ok {
		return false
	}
	for _, ov := range o.Values {
		found := false
		for _, v := range t.Values {
			if v == ov {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
func (t EnumType) Generalize() Type { return EnumType{} }

// RegexpType is the *type of a regex value*, as opposed to Pattern
// (which matches strings against a regex).
type RegexpType struct{ Pattern string } // "" means unconstrained

func (t RegexpType) String() string {
	if t.Pattern == "" {
		return "Regexp"
	}
	return "Regexp[/" + t.Pattern + "/]"
}
func (t RegexpType) IsInstance(v Value, _ *Guard) bool {
	r, ok := v.(Regex)
	return ok && (t.Pattern == "" || r.Pattern == t.Pattern)
}
func (t RegexpType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(RegexpType)
	return ok && (t.Pattern == "" || t.Pattern == o.Pattern)
}
func (t RegexpType) Generalize() Type { return RegexpType{} }

// --- Collections ----------------------------------------------------------

type ArrayType struct {
	Element  Type
	From, To int64
}

func (t ArrayType) String() string {
	elem := "Any"
	if t.Element != nil {
		elem = t.Element.String()
	}
	if t.From == 0 && t.To == unbounded {
		return "Array[" + elem + "]"
	}
	return fmt.Sprintf("Array[%s, %d, %d]", elem, t.From, t.To)
}
func (t ArrayType) IsInstance(v Value, guard *Guard) bool {
	a, ok := v.(Array)
	if !ok {
		return false
	}
	n := int64(len(a.Elements))
	if n < t.From || n > t.To {
		return false
	}
	if t.Element == nil {
		return true
	}
	for _, e := range a.Elements {
		if !isInstance(t.Element, e, guard) {
			return false
		}
	}
	return true
}
func (t ArrayType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(ArrayType)
	if !ok {
		if tup, ok2 := other.(TupleType); ok2 {
			return t.containsRange(tup.From, tup.To) && t.elementsAssignableFrom(tup.Elements, guard)
		}
		return false
	}
	if !t.containsRange(o.From, o.To) {
		return false
	}
	if t.Element == nil {
		return true
	}
	if o.Element == nil {
		return false
	}
	return isAssignable(t.Element, o.Element, guard)
}
func (t ArrayType) elementsAssignableFrom(elems []Type, guard *Guard) bool {
	if t.Element == nil {
		return true
	}
	for _, e := range elems {
		if !isAssignable(t.Element, e, guard) {
			return false
		}
	}
	return true
}
func (t ArrayType) containsRange(from, to int64) bool { return from >= t.From && to <= t.To }
func (t ArrayType) Generalize() Type                   { return ArrayType{From: 0, To: unbounded} }

type HashType struct {
	Key, Value Type
	From, To   int64
}

func (t HashType) String() string {
	k, v := "Any", "Any"
	if t.Key != nil {
		k = t.Key.String()
	}
	if t.Value != nil {
		v = t.Value.String()
	}
	return fmt.Sprintf("Hash[%s, %s]", k, v)
}
func (t HashType) IsInstance(v Value, guard *Guard) bool {
	h, ok := v.(*Hash)
	if !ok {
		return false
	}
	n := int64(h.Len())
	if n < t.From || n > t.To {
		return false
	}
	ok2 := true
	h.Each(func(k, val Value) {
		if t.Key != nil && !isInstance(t.Key, k, guard) {
			ok2 = false
		}
		if t.Value != nil && !isInstance(t.Value, val, guard) {
			ok2 = false
		}
	})
	return ok2
}
func (t HashType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(HashType)
	if !ok {
		return false
	}
	if o.From < t.From || o.To > t.To {
		return false
	}
	if t.Key != nil && (o.Key == nil || !isAssignable(t.Key, o.Key, guard)) {
		return false
	}
	if t.Value != nil && (o.Value == nil || !isAssignable(t.Value, o.Value, guard)) {
		return false
	}
	return true
}
func (t HashType) Generalize() Type { return HashType{From: 0, To: unbounded} }

type TupleType struct {
	Elements []Type
	From, To int64
}

func (t TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "Tuple[" + strings.Join(parts, ", ") + "]"
}
func (t TupleType) IsInstance(v Value, guard *Guard) bool {
	a, ok := v.(Array)
	if !ok {
		return false
	}
	n := int64(len(a.Elements))
	if n < t.From || n > t.To {
		return false
	}
	for i, e := range a.Elements {
		idx := i
		if idx >= len(t.Elements) {
			idx = len(t.Elements) - 1
		}
		if idx < 0 || !isInstance(t.Elements[idx], e, guard) {
			return false
		}
	}
	return true
}
func (t TupleType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(TupleType)
	if !ok {
		return false
	}
	if o.From < t.From || o.To > t.To || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !isAssignable(t.Elements[i], o.Elements[i], guard) {
			return false
		}
	}
	return true
}
func (t TupleType) Generalize() Type { return TupleType{} }

type StructField struct {
	Name     string
	Type     Type
	Optional bool
}

type StructType struct{ Fields []StructField }

func (t StructType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + " => " + f.Type.String()
	}
	return "Struct[{" + strings.Join(parts, ", ") + "}]"
}
func (t StructType) IsInstance(v Value, guard *Guard) bool {
	h, ok := v.(*Hash)
	if !ok {
		return false
	}
	for _, f := range t.Fields {
		val, found := h.Get(String(f.Name))
		if !found {
			if f.Optional {
				continue
			}
			return false
		}
		if !isInstance(f.Type, val, guard) {
			return false
		}
	}
	return true
}
func (t StructType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(StructType)
	if !ok {
		return false
	}
	for _, f := range t.Fields {
		var match *StructField
		for i := range o.Fields {
			if o.Fields[i].Name == f.Name {
				match = &o.Fields[i]
				break
			}
		}
		if match == nil {
			if !f.Optional {
				return false
			}
			continue
		}
		if !isAssignable(f.Type, match.Type, guard) {
			return false
		}
	}
	return true
}
func (t StructType) Generalize() Type { return StructType{} }

type CollectionType struct{ From, To int64 }

func (t CollectionType) String() string {
	if t.From == 0 && t.To == unbounded {
		return "Collection"
	}
	return fmt.Sprintf("Collection[%d, %d]", t.From, t.To)
}
func (t CollectionType) size(v Value) (int64, bool) {
	switch val := v.(type) {
	case Array:
		return int64(len(val.Elements)), true
	case *Hash:
		return int64(val.Len()), true
	default:
		return 0, false
	}
}
func (t CollectionType) IsInstance(v Value, _ *Guard) bool {
	n, ok := t.size(v)
	return ok && n >= t.From && n <= t.To
}
func (t CollectionType) IsAssignable(other Type, _ *Guard) bool {
	var from, to int64
	switch o := other.(type) {
	case ArrayType:
		from, to = o.From, o.To
	case HashType:
		from, to = o.From, o.To
	case TupleType:
		from, to = o.From, o.To
	case CollectionType:
		from, to = o.From, o.To
	default:
		return false
	}
	return from >= t.From && to <= t.To
}
func (t CollectionType) Generalize() Type { return CollectionType{From: 0, To: unbounded} }

// --- Higher-order / wrapper types -----------------------------------------

type IteratorType struct{ T Type }

func (t IteratorType) String() string {
	if t.T == nil {
		return "Iterator"
	}
	return "Iterator[" + t.T.String() + "]"
}
func (t IteratorType) IsInstance(v Value, _ *Guard) bool {
	_, ok := v.(Iterator)
	return ok
}
func (t IteratorType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(IteratorType)
	if !ok {
		return false
	}
	if t.T == nil {
		return true
	}
	return o.T != nil && isAssignable(t.T, o.T, guard)
}
func (t IteratorType) Generalize() Type { return IteratorType{} }

type IterableType struct{ T Type }

func (t IterableType) String() string {
	if t.T == nil {
		return "Iterable"
	}
	return "Iterable[" + t.T.String() + "]"
}
func (t IterableType) IsInstance(v Value, guard *Guard) bool {
	switch v.(type) {
	case Array, *Hash, Iterator:
		return true
	default:
		return false
	}
}
func (t IterableType) IsAssignable(other Type, guard *Guard) bool {
	switch other.(type) {
	case ArrayType, HashType, TupleType, IteratorType, IterableType, CollectionType:
		return true
	default:
		return false
	}
}
func (t IterableType) Generalize() Type { return IterableType{} }

// OptionalType accepts Undef and anything T accepts.
type OptionalType struct{ T Type }

func (t OptionalType) String() string {
	if t.T == nil {
		return "Optional"
	}
	return "Optional[" + t.T.String() + "]"
}
func (t OptionalType) IsInstance(v Value, guard *Guard) bool {
	if _, ok := v.(Undef); ok {
		return true
	}
	if t.T == nil {
		return true
	}
	return isInstance(t.T, v, guard)
}
func (t OptionalType) IsAssignable(other Type, guard *Guard) bool {
	if _, ok := other.(UndefType); ok {
		return true
	}
	if o, ok := other.(OptionalType); ok {
		if t.T == nil {
			return true
		}
		return o.T != nil && isAssignable(t.T, o.T, guard)
	}
	if t.T == nil {
		return true
	}
	return isAssignable(t.T, other, guard)
}
func (t OptionalType) Generalize() Type {
	if t.T == nil {
		return t
	}
	return OptionalType{T: t.T.Generalize()}
}

type VariantType struct{ Types []Type }

func (t VariantType) String() string {
	parts := make([]string, len(t.Types))
	for i, tt := range t.Types {
		parts[i] = tt.String()
	}
	return "Variant[" + strings.Join(parts, ", ") + "]"
}
func (t VariantType) IsInstance(v Value, guard *Guard) bool {
	for _, tt := range t.Types {
		if isInstance(tt, v, guard) {
			return true
		}
	}
	return false
}
func (t VariantType) IsAssignable(other Type, guard *Guard) bool {
	if ov, ok := other.(VariantType); ok {
		for _, oo := range ov.Types {
			if !t.IsAssignable(oo, guard) {
				return false
			}
		}
		return true
	}
	for _, tt := range t.Types {
		if isAssignable(tt, other, guard) {
			return true
		}
	}
	return false
}
func (t VariantType) Generalize() Type { return VariantType{} }

// TypeType is the type of a Type value itself: `Type[Integer]`.
type TypeType struct{ T Type }

func (t TypeType) String() string {
	if t.T == nil {
		return "Type"
	}
	return "Type[" + t.T.String() + "]"
}
func (t TypeType) IsInstance(v Value, _ *Guard) bool {
	tv, ok := v.(TypeRef)
	if !ok {
		return false
	}
	if t.T == nil {
		return true
	}
	return t.T.IsAssignable(tv.Type, nil)
}
func (t TypeType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(TypeType)
	if !ok {
		return false
	}
	if t.T == nil {
		return true
	}
	return o.T != nil && isAssignable(t.T, o.T, guard)
}
func (t TypeType) Generalize() Type { return TypeType{} }

// CatalogEntryType is the common supertype of Class and Resource types.
type CatalogEntryType struct{}

func (CatalogEntryType) String() string { return "CatalogEntry" }
func (CatalogEntryType) IsInstance(v Value, _ *Guard) bool {
	switch v.(type) {
	default:
		return false
	}
}
func (CatalogEntryType) IsAssignable(other Type, _ *Guard) bool {
	switch other.(type) {
	case CatalogEntryType, ClassType, ResourceType:
		return true
	default:
		return false
	}
}
func (CatalogEntryType) Generalize() Type { return CatalogEntryType{} }

type ClassType struct{ Title string } // "" means unconstrained

func (t ClassType) String() string {
	if t.Title == "" {
		return "Class"
	}
	return "Class[" + t.Title + "]"
}
func (t ClassType) IsInstance(Value, *Guard) bool { return false } // resources aren't Values here
func (t ClassType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(ClassType)
	return ok && (t.Title == "" || t.Title == o.Title)
}
func (t ClassType) Generalize() Type { return ClassType{} }

type ResourceType struct{ TypeName, Title string }

func (t ResourceType) String() string {
	switch {
	case t.TypeName == "":
		return "Resource"
	case t.Title == "":
		return "Resource[" + t.TypeName + "]"
	default:
		return "Resource[" + t.TypeName + ", " + t.Title + "]"
	}
}
func (t ResourceType) IsInstance(Value, *Guard) bool { return false }
func (t ResourceType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(ResourceType)
	if !ok {
		return false
	}
	if t.TypeName != "" && !strings.EqualFold(t.TypeName, o.TypeName) {
		return false
	}
	if t.Title != "" && t.Title != o.Title {
		return false
	}
	return true
}
func (t ResourceType) Generalize() Type { return ResourceType{} }

type RuntimeType struct{ Runtime, TypeName string }

func (t RuntimeType) String() string {
	if t.Runtime == "" {
		return "Runtime"
	}
	return "Runtime['" + t.Runtime + "', '" + t.TypeName + "']"
}
func (t RuntimeType) IsInstance(v Value, _ *Guard) bool {
	r, ok := v.(RuntimeObject)
	return ok && (t.Runtime == "" || r.RuntimeName == t.TypeName)
}

// IsAssignable for Runtime requires exact equality.
func (t RuntimeType) IsAssignable(other Type, _ *Guard) bool {
	o, ok := other.(RuntimeType)
	return ok && t.Runtime == o.Runtime && t.TypeName == o.TypeName
}
func (t RuntimeType) Generalize() Type { return RuntimeType{} }

// CallableType describes a function/lambda signature: ordered parameter
// types, a min/max arity, and an optional block (lambda) requirement.
type CallableType struct {
	Params   []Type
	MinArity int
	MaxArity int // -1 means unbounded
	Block    Type // nil if no block is accepted
}

func (t CallableType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "Callable[" + strings.Join(parts, ", ") + "]"
}
func (t CallableType) IsInstance(v Value, guard *Guard) bool {
	a, ok := v.(Array)
	if !ok {
		return false
	}
	n := len(a.Elements)
	if n < t.MinArity || (t.MaxArity >= 0 && n > t.MaxArity) {
		return false
	}
	for i, e := range a.Elements {
		idx := i
		if idx >= len(t.Params) {
			if len(t.Params) == 0 {
				continue
			}
			idx = len(t.Params) - 1
		}
		if !isInstance(t.Params[idx], e, guard) {
			return false
		}
	}
	return true
}
func (t CallableType) IsAssignable(other Type, guard *Guard) bool {
	o, ok := other.(CallableType)
	if !ok {
		return false
	}
	if o.MinArity > t.MinArity {
		return false
	}
	if t.MaxArity >= 0 && (o.MaxArity < 0 || o.MaxArity > t.MaxArity) {
		return false
	}
	for i := range t.Params {
		if i >= len(o.Params) {
			return false
		}
		// Parameters are contravariant: a callable accepting a wider
		// type can stand in for one accepting a narrower type.
		if !isAssignable(o.Params[i], t.Params[i], guard) {
			return false
		}
	}
	return true
}
func (t CallableType) Generalize() Type { return CallableType{MinArity: 0, MaxArity: -1} }
