// Package types implements the runtime value representation and the
// gradual type system: a single tagged-variant Value interface, a
// parallel tagged-variant Type interface with
// assignability/instance-check/generalize operations, and the
// conversions between them. The two are one package, since values and
// their types evolve together rather than as independent concerns.
package types

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/token"
)

// Kind identifies the runtime shape of a Value — the tag of the tagged
// variant.
type Kind int

const (
	KindUndef Kind = iota
	KindDefault
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindRegex
	KindTypeRef
	KindArray
	KindHash
	KindVariable
	KindIterator
	KindRuntime
	KindBreak
	KindNext
	KindReturn
)

// Value is any runtime value produced by the evaluator.
type Value interface {
	Kind() Kind
	Inspect() string // a human/debug rendering, not necessarily Puppet syntax
}

// Undef is Puppet's `undef`.
type Undef struct{}

func (Undef) Kind() Kind        { return KindUndef }
func (Undef) Inspect() string   { return "undef" }

// UndefV is the single shared Undef value.
var UndefV = Undef{}

// DefaultValue is the `default` sentinel used in selectors/case/resource bodies.
type DefaultValue struct{}

func (DefaultValue) Kind() Kind      { return KindDefault }
func (DefaultValue) Inspect() string { return "default" }

var Default = DefaultValue{}

type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) Inspect() string {
	if b {
		return "true"
	}
	return "false"
}

type Integer int64

func (Integer) Kind() Kind        { return KindInteger }
func (i Integer) Inspect() string { return fmt.Sprintf("%d", int64(i)) }

type Float float64

func (Float) Kind() Kind        { return KindFloat }
func (f Float) Inspect() string { return fmt.Sprintf("%g", float64(f)) }

type String string

func (String) Kind() Kind        { return KindString }
func (s String) Inspect() string { return string(s) }

// Regex is a compiled pattern plus its original source text.
type Regex struct {
	Pattern  string
	Compiled *regexp.Regexp
}

func (Regex) Kind() Kind        { return KindRegex }
func (r Regex) Inspect() string { return "/" + r.Pattern + "/" }

// NewRegex compiles pattern as written with Go's RE2 regexp package; no
// dialect translation is done, so PCRE-only syntax is rejected.
func NewRegex(pattern string) (Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Pattern: pattern, Compiled: re}, nil
}

// TypeRef is a Value that wraps a Type (so types are first-class values,
// e.g. the result of evaluating `Integer[0,10]`).
type TypeRef struct {
	Type Type
}

func (TypeRef) Kind() Kind        { return KindTypeRef }
func (t TypeRef) Inspect() string { return t.Type.String() }

// Array is an ordered, owned sequence of values.
type Array struct {
	Elements []Value
}

func (Array) Kind() Kind        { return KindArray }
func (a Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// hashEntry is one key/value pair of a Hash, kept in insertion order.
type hashEntry struct {
	Key   Value
	Value Value
}

// Hash is an insertion-ordered mapping with unique keys compared by ==.
type Hash struct {
	entries []hashEntry
}

func NewHash() *Hash { return &Hash{} }

func (*Hash) Kind() Kind { return KindHash }

func (h *Hash) Inspect() string {
	parts := make([]string, len(h.entries))
	for i, e := range h.entries {
		parts[i] = e.Key.Inspect() + " => " + e.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Len returns the number of entries.
func (h *Hash) Len() int { return len(h.entries) }

// Get returns the value for a key compared with Equal, and whether found.
func (h *Hash) Get(key Value) (Value, bool) {
	for _, e := range h.entries {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Set inserts or replaces the entry for key, preserving original
// insertion position on replace.
func (h *Hash) Set(key, val Value) {
	for i, e := range h.entries {
		if Equal(e.Key, key) {
			h.entries[i].Value = val
			return
		}
	}
	h.entries = append(h.entries, hashEntry{Key: key, Value: val})
}

// Each calls fn for every entry in insertion order.
func (h *Hash) Each(fn func(k, v Value)) {
	for _, e := range h.entries {
		fn(e.Key, e.Value)
	}
}

// Keys returns the keys in insertion order.
func (h *Hash) Keys() []Value {
	out := make([]Value, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Key
	}
	return out
}

// Values returns the values in insertion order.
func (h *Hash) Values() []Value {
	out := make([]Value, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Value
	}
	return out
}

// Variable is a named reference to a shared, immutable binding. Real
// Puppet evaluates a bare `$x` straight to its bound value, and so does
// the evaluator here; this variant exists for completeness of the tagged
// union, and no part of the compiler constructs one.
type Variable struct {
	Name  string
	Value Value
}

func (Variable) Kind() Kind        { return KindVariable }
func (v Variable) Inspect() string { return "$" + v.Name }

// Iterator is a lazy adapter over an Iterable. Next returns the next
// value and true, or (nil, false) when exhausted.
type Iterator struct {
	Next func() (Value, bool)
}

func (Iterator) Kind() Kind      { return KindIterator }
func (Iterator) Inspect() string { return "<iterator>" }

// RuntimeObject is an opaque native handle, e.g. a pending collector.
type RuntimeObject struct {
	RuntimeName string
	Handle      interface{}
}

func (RuntimeObject) Kind() Kind        { return KindRuntime }
func (r RuntimeObject) Inspect() string { return "<runtime " + r.RuntimeName + ">" }

// FrameSnapshot is a lightweight record of one call-stack frame, used by
// control-transfer values to report where they escaped their legal
// context.
type FrameSnapshot struct {
	Name  string
	Range token.Range
}

// Break, Next, Return are control-transfer values. They are ordinary
// Values until the evaluator finds them outside a context legal for
// them, at which point CreateException renders a well-located error.
type Break struct {
	Stack []FrameSnapshot
}

func (Break) Kind() Kind      { return KindBreak }
func (Break) Inspect() string { return "<break>" }

type Next struct {
	Value Value // optional, may be nil
	Stack []FrameSnapshot
}

func (Next) Kind() Kind      { return KindNext }
func (Next) Inspect() string { return "<next>" }

type Return struct {
	Value Value // optional, may be nil
	Stack []FrameSnapshot
}

func (Return) Kind() Kind      { return KindReturn }
func (Return) Inspect() string { return "<return>" }

// ControlTransferError is raised when a Break/Next/Return escapes its
// legal context.
type ControlTransferError struct {
	Kind  string // "break", "next", or "return"
	Stack []FrameSnapshot
}

func (e *ControlTransferError) Error() string {
	loc := "top level"
	if len(e.Stack) > 0 {
		top := e.Stack[0]
		loc = fmt.Sprintf("%s:%d", top.Name, top.Range.Start.Line)
	}
	return fmt.Sprintf("%s() is illegal outside of its legal context (created at %s)", e.Kind, loc)
}

// CreateException converts an escaped control-transfer value into an error.
func (b Break) CreateException() error { return &ControlTransferError{Kind: "break", Stack: b.Stack} }
func (n Next) CreateException() error  { return &ControlTransferError{Kind: "next", Stack: n.Stack} }
func (r Return) CreateException() error {
	return &ControlTransferError{Kind: "return", Stack: r.Stack}
}
