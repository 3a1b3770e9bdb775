// Package functions implements the built-in function dispatch framework:
// a descriptor per function name, ordered Callable[..] signature entries
// tried first-match, and the mandatory built-in set
// (include/require/contain, realize, assert_type, fail, tag/tagged,
// split, new, the logging functions, epp/inline_epp, and the
// each/map/filter/reduce/step/reverse_each/with iteration family).
//
// Built-ins are registered into the environment as callable objects
// carrying an arity and a dispatch table; this package generalizes that
// registration pattern into an explicit descriptor/entry table mirroring
// the operators package, for the same first-match-wins,
// introspectable-on-failure dispatch discipline functions need just as
// much as operators do.
//
// To avoid an import cycle with internal/evaluator (whose AST-walking
// Eval function these built-ins must invoke for lambda bodies and
// nested class declarations), CallContext carries closures supplied by
// the evaluator at call time rather than importing the evaluator
// package directly.
package functions

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// CallContext is handed to every function callback.
type CallContext struct {
	Eval      *evalctx.Context
	Name      string
	NameRange token.Range
	Args      []types.Value
	ArgRanges []token.Range
	Lambda    *ast.Lambda

	// Yield invokes Lambda under a freshly pushed call frame, translating
	// argument-shape mismatches into an evaluation error. Nil if no lambda
	// was given.
	Yield func(args []types.Value) (types.Value, error)

	// YieldWithoutCatch is identical but propagates argument-shape errors
	// raw rather than translating them.
	YieldWithoutCatch func(args []types.Value) (types.Value, error)

	// DeclareClass instantiates (or finds the existing idempotent
	// instance of) the named class, evaluating its body on first
	// declaration, and itself installs the edge named by relationship
	// between the class and the calling resource.
	DeclareClass func(name string, relationship string) error

	// Realize registers a list-collector over refs.
	Realize func(refs []types.Value) error

	// CurrentResource and CallingResource expose the scope's associated
	// resource (for tag/tagged and the calling-scope logging rule).
	CurrentResource func() interface{}
	CallingResource func() interface{}

	// EvalEPP renders an embedded template under a local output-stream
	// redirection and a local argument hash,
	// supplied by the evaluator so this package never imports it.
	EvalEPP func(source string, args *types.Hash) (string, error)
}

// Arg returns argument i, or undef if not supplied.
func (c *CallContext) Arg(i int) types.Value {
	if i < 0 || i >= len(c.Args) {
		return types.UndefV
	}
	return c.Args[i]
}

// Pattern is the accepted Callable[..] signature for one descriptor entry.
type Pattern struct {
	Signature types.CallableType
}

func (p Pattern) matches(args []types.Value) bool {
	return p.Signature.IsInstance(types.Array{Elements: args}, nil)
}

func (p Pattern) String() string { return p.Signature.String() }

// Entry is one (signature, callback) pair.
type Entry struct {
	Pattern Pattern
	Fn      func(*CallContext) (types.Value, error)
}

// Descriptor holds every entry registered for one function name.
type Descriptor struct {
	Name    string
	Entries []Entry
}

// ArgumentError is raised when no entry's signature matches the call.
type ArgumentError struct {
	Function string
	Args     []types.Value
	Accepted []Pattern
}

func (e *ArgumentError) Error() string {
	got := make([]string, len(e.Args))
	for i, v := range e.Args {
		got[i] = types.Infer(v).String()
	}
	accepted := make([]string, len(e.Accepted))
	for i, p := range e.Accepted {
		accepted[i] = p.String()
	}
	return fmt.Sprintf("function %q: no signature matches arguments (%s); accepted: %s",
		e.Function, strings.Join(got, ", "), strings.Join(accepted, " | "))
}

func (d *Descriptor) Dispatch(cc *CallContext) (types.Value, error) {
	for _, e := range d.Entries {
		if e.Pattern.matches(cc.Args) {
			return e.Fn(cc)
		}
	}
	accepted := make([]Pattern, len(d.Entries))
	for i, e := range d.Entries {
		accepted[i] = e.Pattern
	}
	return nil, &ArgumentError{Function: d.Name, Args: cc.Args, Accepted: accepted}
}

var table = map[string]*Descriptor{}

func register(name string, entries ...Entry) {
	d, ok := table[name]
	if !ok {
		d = &Descriptor{Name: name}
		table[name] = d
	}
	d.Entries = append(d.Entries, entries...)
}

// Lookup returns the descriptor for a built-in name, or nil.
func Lookup(name string) *Descriptor { return table[name] }

// Dispatch looks up name's descriptor and dispatches cc against it.
func Dispatch(name string, cc *CallContext) (types.Value, error) {
	d := Lookup(name)
	if d == nil {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	cc.Name = name
	return d.Dispatch(cc)
}

// anySignature accepts any argument list, for built-ins whose own body
// does its own argument-shape checking (fail, fmt-like logging).
func anySignature() Pattern {
	return Pattern{Signature: types.CallableType{MinArity: 0, MaxArity: -1}}
}
