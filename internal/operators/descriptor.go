// Package operators implements the operator dispatch framework: for
// every unary and binary operator, an ordered table of
// (operand-type-pattern, callback) entries, matched first-wins, trying
// more specific operand shapes before falling back to general ones.
// An explicit, inspectable table (rather than a hardcoded if/else
// chain) lets a type-error on an unmatched operand pairing enumerate
// the accepted operand-type set straight from the table itself.
package operators

import (
	"fmt"
	"strings"

	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// CallContext is passed to every operator callback: the operands, their
// source ranges, and (for match operators) a sink the callback uses to
// report captures for the caller to install into the match scope.
type CallContext struct {
	Operator string
	Operands []types.Value
	Ranges   []token.Range

	// Captures receives regexp capture groups produced by =~ / !~, for
	// the evaluator to install into the enclosing match scope. Left nil
	// by callbacks that do not match.
	Captures []types.Value

	// Result is filled in by DispatchWithCaptures after a successful call,
	// so callers that need the CallContext back (to read Captures) do not
	// have to re-run the dispatch loop themselves.
	Result types.Value
}

func (c *CallContext) Left() types.Value  { return c.Operands[0] }
func (c *CallContext) Right() types.Value { return c.Operands[1] }

// Pattern is the accepted operand-type tuple for one descriptor entry.
type Pattern []types.Type

func (p Pattern) matches(operands []types.Value) bool {
	if len(p) != len(operands) {
		return false
	}
	for i, t := range p {
		if !types.IsInstance(t, operands[i]) {
			return false
		}
	}
	return true
}

func (p Pattern) String() string {
	names := make([]string, len(p))
	for i, t := range p {
		names[i] = t.String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// Entry is one (pattern, callback) pair in a Descriptor.
type Entry struct {
	Pattern Pattern
	Fn      func(*CallContext) (types.Value, error)
}

// Descriptor holds every entry registered for one operator, tried in
// registration order.
type Descriptor struct {
	Name    string
	Entries []Entry
}

// TypeError is raised when no entry's pattern matches the operand types.
type TypeError struct {
	Operator string
	Operands []types.Value
	Accepted []Pattern
}

func (e *TypeError) Error() string {
	got := make([]string, len(e.Operands))
	for i, v := range e.Operands {
		got[i] = types.Infer(v).String()
	}
	accepted := make([]string, len(e.Accepted))
	for i, p := range e.Accepted {
		accepted[i] = p.String()
	}
	return fmt.Sprintf("operator %q: no overload for operands (%s); accepted: %s",
		e.Operator, strings.Join(got, ", "), strings.Join(accepted, " | "))
}

// Dispatch evaluates operator over operands, trying each registered
// entry's pattern in order and invoking the first match.
func (d *Descriptor) Dispatch(operands []types.Value, ranges []token.Range) (types.Value, error) {
	for _, entry := range d.Entries {
		if entry.Pattern.matches(operands) {
			ctx := &CallContext{Operator: d.Name, Operands: operands, Ranges: ranges}
			return entry.Fn(ctx)
		}
	}
	accepted := make([]Pattern, len(d.Entries))
	for i, e := range d.Entries {
		accepted[i] = e.Pattern
	}
	return nil, &TypeError{Operator: d.Name, Operands: operands, Accepted: accepted}
}

// DispatchWithCaptures behaves like Dispatch but returns the CallContext
// used for the winning entry, so a caller that needs to install regexp
// captures (the evaluator, for `=~`/`!~`/`in`) does not need its own
// parallel copy of the matching loop.
func (d *Descriptor) DispatchWithCaptures(operands []types.Value, ranges []token.Range) (*CallContext, error) {
	for _, entry := range d.Entries {
		if entry.Pattern.matches(operands) {
			ctx := &CallContext{Operator: d.Name, Operands: operands, Ranges: ranges}
			result, err := entry.Fn(ctx)
			if err != nil {
				return nil, err
			}
			ctx.Result = result
			return ctx, nil
		}
	}
	accepted := make([]Pattern, len(d.Entries))
	for i, e := range d.Entries {
		accepted[i] = e.Pattern
	}
	return nil, &TypeError{Operator: d.Name, Operands: operands, Accepted: accepted}
}

// table is the process-wide registry of binary and unary descriptors,
// keyed by operator token text ("+", "-", "==", "!", "-@" for unary
// negate, ...). Populated by init() in arithmetic.go, comparison.go and
// logical_match.go.
var table = map[string]*Descriptor{}

func register(name string, entries ...Entry) {
	d, ok := table[name]
	if !ok {
		d = &Descriptor{Name: name}
		table[name] = d
	}
	d.Entries = append(d.Entries, entries...)
}

// Lookup returns the descriptor for operator, or nil if unregistered.
func Lookup(operator string) *Descriptor { return table[operator] }

// Dispatch is the package-level convenience entry point: look up
// operator's descriptor and dispatch over operands.
func Dispatch(operator string, operands []types.Value, ranges []token.Range) (types.Value, error) {
	d := Lookup(operator)
	if d == nil {
		return nil, fmt.Errorf("operator %q is not registered", operator)
	}
	return d.Dispatch(operands, ranges)
}

func any2() Pattern { return Pattern{types.AnyType{}, types.AnyType{}} }
func any1() Pattern { return Pattern{types.AnyType{}} }
