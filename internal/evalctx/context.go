// Package evalctx implements the evaluation context: the
// per-compilation aggregate of the scope chain, the catalog under
// construction, the call-frame stack, the match-variable stack, and the
// output stream used by template evaluation, carried as the same kind
// of mutable, per-run aggregate (environment, call stack, output
// writer) as fields on one long-lived struct threaded through Eval calls.
//
// This type lives in its own package, separate from both scope and
// catalog, because it depends on both of them while neither of them may
// depend on it back: catalog.Resource needs a declaration-scope pointer
// and scope.Scope needs an opaque resource handle, but the context that
// ties scope, catalog and the call stack together is only ever consumed
// by the operator, function and evaluator packages sitting above all
// three.
package evalctx

import (
	"io"
	"os"

	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/facts"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// Frame records one entry on the call stack. Name
// is either a built-in function's bare name or a class/defined-type/user
// function's name; Range is the call-site range, updated as evaluation
// descends into the callee's body so diagnostics can report the
// currently-evaluated sub-range.
type Frame struct {
	Name  string
	Range token.Range
	Scope *scope.Scope
}

// MatchScope holds the `$0`..`$n` captures of the most recently matched
// regular expression, plus the ones it temporarily shadowed.
type MatchScope struct {
	captures []types.Value
	parent   *MatchScope
}

// Capture returns group n ($0 is the whole match), or undef if out of range.
func (m *MatchScope) Capture(n int) types.Value {
	if m == nil || n < 0 || n >= len(m.captures) {
		return types.UndefV
	}
	return m.captures[n]
}

// Context is the process-wide (per-compilation) aggregate threaded
// through every evaluation call.
type Context struct {
	Root    *scope.Scope
	Catalog *catalog.Catalog
	Facts   facts.Provider
	Logger  *diagnostics.Logger
	Source  string // currently compiled file's path, for diagnostics

	scopeStack []*scope.Scope
	frames     []Frame
	matches    *MatchScope
	out        []io.Writer
}

// New builds a root Context: root scope, empty call stack, stdout as the
// initial output target.
func New(root *scope.Scope, cat *catalog.Catalog, provider facts.Provider, logger *diagnostics.Logger) *Context {
	return &Context{
		Root:       root,
		Catalog:    cat,
		Facts:      provider,
		Logger:     logger,
		scopeStack: []*scope.Scope{root},
		out:        []io.Writer{os.Stdout},
	}
}

// Current returns the innermost active lexical scope.
func (c *Context) Current() *scope.Scope {
	return c.scopeStack[len(c.scopeStack)-1]
}

// Calling returns the scope of the nearest enclosing call frame, or the
// root scope if there is none.
func (c *Context) Calling() *scope.Scope {
	if len(c.frames) == 0 {
		return c.Root
	}
	return c.frames[len(c.frames)-1].Scope
}

// pushed is an RAII-style token returned by the Push* methods; calling
// its Unwind method restores the prior state regardless of how the
// caller's stack frame unwinds.
type pushed struct{ undo func() }

func (p pushed) Unwind() {
	if p.undo != nil {
		p.undo()
	}
}

// PushScope enters a new child lexical scope and returns a token that
// restores the previous current scope on Unwind. Callers must `defer
// ctx.PushScope(s).Unwind()` immediately after pushing.
func (c *Context) PushScope(s *scope.Scope) pushed {
	c.scopeStack = append(c.scopeStack, s)
	return pushed{undo: func() {
		c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
	}}
}

// PushFrame enters a call frame (function, class, or defined-type body
// evaluation) for the duration of one call.
func (c *Context) PushFrame(f Frame) pushed {
	c.frames = append(c.frames, f)
	return pushed{undo: func() {
		c.frames = c.frames[:len(c.frames)-1]
	}}
}

// Frames returns a snapshot of the call stack, innermost last, for
// embedding in control-transfer and error values.
func (c *Context) Frames() []types.FrameSnapshot {
	out := make([]types.FrameSnapshot, len(c.frames))
	for i, f := range c.frames {
		out[i] = types.FrameSnapshot{Name: f.Name, Range: f.Range}
	}
	return out
}

// UpdateTopFrameRange records the sub-range currently being evaluated
// inside the innermost call frame, for diagnostics.
func (c *Context) UpdateTopFrameRange(rng token.Range) {
	if len(c.frames) == 0 {
		return
	}
	c.frames[len(c.frames)-1].Range = rng
}

// PushMatches installs a new set of regexp captures, shadowing whatever
// was previously bound to $0...
func (c *Context) PushMatches(captures []types.Value) pushed {
	prev := c.matches
	c.matches = &MatchScope{captures: captures, parent: prev}
	return pushed{undo: func() {
		c.matches = prev
	}}
}

// Match returns capture group n of the currently active match scope.
func (c *Context) Match(n int) types.Value {
	return c.matches.Capture(n)
}

// Out returns the current output writer (stdout, or a template's string
// builder while evaluating an embedded expression inside `epp`/`inline_epp`).
func (c *Context) Out() io.Writer {
	return c.out[len(c.out)-1]
}

// PushOut redirects Out() to w for the duration of a template rendering
// pass.
func (c *Context) PushOut(w io.Writer) pushed {
	c.out = append(c.out, w)
	return pushed{undo: func() {
		c.out = c.out[:len(c.out)-1]
	}}
}
