// Package scope implements the lexical variable scopes and evaluation
// context the language requires: a parent-linked map store behind a
// mutex, generalized with the write-once binding rule and fact fallback
// Puppet's scoping model adds on top. Match variables are kept by
// internal/evalctx, not here.
package scope

import (
	"fmt"
	"sync"

	"github.com/puppetlabs/go-puppet/internal/facts"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// Binding is a name bound to a value, remembering where it was first set
// so conflicting re-assignment can report a useful location.
type Binding struct {
	Value types.Value
	Range token.Range
	File  string
}

// AssignError reports an attempt to rebind an already-set name.
type AssignError struct {
	Name     string
	Existing Binding
	IsFact   bool
}

func (e *AssignError) Error() string {
	if e.IsFact {
		return fmt.Sprintf("cannot reassign $%s: a fact or node parameter of that name already exists", e.Name)
	}
	return fmt.Sprintf("cannot reassign $%s: already bound at %s:%d", e.Name, e.Existing.File, e.Existing.Range.Start.Line)
}

// Scope is one lexical frame of variable bindings.
type Scope struct {
	mu       sync.RWMutex
	parent   *Scope
	vars     map[string]*Binding
	resource interface{} // *catalog.Resource, set for class/defined-type body scopes
	top      *Scope
	facts    facts.Provider // only set on the top/root scope
}

// NewRoot creates the top scope, backed by the given fact provider.
func NewRoot(provider facts.Provider) *Scope {
	s := &Scope{vars: make(map[string]*Binding), facts: provider}
	s.top = s
	return s
}

// NewChild creates a scope nested under parent.
func NewChild(parent *Scope) *Scope {
	s := &Scope{vars: make(map[string]*Binding), parent: parent, top: parent.top}
	return s
}

// Top returns the enclosing top/root scope.
func (s *Scope) Top() *Scope { return s.top }

// SetResource associates this scope with the resource it represents
// (the class/defined-type instance whose body it is evaluating).
func (s *Scope) SetResource(r interface{}) { s.resource = r }

// Resource returns the associated resource, or nil.
func (s *Scope) Resource() interface{} { return s.resource }

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

// ParentChainContains reports whether target is s itself or an ancestor
// of s, walking the parent chain. Used by catalog default-merging to
// decide whether a resource's declaration scope falls within the scope
// chain a `Type { default: ... }` block was declared in. Takes interface{} so catalog can call it without importing
// this package's concrete *Scope type by name in a type switch.
func (s *Scope) ParentChainContains(target interface{}) bool {
	other, ok := target.(*Scope)
	if !ok || other == nil {
		return false
	}
	for cur := s; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Set binds name to value in this scope. It returns an *AssignError if
// the name is already bound here, or shadows a fact on the top scope.
func (s *Scope) Set(name string, value types.Value, rng token.Range, file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.vars[name]; ok {
		return &AssignError{Name: name, Existing: *existing}
	}
	if s == s.top && s.facts != nil {
		if _, ok := s.facts.Fact(name); ok {
			return &AssignError{Name: name, IsFact: true}
		}
	}
	s.vars[name] = &Binding{Value: value, Range: rng, File: file}
	return nil
}

// Get looks up a local variable name, walking to parent scopes and
// finally falling back to the top scope's facts.
func (s *Scope) Get(name string) (types.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		b, ok := cur.vars[name]
		cur.mu.RUnlock()
		if ok {
			return b.Value, true
		}
	}
	if s.top != nil && s.top.facts != nil {
		if v, ok := s.top.facts.Fact(name); ok {
			return v, true
		}
	}
	return nil, false
}

// GetQualified resolves a `a::b::c`-style fully qualified name against
// the top scope, stripping any leading "::".
func (s *Scope) GetQualified(name string) (types.Value, bool) {
	for len(name) >= 2 && name[:2] == "::" {
		name = name[2:]
	}
	return s.top.Get(name)
}

// binding returns the raw Binding record for a locally-set name (used by
// diagnostics to report "already bound at file:line").
func (s *Scope) binding(name string) (*Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.vars[name]
	return b, ok
}
