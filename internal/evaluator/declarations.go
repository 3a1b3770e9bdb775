package evaluator

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// declareClassByName instantiates (or, if already declared, simply
// re-links) the named class, evaluating its body under a fresh scope
// parented to its "inherits" ancestor's scope if any. params supplies
// already-evaluated parameter values by name, for resource-like
// `class { 'foo': x => 1 }` declarations; nil means "use defaults/facts only."
// A class not yet registered by any loaded manifest is autoloaded by
// name before giving up.
func (ev *Evaluator) declareClassByName(name string, params *types.Hash, relationship string) error {
	callerScope := ev.currentScope()
	key := classKey(name)
	if existing, ok := ev.Ctx.Catalog.Lookup(key); ok {
		return ev.linkRelationship(existing.Key(), relationship, callerScope)
	}

	def, ok := ev.classes[name]
	if !ok && ev.autoload(name) {
		def, ok = ev.classes[name]
	}
	if !ok {
		return fmt.Errorf("could not find class %q", name)
	}

	parentScope := ev.Ctx.Root
	if def.Stmt.Parent != "" {
		if def.Parent == nil && ev.autoload(def.Stmt.Parent) {
			def.Parent = ev.classes[def.Stmt.Parent]
		}
		if def.Parent == nil {
			return fmt.Errorf("could not find class %q, the parent of %q", def.Stmt.Parent, name)
		}
		if err := ev.declareClassByName(def.Stmt.Parent, nil, "none"); err != nil {
			return err
		}
		if s, ok := ev.classScope(def.Stmt.Parent); ok {
			parentScope = s
		}
	}

	classScope := scope.NewChild(parentScope)
	resource := &catalog.Resource{
		Type:      "Class",
		Title:     name,
		DeclScope: classScope,
		DeclRange: def.Stmt.Range(),
	}
	classScope.SetResource(resource)
	if err := ev.Ctx.Catalog.Add(resource); err != nil {
		return err
	}
	ev.rememberClassScope(name, classScope)

	if err := ev.bindClassParameters(classScope, def.Stmt.Parameters, params); err != nil {
		return err
	}

	frameTok := ev.Ctx.PushFrame(evalctx.Frame{Name: "class " + name, Range: def.Stmt.Range(), Scope: ev.currentScope()})
	defer frameTok.Unwind()
	scopeTok := ev.Ctx.PushScope(classScope)
	defer scopeTok.Unwind()
	matchTok := ev.Ctx.PushMatches(nil)
	defer matchTok.Unwind()

	if _, err := ev.evalStatements(def.Stmt.Body); err != nil {
		return err
	}
	return ev.linkRelationship(resource.Key(), relationship, callerScope)
}

// linkRelationship installs the edge include/require/contain asks for,
// from the declared class to the resource of caller, the scope the
// function was called from: "require" makes the class a prerequisite of
// the caller, "contains" installs that same before-edge and records no
// separate containment of the class by the caller, "none" (include)
// installs nothing.
func (ev *Evaluator) linkRelationship(classKey catalog.Key, relationship string, caller *scope.Scope) error {
	if relationship == "none" || relationship == "" {
		return nil
	}
	cr, ok := caller.Resource().(*catalog.Resource)
	if !ok {
		return nil
	}
	ev.Ctx.Catalog.AddRelationship(classKey, cr.Key(), catalog.Before)
	return nil
}

func classKey(name string) catalog.Key {
	return catalog.Key{Type: "Class", Title: normalizeClassTitle(name)}
}

func normalizeClassTitle(name string) string {
	for len(name) >= 2 && name[:2] == "::" {
		name = name[2:]
	}
	return toLowerASCII(name)
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// bindClassParameters binds a class's declared parameters in precedence
// order: an explicit params hash entry, then a same-named top-scope
// fact/node-parameter, then the parameter's default expression evaluated
// in the class's own scope.
func (ev *Evaluator) bindClassParameters(classScope *scope.Scope, parameters []*ast.Parameter, params *types.Hash) error {
	for _, p := range parameters {
		var value types.Value
		var found bool
		if params != nil {
			if v, ok := params.Get(types.String(p.Name)); ok {
				value, found = v, true
			}
		}
		if !found {
			if v, ok := ev.Ctx.Facts.Fact(p.Name); ok {
				value, found = v, true
			}
		}
		if !found && p.Default != nil {
			tok := ev.Ctx.PushScope(classScope)
			v, err := ev.evalExpr(p.Default)
			tok.Unwind()
			if err != nil {
				return err
			}
			value, found = v, true
		}
		if !found {
			value = types.UndefV
		}
		if p.TypeExpr != nil {
			t, err := ev.evalTypeExpr(p.TypeExpr)
			if err != nil {
				return err
			}
			if !types.IsInstance(t, value) {
				return fmt.Errorf("class parameter $%s: expected %s, got %s", p.Name, t.String(), types.Infer(value).String())
			}
		}
		if err := classScope.Set(p.Name, value, p.Range(), ev.Ctx.Source); err != nil {
			return err
		}
	}
	return nil
}

// classScope/rememberClassScope track each declared class's own scope so
// a later `inherits` lookup or parameter default resolution can find it.
func (ev *Evaluator) classScope(name string) (*scope.Scope, bool) {
	s, ok := ev.classScopes[normalizeClassTitle(name)]
	return s, ok
}

func (ev *Evaluator) rememberClassScope(name string, s *scope.Scope) {
	if ev.classScopes == nil {
		ev.classScopes = make(map[string]*scope.Scope)
	}
	ev.classScopes[normalizeClassTitle(name)] = s
}

// realizeRefs registers a list collector over the given
// resource-reference values, as produced by the `realize` function.
func (ev *Evaluator) realizeRefs(refs []types.Value) error {
	keys, err := catalog.ResolveReference(types.Array{Elements: refs})
	if err != nil {
		return fmt.Errorf("realize: %w", err)
	}
	ev.Ctx.Catalog.AddCollector(&catalog.Collector{Refs: keys})
	return nil
}
