package evaluator

import (
	"fmt"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// evalResourceExpr evaluates a resource declaration: each
// body names one or more titles (a single array-valued title expression
// expands to one resource per element), shares the same attribute list,
// and either becomes a catalog.Resource directly (a native type) or
// triggers evaluation of a matching `define` body (a defined type).
func (ev *Evaluator) evalResourceExpr(r *ast.ResourceExpr) (types.Value, error) {
	var refs []types.Value
	for _, body := range r.Bodies {
		if isDefaultBody(body.Titles) {
			// `default: { attrs }` sets defaults for every title in this
			// same resource expression, scoped like a ResourceDefaultsExpr.
			attrs, err := ev.evalAttributes(body.Attributes)
			if err != nil {
				return nil, err
			}
			ev.Ctx.Catalog.AddDefaults(r.TypeName, ev.currentScope(), attrs)
			continue
		}
		titles, err := ev.expandTitles(body.Titles)
		if err != nil {
			return nil, err
		}
		attrs, err := ev.evalAttributes(body.Attributes)
		if err != nil {
			return nil, err
		}
		for _, title := range titles {
			ref, err := ev.declareOneResource(r.TypeName, title, attrs, r.Virtual, r.Exported, r.Range())
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
	}
	if len(refs) == 1 {
		return refs[0], nil
	}
	return types.Array{Elements: refs}, nil
}

// expandTitles evaluates a ResourceBody's title expressions, flattening
// a single array-valued title into one title per element.
func (ev *Evaluator) expandTitles(exprs []ast.Expression) ([]string, error) {
	var out []string
	for _, e := range exprs {
		v, err := ev.evalExpr(e)
		if err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case types.Array:
			for _, elem := range val.Elements {
				s, ok := elem.(types.String)
				if !ok {
					return nil, fmt.Errorf("resource title must be a String, got %s", types.Infer(elem).String())
				}
				out = append(out, string(s))
			}
		case types.String:
			out = append(out, string(val))
		default:
			return nil, fmt.Errorf("resource title must be a String, got %s", types.Infer(v).String())
		}
	}
	return out, nil
}

// isDefaultBody reports whether a ResourceBody's titles are the bare
// `default` keyword rather than actual title expressions.
func isDefaultBody(titles []ast.Expression) bool {
	if len(titles) != 1 {
		return false
	}
	_, ok := titles[0].(*ast.DefaultLiteral)
	return ok
}

// resourceAttribute pairs an evaluated catalog.Attribute with whether it
// was declared with `+>` (append) rather than `=>` (set/replace).
type resourceAttribute struct {
	catalog.Attribute
	Append bool
}

func (ev *Evaluator) evalAttributes(attrs []ast.Attribute) ([]catalog.Attribute, error) {
	out, err := ev.evalAttributesAppend(attrs)
	if err != nil {
		return nil, err
	}
	plain := make([]catalog.Attribute, len(out))
	for i, a := range out {
		plain[i] = a.Attribute
	}
	return plain, nil
}

func (ev *Evaluator) evalAttributesAppend(attrs []ast.Attribute) ([]resourceAttribute, error) {
	out := make([]resourceAttribute, 0, len(attrs))
	for _, a := range attrs {
		if a.Name == "*" {
			// Splat attribute: `* => $hash` merges a hash's entries in as
			// individually-named attributes.
			v, err := ev.evalExpr(a.Value)
			if err != nil {
				return nil, err
			}
			h, ok := v.(*types.Hash)
			if !ok {
				return nil, fmt.Errorf("splat attribute value must be a Hash")
			}
			for _, k := range h.Keys() {
				name, ok := k.(types.String)
				if !ok {
					continue
				}
				val, _ := h.Get(k)
				out = append(out, resourceAttribute{Attribute: catalog.Attribute{Name: string(name), Value: val, NameRange: a.NameRange, ValRange: a.Value.Range()}})
			}
			continue
		}
		v, err := ev.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, resourceAttribute{
			Attribute: catalog.Attribute{Name: a.Name, Value: v, NameRange: a.NameRange, ValRange: a.Value.Range()},
			Append:    a.AddAttribute,
		})
	}
	return out, nil
}

func (ev *Evaluator) declareOneResource(typeName, title string, attrs []catalog.Attribute, virtual, exported bool, rng token.Range) (types.Value, error) {
	def, ok := ev.defines[typeName]
	if !ok && ev.autoload(typeName) {
		def, ok = ev.defines[typeName]
	}
	if ok {
		if err := ev.instantiateDefine(def, title, attrs, rng); err != nil {
			return nil, err
		}
		return types.TypeRef{Type: types.ResourceType{TypeName: typeName, Title: title}}, nil
	}

	resource := &catalog.Resource{
		Type:      typeName,
		Title:     title,
		Virtual:   virtual,
		Exported:  exported,
		DeclScope: ev.currentScope(),
		DeclRange: rng,
	}
	for _, a := range attrs {
		resource.Set(a)
	}
	if err := ev.Ctx.Catalog.Add(resource); err != nil {
		return nil, err
	}
	if caller, ok := ev.currentScope().Resource().(*catalog.Resource); ok {
		ev.Ctx.Catalog.AddRelationship(caller.Key(), resource.Key(), catalog.Before)
	}
	return types.TypeRef{Type: types.ResourceType{TypeName: typeName, Title: title}}, nil
}

// instantiateDefine evaluates one `define` body for a single title,
// binding $title/$name and the define's declared parameters from attrs.
func (ev *Evaluator) instantiateDefine(def *DefineDef, title string, attrs []catalog.Attribute, rng token.Range) error {
	byName := make(map[string]types.Value, len(attrs))
	for _, a := range attrs {
		byName[a.Name] = a.Value
	}

	defScope := scope.NewChild(ev.Ctx.Root)
	resource := &catalog.Resource{
		Type:      def.Stmt.Name,
		Title:     title,
		DeclScope: defScope,
		DeclRange: rng,
	}
	defScope.SetResource(resource)
	if err := ev.Ctx.Catalog.Add(resource); err != nil {
		return err
	}
	if caller, ok := ev.currentScope().Resource().(*catalog.Resource); ok {
		ev.Ctx.Catalog.AddRelationship(caller.Key(), resource.Key(), catalog.Before)
	}

	defScope.Set("title", types.String(title), rng, ev.Ctx.Source)
	defScope.Set("name", types.String(title), rng, ev.Ctx.Source)

	for _, p := range def.Stmt.Parameters {
		value, found := byName[p.Name]
		if !found && p.Default != nil {
			tok := ev.Ctx.PushScope(defScope)
			v, err := ev.evalExpr(p.Default)
			tok.Unwind()
			if err != nil {
				return err
			}
			value, found = v, true
		}
		if !found {
			return fmt.Errorf("define %s[%s]: missing required parameter $%s", def.Stmt.Name, title, p.Name)
		}
		if p.TypeExpr != nil {
			t, err := ev.evalTypeExpr(p.TypeExpr)
			if err != nil {
				return err
			}
			if !types.IsInstance(t, value) {
				return fmt.Errorf("define %s[%s]: parameter $%s expected %s, got %s", def.Stmt.Name, title, p.Name, t.String(), types.Infer(value).String())
			}
		}
		if err := defScope.Set(p.Name, value, rng, ev.Ctx.Source); err != nil {
			return err
		}
	}
	// Attributes supplied with no matching parameter still become
	// resource-level attributes (e.g. metaparameters like `require`).
	for _, a := range attrs {
		found := false
		for _, p := range def.Stmt.Parameters {
			if p.Name == a.Name {
				found = true
				break
			}
		}
		if !found {
			resource.Set(a)
		}
	}

	frameTok := ev.Ctx.PushFrame(evalctx.Frame{Name: def.Stmt.Name + "[" + title + "]", Range: rng, Scope: ev.currentScope()})
	defer frameTok.Unwind()
	scopeTok := ev.Ctx.PushScope(defScope)
	defer scopeTok.Unwind()
	matchTok := ev.Ctx.PushMatches(nil)
	defer matchTok.Unwind()

	_, err := ev.evalStatements(def.Stmt.Body)
	return err
}

func (ev *Evaluator) evalResourceDefaults(r *ast.ResourceDefaultsExpr) (types.Value, error) {
	attrs, err := ev.evalAttributes(r.Attributes)
	if err != nil {
		return nil, err
	}
	ev.Ctx.Catalog.AddDefaults(r.TypeName, ev.currentScope(), attrs)
	return types.UndefV, nil
}

func (ev *Evaluator) evalResourceOverride(r *ast.ResourceOverrideExpr) (types.Value, error) {
	ref, err := ev.evalExpr(r.Reference)
	if err != nil {
		return nil, err
	}
	keys, err := catalog.ResolveReference(ref)
	if err != nil {
		return nil, ev.fail(r.Range(), err)
	}
	attrs, err := ev.evalAttributesAppend(r.Attributes)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		for _, a := range attrs {
			ev.Ctx.Catalog.QueueOverride(key, catalog.Attribute{
				Name:      a.Name,
				Value:     a.Value,
				NameRange: a.NameRange,
				ValRange:  a.ValRange,
				Append:    a.Append,
			})
		}
	}
	return types.UndefV, nil
}

func (ev *Evaluator) evalCollector(c *ast.CollectorExpr) (types.Value, error) {
	query, err := ev.evalQuery(c.Query)
	if err != nil {
		return nil, err
	}
	ev.Ctx.Catalog.AddCollector(&catalog.Collector{TypeName: c.TypeName, Query: query, Exported: c.Exported})
	return types.UndefV, nil
}

func (ev *Evaluator) evalQuery(q *ast.QueryExpr) (*catalog.Query, error) {
	if q == nil {
		return nil, nil
	}
	if q.And != nil {
		left, err := ev.evalQuery(&ast.QueryExpr{Attribute: q.Attribute, Negate: q.Negate, Value: q.Value})
		if err != nil {
			return nil, err
		}
		right, err := ev.evalQuery(q.And)
		if err != nil {
			return nil, err
		}
		return &catalog.Query{And: []*catalog.Query{left, right}}, nil
	}
	if q.Or != nil {
		left, err := ev.evalQuery(&ast.QueryExpr{Attribute: q.Attribute, Negate: q.Negate, Value: q.Value})
		if err != nil {
			return nil, err
		}
		right, err := ev.evalQuery(q.Or)
		if err != nil {
			return nil, err
		}
		return &catalog.Query{Or: []*catalog.Query{left, right}}, nil
	}
	v, err := ev.evalExpr(q.Value)
	if err != nil {
		return nil, err
	}
	op := catalog.QueryEq
	if q.Negate {
		op = catalog.QueryNotEq
	}
	return &catalog.Query{Attr: q.Attribute, Op: op, Value: v}, nil
}

// evalRelationshipStatement queues an edge for every combination of
// left- and right-hand resource references: `a -> b` runs a before b; `~>` additionally notifies;
// `<-`/`<~` are the mirrored forms.
func (ev *Evaluator) evalRelationshipStatement(r *ast.RelationshipStatement) (types.Value, error) {
	left, err := ev.evalExpr(r.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.evalExpr(r.Right)
	if err != nil {
		return nil, err
	}
	leftKeys, err := catalog.ResolveReference(left)
	if err != nil {
		return nil, ev.fail(r.Range(), err)
	}
	rightKeys, err := catalog.ResolveReference(right)
	if err != nil {
		return nil, ev.fail(r.Range(), err)
	}
	kind := catalog.Before
	reversed := false
	switch r.Kind {
	case ast.RelBefore:
		kind = catalog.Before
	case ast.RelNotify:
		kind = catalog.Notify
	case ast.RelRequire:
		kind = catalog.Require
		reversed = true
	case ast.RelSubscribe:
		kind = catalog.Subscribe
		reversed = true
	}
	for _, from := range leftKeys {
		for _, to := range rightKeys {
			if reversed {
				ev.Ctx.Catalog.AddRelationship(to, from, kind)
			} else {
				ev.Ctx.Catalog.AddRelationship(from, to, kind)
			}
		}
	}
	return right, nil
}
