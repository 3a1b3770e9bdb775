package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/puppetlabs/go-puppet/internal/token"
)

// override is a resource-override attribute queued against a not-yet
// (or already) declared resource.
type override struct {
	target Key
	attr   Attribute
	rng    token.Range
}

// defaultSet is a `Type { default: ... }` default-attribute block
// recorded against the scope chain it was declared in.
type defaultSet struct {
	typeName string
	scope    interface{} // *scope.Scope the defaults apply within and below
	attrs    []Attribute
}

// Catalog is the resource graph under construction, and later the
// finalized, read-only document.
type Catalog struct {
	ID       string // catalog_uuid, assigned at Finalize
	NodeName string

	resources []*Resource
	index     map[Key]int
	typeIndex map[string][]int
	tagIndex  map[string][]int

	edges       []Edge
	pendingRels []pendingRelationship

	collectors []*Collector
	overrides  []override
	defaults   []defaultSet

	finalized bool
}

// New creates an empty, mutable catalog for the named node.
func New(nodeName string) *Catalog {
	return &Catalog{
		NodeName:  nodeName,
		index:     make(map[Key]int),
		typeIndex: make(map[string][]int),
		tagIndex:  make(map[string][]int),
	}
}

// DuplicateResourceError reports a second declaration of the same
// (type, title) with conflicting parameters.
type DuplicateResourceError struct{ Key Key }

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("duplicate declaration of %s[%s]", e.Key.Type, e.Key.Title)
}

// Lookup returns the resource for key, if declared.
func (c *Catalog) Lookup(key Key) (*Resource, bool) {
	idx, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.resources[idx], true
}

// Add appends a new resource in declaration order, indexing it by key,
// type, and tags.
// It returns a *DuplicateResourceError if the key is already taken.
func (c *Catalog) Add(r *Resource) error {
	if c.finalized {
		return fmt.Errorf("catalog: cannot add resources after finalization")
	}
	key := r.Key()
	if _, exists := c.index[key]; exists {
		return &DuplicateResourceError{Key: key}
	}
	r.Index = len(c.resources)
	r.AddTags(r.Type, r.Title)
	c.resources = append(c.resources, r)
	c.index[key] = r.Index
	tname := NormalizeType(r.Type)
	c.typeIndex[tname] = append(c.typeIndex[tname], r.Index)
	for _, tag := range r.Tags {
		c.tagIndex[tag] = append(c.tagIndex[tag], r.Index)
	}
	return nil
}

// ByType returns every declared resource of the given type, in
// declaration order.
func (c *Catalog) ByType(typeName string) []*Resource {
	idxs := c.typeIndex[NormalizeType(typeName)]
	out := make([]*Resource, len(idxs))
	for i, idx := range idxs {
		out[i] = c.resources[idx]
	}
	return out
}

// ByTag returns every declared resource carrying tag, case-insensitively.
func (c *Catalog) ByTag(tag string) []*Resource {
	idxs := c.tagIndex[normalizeTagLookup(tag)]
	out := make([]*Resource, len(idxs))
	for i, idx := range idxs {
		out[i] = c.resources[idx]
	}
	return out
}

func normalizeTagLookup(tag string) string {
	out := make([]byte, len(tag))
	for i := 0; i < len(tag); i++ {
		b := tag[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return string(out)
}

// QueueOverride applies attr to target at once if target is already in
// the catalog; otherwise the override is queued for finalize step 3 to
// apply once the target exists.
func (c *Catalog) QueueOverride(target Key, attr Attribute) {
	if r, ok := c.Lookup(target); ok {
		r.ApplyAttribute(attr)
		return
	}
	c.overrides = append(c.overrides, override{target: target, attr: attr})
}

// AddDefaults records a `Type { default: ... }` block against the scope
// it was declared in, for later merging during finalize step 2.
func (c *Catalog) AddDefaults(typeName string, scope interface{}, attrs []Attribute) {
	c.defaults = append(c.defaults, defaultSet{typeName: typeName, scope: scope, attrs: attrs})
}

// applyDefaults implements finalize step 2: for every attribute a
// resource lacks, merge in the nearest matching default.
func (c *Catalog) applyDefaults() {
	for _, r := range c.resources {
		for _, d := range c.defaults {
			if NormalizeType(d.typeName) != NormalizeType(r.Type) {
				continue
			}
			if !scopeReaches(r.DeclScope, d.scope) {
				continue
			}
			for _, attr := range d.attrs {
				if _, ok := r.Get(attr.Name); !ok {
					r.Set(attr)
				}
			}
		}
	}
}

// scopeReaches reports whether declScope is the scope the defaults were
// declared in, or nested under it. Scopes are compared by identity
// through the opaque interface{} handle; resolving the actual parent
// chain is the evaluator's job since this package does not import scope.
func scopeReaches(declScope, defaultsScope interface{}) bool {
	type parented interface{ ParentChainContains(interface{}) bool }
	if p, ok := declScope.(parented); ok {
		return p.ParentChainContains(defaultsScope)
	}
	return declScope == defaultsScope
}

// applyOverrides implements finalize step 3.
func (c *Catalog) applyOverrides() error {
	for _, o := range c.overrides {
		r, ok := c.Lookup(o.target)
		if !ok {
			return fmt.Errorf("override: no resource %s[%s] exists", o.target.Type, o.target.Title)
		}
		r.ApplyAttribute(o.attr)
	}
	c.overrides = nil
	return nil
}

// Finalize runs the fixed-point pipeline and seals the catalog. It is
// idempotent-unsafe by design: calling it twice is a programming error,
// since a finalized catalog is meant to be immutable.
func (c *Catalog) Finalize() error {
	if _, err := c.runCollectors(); err != nil {
		return err
	}
	c.applyDefaults()
	if err := c.applyOverrides(); err != nil {
		return err
	}
	if err := c.resolveRelationships(); err != nil {
		return err
	}
	if err := c.checkCycles(); err != nil {
		return err
	}
	if err := c.checkUncollected(); err != nil {
		return err
	}
	if err := c.checkNoVirtualReachable(); err != nil {
		return err
	}
	c.ID = uuid.NewString()
	c.finalized = true
	return nil
}

// checkNoVirtualReachable enforces that a finalized catalog has no
// virtual unrealized resources reachable from collectors: every
// resource a collector query could have matched but didn't
// realize must not itself be required by a realized resource's edges.
// Resources that remain virtual and unreferenced are simply dropped from
// catalog output by callers inspecting the Virtual flag; this check only
// rejects edges that point at a still-virtual resource.
func (c *Catalog) checkNoVirtualReachable() error {
	for _, e := range c.edges {
		if r, ok := c.Lookup(e.To); ok && r.Virtual && !r.Realized {
			return fmt.Errorf("relationship targets unrealized virtual resource %s[%s]", e.To.Type, e.To.Title)
		}
	}
	return nil
}

// Resources returns the full resource vector in declaration order.
func (c *Catalog) Resources() []*Resource { return c.resources }

// Realized returns only the non-virtual (or realized-virtual) resources,
// the set an apply engine would act on.
func (c *Catalog) Realized() []*Resource {
	out := make([]*Resource, 0, len(c.resources))
	for _, r := range c.resources {
		if !r.Virtual || r.Realized {
			out = append(out, r)
		}
	}
	return out
}
