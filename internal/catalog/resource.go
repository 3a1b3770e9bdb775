// Package catalog implements the compiled resource graph and its
// finalization pipeline: an ordered resource vector, a
// uniqueness index, a tag index, a relationship graph, and queues of
// pending collectors, overrides and defaults, the same bookkeeping
// shape as an ordered, indexed table of declared entities anywhere else
// in the compiler (lookup-by-key maps alongside an ordered backing
// slice, pending/forward declarations resolved in a later pass).
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mpvl/unique"

	"github.com/puppetlabs/go-puppet/internal/token"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// Attribute is one name/value pair on a resource, holding both the
// value and the source ranges needed for diagnostics.
type Attribute struct {
	Name      string
	Value     types.Value
	NameRange token.Range
	ValRange  token.Range
	// Append marks an attribute declared with `+>` rather than `=>`:
	// ApplyAttribute concatenates onto any existing value instead of
	// replacing it.
	Append bool
}

// Key identifies a resource by its normalized (type, title) pair.
type Key struct {
	Type  string
	Title string
}

// NormalizeType strips a leading "::" from a type name and returns
// "Class" for any casing of "class"; other names keep their case.
func NormalizeType(typeName string) string {
	t := strings.TrimPrefix(typeName, "::")
	if strings.EqualFold(typeName, "class") {
		return "Class"
	}
	return t
}

func normalizeTitle(typeName, title string) string {
	if strings.EqualFold(typeName, "Class") {
		return strings.ToLower(strings.TrimPrefix(title, "::"))
	}
	return title
}

// ResolveReference flattens a resource-reference value into the catalog
// keys it names. v is either a single Type[title] reference, or an Array
// of references — the shape produced both by a literal array of
// references (`[File['a'], File['b']]`) and by a multi-title reference
// (`File['a', 'b']`), nested arbitrarily deep.
func ResolveReference(v types.Value) ([]Key, error) {
	switch val := v.(type) {
	case types.TypeRef:
		rt, ok := val.Type.(types.ResourceType)
		if !ok {
			return nil, fmt.Errorf("not a resource reference: %s", val.Type.String())
		}
		return []Key{{Type: NormalizeType(rt.TypeName), Title: normalizeTitle(rt.TypeName, rt.Title)}}, nil
	case types.Array:
		var out []Key
		for _, e := range val.Elements {
			keys, err := ResolveReference(e)
			if err != nil {
				return nil, err
			}
			out = append(out, keys...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a resource reference: %s", types.Infer(v).String())
	}
}

// Resource is one declared entry in the catalog.
type Resource struct {
	Type       string
	Title      string
	Attributes []*Attribute
	Virtual    bool
	Exported   bool
	Realized   bool
	Tags       []string
	DeclScope  interface{} // *scope.Scope; opaque to avoid an import cycle
	DeclRange  token.Range
	Index      int // position in the catalog's resource vector
}

// Key returns the resource's normalized identity.
func (r *Resource) Key() Key {
	return Key{Type: NormalizeType(r.Type), Title: normalizeTitle(r.Type, r.Title)}
}

// Get returns the named attribute's value, if set.
func (r *Resource) Get(name string) (types.Value, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Set assigns name to an already-evaluated attribute, overwriting any
// existing value of the same name (used for override application and
// default merging in finalization).
func (r *Resource) Set(attr Attribute) {
	for i, a := range r.Attributes {
		if a.Name == attr.Name {
			r.Attributes[i] = &attr
			return
		}
	}
	r.Attributes = append(r.Attributes, &attr)
}

// ApplyAttribute sets attr, or, if attr.Append is set, concatenates it
// onto any existing value of the same name (wrapping bare scalars into
// single-element arrays first) rather than replacing it. This is how a
// `Type['title'] { attr +> val }` override behaves, as opposed to `=>`.
func (r *Resource) ApplyAttribute(attr Attribute) {
	if !attr.Append {
		r.Set(attr)
		return
	}
	existing, ok := r.Get(attr.Name)
	if !ok {
		r.Set(attr)
		return
	}
	attr.Value = types.Array{Elements: append(toElements(existing), toElements(attr.Value)...)}
	r.Set(attr)
}

func toElements(v types.Value) []types.Value {
	if a, ok := v.(types.Array); ok {
		return a.Elements
	}
	return []types.Value{v}
}

// AddTags merges tags into the resource's tag set, deduplicating
// case-insensitively via mpvl/unique.
func (r *Resource) AddTags(tags ...string) {
	for _, t := range tags {
		r.Tags = append(r.Tags, strings.ToLower(t))
	}
	unique.Strings(&r.Tags)
}

// HasTag reports whether tag (compared case-insensitively) is present,
// directly or because it equals the lowercased resource type or title.
func (r *Resource) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	if tag == strings.ToLower(r.Type) || tag == strings.ToLower(r.Title) {
		return true
	}
	i := sort.SearchStrings(r.Tags, tag)
	return i < len(r.Tags) && r.Tags[i] == tag
}
