package catalog_test

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func newResource(typeName, title string) *catalog.Resource {
	return &catalog.Resource{Type: typeName, Title: title}
}

func TestAddAndLookup(t *testing.T) {
	c := catalog.New("web01")
	r := newResource("File", "/tmp/x")
	if err := c.Add(r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, ok := c.Lookup(catalog.Key{Type: "File", Title: "/tmp/x"})
	if !ok || got != r {
		t.Fatalf("Lookup did not return the added resource")
	}
}

func TestAddDuplicateIsError(t *testing.T) {
	c := catalog.New("web01")
	if err := c.Add(newResource("File", "/tmp/x")); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	err := c.Add(newResource("File", "/tmp/x"))
	if _, ok := err.(*catalog.DuplicateResourceError); !ok {
		t.Fatalf("expected *DuplicateResourceError, got %v", err)
	}
}

func TestClassTitleNormalization(t *testing.T) {
	c := catalog.New("web01")
	r := newResource("Class", "::Foo::Bar")
	if err := c.Add(r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, ok := c.Lookup(catalog.Key{Type: "Class", Title: "foo::bar"}); !ok {
		t.Fatalf("expected normalized class title foo::bar to be indexed")
	}
}

func TestFinalizeAssignsUUID(t *testing.T) {
	c := catalog.New("web01")
	if err := c.Add(newResource("File", "/tmp/x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected a non-empty catalog_uuid after Finalize")
	}
}

func TestRelationshipToUnknownResourceFails(t *testing.T) {
	c := catalog.New("web01")
	if err := c.Add(newResource("File", "/tmp/x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c.AddRelationship(catalog.Key{Type: "File", Title: "/tmp/x"}, catalog.Key{Type: "File", Title: "/tmp/missing"}, catalog.Before)
	if err := c.Finalize(); err == nil {
		t.Fatalf("expected Finalize to fail on a dangling relationship")
	}
}

func fileRef(title string) types.Value {
	return types.TypeRef{Type: types.ResourceType{TypeName: "File", Title: title}}
}

func TestResolveReferenceSingle(t *testing.T) {
	keys, err := catalog.ResolveReference(fileRef("/tmp/a"))
	if err != nil {
		t.Fatalf("ResolveReference: %v", err)
	}
	want := []catalog.Key{{Type: "File", Title: "/tmp/a"}}
	if len(keys) != 1 || keys[0] != want[0] {
		t.Fatalf("got %v, want %v", keys, want)
	}
}

// File['a', 'b'] parses to the same Array-of-references shape as a
// literal [File['a'], File['b']], and must flatten to two keys either
// way.
func TestResolveReferenceMultiTitle(t *testing.T) {
	v := types.Array{Elements: []types.Value{fileRef("/tmp/a"), fileRef("/tmp/b")}}
	keys, err := catalog.ResolveReference(v)
	if err != nil {
		t.Fatalf("ResolveReference: %v", err)
	}
	want := []catalog.Key{{Type: "File", Title: "/tmp/a"}, {Type: "File", Title: "/tmp/b"}}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("got %v, want %v", keys, want)
	}
}

func TestResolveReferenceNestedArray(t *testing.T) {
	v := types.Array{Elements: []types.Value{
		types.Array{Elements: []types.Value{fileRef("/tmp/a"), fileRef("/tmp/b")}},
		fileRef("/tmp/c"),
	}}
	keys, err := catalog.ResolveReference(v)
	if err != nil {
		t.Fatalf("ResolveReference: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("got %d keys, want 3: %v", len(keys), keys)
	}
}

func TestResolveReferenceClassTitleNormalized(t *testing.T) {
	v := types.TypeRef{Type: types.ResourceType{TypeName: "Class", Title: "::Foo::Bar"}}
	keys, err := catalog.ResolveReference(v)
	if err != nil {
		t.Fatalf("ResolveReference: %v", err)
	}
	want := catalog.Key{Type: "Class", Title: "foo::bar"}
	if len(keys) != 1 || keys[0] != want {
		t.Fatalf("got %v, want %v", keys, want)
	}
}

func TestResolveReferenceRejectsNonReference(t *testing.T) {
	if _, err := catalog.ResolveReference(types.String("not a reference")); err == nil {
		t.Fatalf("expected an error for a non-reference value")
	}
}

func TestRelationshipCycleDetected(t *testing.T) {
	c := catalog.New("web01")
	a, b := newResource("Exec", "a"), newResource("Exec", "b")
	if err := c.Add(a); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if err := c.Add(b); err != nil {
		t.Fatalf("Add b: %v", err)
	}
	ka, kb := catalog.Key{Type: "Exec", Title: "a"}, catalog.Key{Type: "Exec", Title: "b"}
	c.AddRelationship(ka, kb, catalog.Before)
	c.AddRelationship(kb, ka, catalog.Before)
	err := c.Finalize()
	if _, ok := err.(*catalog.CycleError); !ok {
		t.Fatalf("expected *CycleError, got %v", err)
	}
}

func TestListCollectorRealizesVirtualResource(t *testing.T) {
	c := catalog.New("web01")
	r := newResource("Notify", "hi")
	r.Virtual = true
	if err := c.Add(r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	key := catalog.Key{Type: "Notify", Title: "hi"}
	c.AddCollector(&catalog.Collector{TypeName: "Notify", Refs: []catalog.Key{key}})
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	got, _ := c.Lookup(key)
	if got.Virtual || !got.Realized {
		t.Fatalf("expected resource to be realized and no longer virtual, got %+v", got)
	}
}

func TestListCollectorUnmatchedReferenceIsHardError(t *testing.T) {
	c := catalog.New("web01")
	c.AddCollector(&catalog.Collector{TypeName: "Notify", Refs: []catalog.Key{{Type: "Notify", Title: "ghost"}}})
	err := c.Finalize()
	if _, ok := err.(*catalog.UncollectedError); !ok {
		t.Fatalf("expected *UncollectedError, got %v", err)
	}
}

func TestQueryCollectorMatchesByAttribute(t *testing.T) {
	c := catalog.New("web01")
	r := newResource("Package", "nginx")
	r.Virtual = true
	r.Set(catalog.Attribute{Name: "ensure", Value: types.String("present")})
	if err := c.Add(r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c.AddCollector(&catalog.Collector{
		TypeName: "Package",
		Query:    &catalog.Query{Attr: "ensure", Op: catalog.QueryEq, Value: types.String("present")},
	})
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if r.Virtual || !r.Realized {
		t.Fatalf("expected query collector to realize the matching resource")
	}
}

func TestTagLookupIsCaseInsensitive(t *testing.T) {
	c := catalog.New("web01")
	r := newResource("File", "/tmp/x")
	r.AddTags("Webserver")
	if err := c.Add(r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(c.ByTag("webserver")) != 1 {
		t.Fatalf("expected tag lookup to be case-insensitive")
	}
}
