package catalog_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/types"
)

func TestDocumentIncludesRealizedResourcesOnly(t *testing.T) {
	c := catalog.New("web01")
	real := &catalog.Resource{Type: "File", Title: "/tmp/real"}
	virtual := &catalog.Resource{Type: "File", Title: "/tmp/virtual", Virtual: true}
	if err := c.Add(real); err != nil {
		t.Fatalf("Add real: %v", err)
	}
	if err := c.Add(virtual); err != nil {
		t.Fatalf("Add virtual: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	doc := c.Document()
	if doc.CatalogUUID != c.ID {
		t.Fatalf("CatalogUUID = %q, want %q", doc.CatalogUUID, c.ID)
	}
	if doc.Name != "web01" {
		t.Fatalf("Name = %q, want %q", doc.Name, "web01")
	}
	if len(doc.Resources) != 1 || doc.Resources[0].Title != "/tmp/real" {
		t.Fatalf("Resources = %+v, want only /tmp/real", doc.Resources)
	}
}

func TestDocumentAttributesInInsertionOrder(t *testing.T) {
	c := catalog.New("web01")
	r := &catalog.Resource{Type: "File", Title: "/tmp/x"}
	r.Attributes = append(r.Attributes,
		&catalog.Attribute{Name: "ensure", Value: types.String("present")},
		&catalog.Attribute{Name: "mode", Value: types.String("0644")},
	)
	if err := c.Add(r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	doc := c.Document()
	if len(doc.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(doc.Resources))
	}
	params := doc.Resources[0].Parameters
	if len(params) != 2 || params[0].Name != "ensure" || params[1].Name != "mode" {
		t.Fatalf("Parameters = %+v, want ensure then mode in order", params)
	}
}

func TestDocumentEdges(t *testing.T) {
	c := catalog.New("web01")
	a := &catalog.Resource{Type: "Package", Title: "httpd"}
	b := &catalog.Resource{Type: "Service", Title: "httpd"}
	if err := c.Add(a); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if err := c.Add(b); err != nil {
		t.Fatalf("Add b: %v", err)
	}
	c.AddRelationship(a.Key(), b.Key(), catalog.Before)
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	doc := c.Document()
	want := []catalog.EdgeDocument{{From: "Package[httpd]", To: "Service[httpd]", Kind: "before"}}
	if diff := cmp.Diff(want, doc.Edges); diff != "" {
		t.Fatalf("Edges mismatch (-want +got):\n%s", diff)
	}
}
