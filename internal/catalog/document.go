package catalog

// Document is the serializable form of a finalized catalog: the node
// name, its resources (attributes in insertion order), and the edge
// list. Field names follow real Puppet's JSON catalog convention
// (snake_case, "catalog_uuid") so output from this compiler reads the
// way a Puppet agent would expect.
type Document struct {
	CatalogUUID string             `json:"catalog_uuid"`
	Name        string             `json:"name"`
	Resources   []ResourceDocument `json:"resources"`
	Edges       []EdgeDocument     `json:"edges"`
}

// ResourceDocument is one catalog resource in output form.
type ResourceDocument struct {
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Tags       []string          `json:"tags"`
	Exported   bool              `json:"exported"`
	Parameters []AttributeRecord `json:"parameters"`
	Line       int               `json:"line"`
	File       string            `json:"file,omitempty"`
}

// AttributeRecord is one name/value pair in insertion order.
type AttributeRecord struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// EdgeDocument is one relationship edge in output form.
type EdgeDocument struct {
	From string `json:"source"`
	To   string `json:"target"`
	Kind string `json:"relationship"`
}

// Document renders a finalized catalog into its output form. Virtual,
// never-realized resources are dropped, matching Realized().
func (c *Catalog) Document() Document {
	doc := Document{CatalogUUID: c.ID, Name: c.NodeName}
	for _, r := range c.Realized() {
		rd := ResourceDocument{
			Type:     r.Type,
			Title:    r.Title,
			Tags:     append([]string(nil), r.Tags...),
			Exported: r.Exported,
			Line:     r.DeclRange.Start.Line,
		}
		for _, a := range r.Attributes {
			rd.Parameters = append(rd.Parameters, AttributeRecord{Name: a.Name, Value: a.Value.Inspect()})
		}
		doc.Resources = append(doc.Resources, rd)
	}
	for _, e := range c.edges {
		doc.Edges = append(doc.Edges, EdgeDocument{
			From: e.From.Type + "[" + e.From.Title + "]",
			To:   e.To.Type + "[" + e.To.Title + "]",
			Kind: e.Kind.String(),
		})
	}
	return doc
}
