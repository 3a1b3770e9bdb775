package catalog

import "github.com/puppetlabs/go-puppet/internal/types"

// QueryOp is a single `==`/`!=` comparison inside a collector query.
type QueryOp int

const (
	QueryEq QueryOp = iota
	QueryNotEq
)

// Query is a boolean combination of attribute comparisons. A leaf has
// Attr set; And/Or hold sub-queries. A nil Query matches every resource
// (the bare `<| |>` form).
type Query struct {
	Attr    string
	Op      QueryOp
	Value   types.Value
	And, Or []*Query
}

// Match evaluates the query against one resource's attributes.
func (q *Query) Match(r *Resource) bool {
	if q == nil {
		return true
	}
	if q.Attr != "" {
		v, ok := r.Get(q.Attr)
		if !ok {
			v = types.UndefV
		}
		eq := types.Equal(v, q.Value)
		if q.Op == QueryEq {
			return eq
		}
		return !eq
	}
	if len(q.And) > 0 {
		for _, sub := range q.And {
			if !sub.Match(r) {
				return false
			}
		}
		return true
	}
	if len(q.Or) > 0 {
		for _, sub := range q.Or {
			if sub.Match(r) {
				return true
			}
		}
		return false
	}
	return true
}

// Collector is a pending request to realize virtual (or exported)
// resources, either by explicit reference (`realize`) or by query
// (`Type <| query |>` / `Type <<| query |>>`).
type Collector struct {
	TypeName string
	Query    *Query   // nil for list collectors
	Refs     []Key    // explicit references, for list collectors
	Exported bool     // true for <<| |>> queries
	matched  map[Key]bool
}

// AddCollector registers col in registration order.
func (c *Catalog) AddCollector(col *Collector) {
	col.matched = make(map[Key]bool)
	c.collectors = append(c.collectors, col)
}

// runCollectors implements finalize step 1: iterate collect-then-realize
// until a full pass realizes nothing.
func (c *Catalog) runCollectors() (bool, error) {
	realizedAny := false
	for {
		progressed := false
		for _, col := range c.collectors {
			realized, err := c.runOneCollector(col)
			if err != nil {
				return realizedAny, err
			}
			if realized {
				progressed = true
				realizedAny = true
			}
		}
		if !progressed {
			break
		}
	}
	return realizedAny, nil
}

func (c *Catalog) runOneCollector(col *Collector) (bool, error) {
	progressed := false
	if col.Query != nil {
		for _, idx := range c.typeIndex[NormalizeType(col.TypeName)] {
			r := c.resources[idx]
			if r.Realized || !col.Query.Match(r) {
				continue
			}
			if col.Exported && !r.Exported {
				continue
			}
			r.Realized = true
			r.Virtual = false
			col.matched[r.Key()] = true
			progressed = true
		}
		return progressed, nil
	}
	for _, ref := range col.Refs {
		idx, ok := c.index[ref]
		if !ok {
			continue
		}
		r := c.resources[idx]
		if !r.Realized {
			r.Realized = true
			r.Virtual = false
			progressed = true
		}
		col.matched[ref] = true
	}
	return progressed, nil
}

// UncollectedError reports a list collector whose reference never
// matched a declared resource.
type UncollectedError struct {
	Ref Key
}

func (e *UncollectedError) Error() string {
	return "could not find resource " + e.Ref.Type + "[" + e.Ref.Title + "] for realize"
}

// checkUncollected implements finalize step 6: it returns an
// UncollectedError for the first list-collector reference that matched
// no resource; query collectors are not checked.
func (c *Catalog) checkUncollected() error {
	for _, col := range c.collectors {
		if col.Query != nil {
			continue
		}
		for _, ref := range col.Refs {
			if !col.matched[ref] {
				return &UncollectedError{Ref: ref}
			}
		}
	}
	return nil
}
