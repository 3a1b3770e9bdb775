package resolver

import (
	"sync"

	"github.com/puppetlabs/go-puppet/internal/ast"
)

// ParseCache memoizes parsed manifests for the lifetime of one compile,
// so a manifest reached through more than one qualified name, or
// re-resolved while chasing a relationship or override target, is
// parsed exactly once. It does not persist across process runs:
// internal/ast's tagged-variant tree has no natural byte encoding worth
// persisting, and a cross-run cache could only ever save the cost of
// re-reading and re-lexing a file's bytes, not the cost of rebuilding
// its tree, which a fresh process must do regardless.
type ParseCache struct {
	mu    sync.Mutex
	trees map[string]*ast.Tree
}

// NewParseCache returns an empty, ready-to-use cache.
func NewParseCache() *ParseCache {
	return &ParseCache{trees: make(map[string]*ast.Tree)}
}

// Get returns the tree cached for path, if Store was already called
// for it this compile with parseOK true.
func (c *ParseCache) Get(path string) (*ast.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.trees[path]
	return t, ok
}

// Store records a freshly-parsed tree for reuse later in this compile.
// A tree from a failed parse (parseOK false) is never cached, so a
// broken file is always re-parsed and its diagnostics re-reported on
// the next reference to it, rather than silently reused.
func (c *ParseCache) Store(path string, tree *ast.Tree, parseOK bool) {
	if !parseOK {
		return
	}
	c.mu.Lock()
	c.trees[path] = tree
	c.mu.Unlock()
}
