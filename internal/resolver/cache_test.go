package resolver_test

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/resolver"
)

func TestParseCacheGetMissBeforeStore(t *testing.T) {
	cache := resolver.NewParseCache()
	if _, ok := cache.Get("/tmp/init.pp"); ok {
		t.Fatalf("Get should miss before any Store")
	}
}

func TestParseCacheStoreThenGet(t *testing.T) {
	cache := resolver.NewParseCache()
	tree := &ast.Tree{Path: "/tmp/init.pp"}
	cache.Store("/tmp/init.pp", tree, true)
	got, ok := cache.Get("/tmp/init.pp")
	if !ok || got != tree {
		t.Fatalf("Get did not return the stored tree")
	}
}

// A failed parse must never be served back out of the cache: the next
// reference to the same path has to re-parse and re-report its
// diagnostics rather than silently reuse a broken tree.
func TestParseCacheFailedParseNotCached(t *testing.T) {
	cache := resolver.NewParseCache()
	cache.Store("/tmp/broken.pp", &ast.Tree{Path: "/tmp/broken.pp"}, false)
	if _, ok := cache.Get("/tmp/broken.pp"); ok {
		t.Fatalf("a tree from a failed parse must not be cached")
	}
}
