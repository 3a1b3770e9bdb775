package evaluator

import (
	"fmt"
	"io"
	"testing"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/facts"
	"github.com/puppetlabs/go-puppet/internal/parser"
	"github.com/puppetlabs/go-puppet/internal/scope"
)

func newAutoloadEvaluator(manifests map[string]string) *Evaluator {
	provider := facts.NewStatic(nil)
	root := scope.NewRoot(provider)
	cat := catalog.New("test.example.com")
	logger := diagnostics.NewLogger(io.Discard)
	ctx := evalctx.New(root, cat, provider, logger)
	ev := New(ctx)
	ev.Loader = func(name string) (*ast.Tree, error) {
		src, ok := manifests[name]
		if !ok {
			return nil, fmt.Errorf("no manifest registered for %q", name)
		}
		reporter := diagnostics.NewReporter()
		return parser.Parse(name+".pp", src, reporter)
	}
	return ev
}

func TestAutoloadDeclaresClassNotInEntryManifest(t *testing.T) {
	ev := newAutoloadEvaluator(map[string]string{
		"apache::config": "class apache::config {\n  $x = 1\n}\n",
	})
	tree, err := parser.Parse("site.pp", "include apache::config\n", diagnostics.NewReporter())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ev.LoadTree(tree); err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if _, ok := ev.Ctx.Catalog.Lookup(catalog.Key{Type: "Class", Title: "apache::config"}); !ok {
		t.Fatalf("expected apache::config to be declared via autoload")
	}
}

func TestAutoloadMissingClassStillErrors(t *testing.T) {
	ev := newAutoloadEvaluator(nil)
	tree, err := parser.Parse("site.pp", "include apache::config\n", diagnostics.NewReporter())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ev.LoadTree(tree); err == nil {
		t.Fatalf("expected an error for a class the loader cannot resolve")
	}
}

func TestAutoloadResolvesInheritedParent(t *testing.T) {
	ev := newAutoloadEvaluator(map[string]string{
		"apache::config": "class apache::config inherits apache::base {\n}\n",
		"apache::base":    "class apache::base {\n  $base = true\n}\n",
	})
	tree, err := parser.Parse("site.pp", "include apache::config\n", diagnostics.NewReporter())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ev.LoadTree(tree); err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if _, ok := ev.Ctx.Catalog.Lookup(catalog.Key{Type: "Class", Title: "apache::base"}); !ok {
		t.Fatalf("expected the autoloaded parent class apache::base to also be declared")
	}
}

func TestAutoloadDefinedTypeUsedAsResource(t *testing.T) {
	ev := newAutoloadEvaluator(map[string]string{
		"webapp::vhost": "define webapp::vhost($port = 80) {\n}\n",
	})
	tree, err := parser.Parse("site.pp", "webapp::vhost { 'main': port => 8080 }\n", diagnostics.NewReporter())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := ev.LoadTree(tree); err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if _, ok := ev.Ctx.Catalog.Lookup(catalog.Key{Type: "Webapp::vhost", Title: "main"}); ok {
		return
	}
	if len(ev.Ctx.Catalog.Resources()) == 0 {
		t.Fatalf("expected the autoloaded defined type to produce at least one resource")
	}
}
