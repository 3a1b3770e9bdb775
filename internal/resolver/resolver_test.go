package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/puppetlabs/go-puppet/internal/resolver"
	"github.com/puppetlabs/go-puppet/internal/settings"
)

func writeManifest(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestResolver(t *testing.T, modulePath string) *resolver.Resolver {
	t.Helper()
	cache := resolver.NewParseCache()
	s := &settings.Settings{ModulePath: []string{modulePath}}
	return resolver.New(s, cache)
}

func TestManifestPathInitPP(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, root)
	writeManifest(t, filepath.Join(root, "apache", "manifests", "init.pp"), "class apache {}\n")
	path, err := r.ManifestPath("apache")
	if err != nil {
		t.Fatalf("ManifestPath: %v", err)
	}
	want := filepath.Join(root, "apache", "manifests", "init.pp")
	if path != want {
		t.Fatalf("ManifestPath(apache) = %q, want %q", path, want)
	}
}

func TestManifestPathNestedClass(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, root)
	writeManifest(t, filepath.Join(root, "apache", "manifests", "config.pp"), "class apache::config {}\n")
	path, err := r.ManifestPath("apache::config")
	if err != nil {
		t.Fatalf("ManifestPath: %v", err)
	}
	want := filepath.Join(root, "apache", "manifests", "config.pp")
	if path != want {
		t.Fatalf("ManifestPath(apache::config) = %q, want %q", path, want)
	}
}

func TestManifestPathUnknownModule(t *testing.T) {
	r := newTestResolver(t, t.TempDir())
	if _, err := r.ManifestPath("nosuchmodule::foo"); err == nil {
		t.Fatalf("expected an error for an unknown module")
	}
}

func TestResolveParsesAndCaches(t *testing.T) {
	root := t.TempDir()
	r := newTestResolver(t, root)
	writeManifest(t, filepath.Join(root, "apache", "manifests", "init.pp"), "class apache {\n}\n")

	tree, err := r.Resolve("apache")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.Statements) != 1 {
		t.Fatalf("expected one top-level statement, got %d", len(tree.Statements))
	}

	again, err := r.Resolve("apache")
	if err != nil {
		t.Fatalf("Resolve (second time): %v", err)
	}
	if again != tree {
		t.Fatalf("expected the second Resolve to return the same cached *ast.Tree")
	}
}

func TestManifestsUnder(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "init.pp"), "")
	writeManifest(t, filepath.Join(root, "config.pp"), "")
	writeManifest(t, filepath.Join(root, "README.md"), "")

	files, err := resolver.ManifestsUnder(root)
	if err != nil {
		t.Fatalf("ManifestsUnder: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 manifest files, got %d: %v", len(files), files)
	}
}
