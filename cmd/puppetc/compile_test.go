package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/settings"
)

// writeFile creates path (and its parent directories) with the given
// contents, failing the test on any error.
func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

func TestCompileEndToEndWritesCatalogJSON(t *testing.T) {
	dir := t.TempDir()
	codeDir := filepath.Join(dir, "code")
	envRoot := filepath.Join(codeDir, "environments", "production")

	writeFile(t, filepath.Join(envRoot, "manifests", "site.pp"), `
node default {
  include apache::config
}
`)
	writeFile(t, filepath.Join(envRoot, "modules", "apache", "manifests", "config.pp"), `
class apache::config {
  file { '/etc/apache2/apache.conf':
    ensure => present,
    mode   => '0644',
  }
}
`)

	root := newRootCommand()
	outPath := filepath.Join(dir, "catalog.json")
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"compile",
		"--code-directory", codeDir,
		"--out", outPath,
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v (stderr: %s)", err, stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading %s: %v", outPath, err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal catalog: %v", err)
	}
	found := false
	for _, r := range doc.Resources {
		if r.Type == "file" && r.Title == "/etc/apache2/apache.conf" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the autoloaded apache::config class's file resource in the catalog, got %+v", doc.Resources)
	}
}

func TestEntryManifestPathMissingIsAnError(t *testing.T) {
	dir := t.TempDir()
	s := &settings.Settings{Environment: "production"}
	_, err := entryManifestPath(s, []string{filepath.Join(dir, "nope")})
	if err == nil {
		t.Fatalf("expected an error when no site.pp exists under any environment root")
	}
}

func TestEnvironmentRootsJoinsEachEntryWithEnvironmentName(t *testing.T) {
	s := &settings.Settings{
		Environment:     "production",
		EnvironmentPath: []string{"/a", "/b"},
	}
	roots := environmentRoots(s)
	want := []string{filepath.Join("/a", "production"), filepath.Join("/b", "production")}
	if len(roots) != 2 || roots[0] != want[0] || roots[1] != want[1] {
		t.Fatalf("environmentRoots = %v, want %v", roots, want)
	}
}
