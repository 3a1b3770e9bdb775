package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/puppetlabs/go-puppet/internal/modules"
)

func TestManifestForInitPP(t *testing.T) {
	m := &modules.Module{Name: "apache", Path: "/modules/apache"}
	got := m.ManifestFor("")
	want := filepath.Join("/modules/apache", "manifests", "init.pp")
	if got != want {
		t.Fatalf("ManifestFor(\"\") = %q, want %q", got, want)
	}
}

func TestManifestForNestedName(t *testing.T) {
	m := &modules.Module{Name: "apache", Path: "/modules/apache"}
	got := m.ManifestFor("config::vhost")
	want := filepath.Join("/modules/apache", "manifests", "config", "vhost.pp")
	if got != want {
		t.Fatalf("ManifestFor(config::vhost) = %q, want %q", got, want)
	}
}

func TestLoadMetadataJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")
	body := `{"name":"puppetlabs-apache","version":"3.2.1","dependencies":[{"name":"puppetlabs-stdlib","version_requirement":">=4.0.0 <9.0.0"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	md, err := modules.LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if md.Name != "puppetlabs-apache" || md.Version != "3.2.1" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
	if len(md.Dependencies) != 1 || md.Dependencies[0].Name != "puppetlabs-stdlib" {
		t.Fatalf("unexpected dependencies: %+v", md.Dependencies)
	}
	if err := md.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMetadataYAMLFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.yaml")
	body := "name: puppetlabs-stdlib\nversion: 9.1.0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	md, err := modules.LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if md.Name != "puppetlabs-stdlib" || md.Version != "9.1.0" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
}

func TestValidateRejectsBadVersion(t *testing.T) {
	md := &modules.Metadata{Name: "broken", Version: "not-a-version"}
	if err := md.Validate(); err == nil {
		t.Fatalf("expected an error for an invalid version")
	}
}

func TestValidateRejectsBadDependencyRange(t *testing.T) {
	md := &modules.Metadata{
		Name:         "broken",
		Version:      "1.0.0",
		Dependencies: []modules.Dependency{{Name: "dep", VersionRequirement: ">=not-a-version"}},
	}
	if err := md.Validate(); err == nil {
		t.Fatalf("expected an error for an invalid dependency range")
	}
}

func TestSatisfiesRange(t *testing.T) {
	md := &modules.Metadata{}
	cases := []struct {
		requirement string
		version     string
		want        bool
	}{
		{">=4.0.0 <9.0.0", "5.0.0", true},
		{">=4.0.0 <9.0.0", "9.0.0", false},
		{">=4.0.0 <9.0.0", "3.9.9", false},
		{"", "anything-goes", true},
		{"=1.2.3", "1.2.3", true},
		{"=1.2.3", "1.2.4", false},
	}
	for _, c := range cases {
		if got := md.Satisfies(c.requirement, c.version); got != c.want {
			t.Errorf("Satisfies(%q, %q) = %v, want %v", c.requirement, c.version, got, c.want)
		}
	}
}
