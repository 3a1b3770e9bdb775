package config_test

import (
	"testing"

	"github.com/puppetlabs/go-puppet/internal/config"
)

func TestHasManifestExt(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"init.pp", true},
		{"template.epp", true},
		{"README.md", false},
		{"noextension", false},
		{"", false},
	}
	for _, c := range cases {
		if got := config.HasManifestExt(c.path); got != c.want {
			t.Errorf("HasManifestExt(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestDefaultEnvironmentIsProduction(t *testing.T) {
	if config.DefaultEnvironment != "production" {
		t.Fatalf("DefaultEnvironment = %q, want %q", config.DefaultEnvironment, "production")
	}
}
