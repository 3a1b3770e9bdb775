package settings_test

import (
	"os"
	"testing"

	"github.com/spf13/pflag"

	"github.com/puppetlabs/go-puppet/internal/settings"
)

func TestSplitPathList(t *testing.T) {
	sep := settings.PathListSeparator()
	joined := "a" + sep + "b" + sep + "c"
	got := settings.SplitPathList(joined)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("SplitPathList(%q) = %v, want %v", joined, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SplitPathList(%q)[%d] = %q, want %q", joined, i, got[i], want[i])
		}
	}
}

func TestSplitPathListEmpty(t *testing.T) {
	if got := settings.SplitPathList(""); got != nil {
		t.Fatalf("SplitPathList(\"\") = %v, want nil", got)
	}
}

func TestResolveFlagBeatsEnvBeatsDefault(t *testing.T) {
	os.Setenv("PUPPET_ENVIRONMENT", "from-env")
	defer os.Unsetenv("PUPPET_ENVIRONMENT")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s := settings.Register(fs)
	if err := fs.Parse([]string{"--environment=from-flag"}); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}
	s.Resolve()
	if s.Environment != "from-flag" {
		t.Fatalf("Environment = %q, want %q (flag must win over env)", s.Environment, "from-flag")
	}
}

func TestResolveEnvBeatsDefault(t *testing.T) {
	os.Setenv("PUPPET_ENVIRONMENT", "from-env")
	defer os.Unsetenv("PUPPET_ENVIRONMENT")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s := settings.Register(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}
	s.Resolve()
	if s.Environment != "from-env" {
		t.Fatalf("Environment = %q, want %q (env must win over default)", s.Environment, "from-env")
	}
}

func TestResolveDefaultWhenUnset(t *testing.T) {
	os.Unsetenv("PUPPET_ENVIRONMENT")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s := settings.Register(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}
	s.Resolve()
	if s.Environment != "production" {
		t.Fatalf("Environment = %q, want default %q", s.Environment, "production")
	}
}

func TestResolveSplitsPathSettings(t *testing.T) {
	sep := settings.PathListSeparator()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s := settings.Register(fs)
	if err := fs.Parse([]string{"--module-path=/a" + sep + "/b"}); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}
	s.Resolve()
	if len(s.ModulePath) != 2 || s.ModulePath[0] != "/a" || s.ModulePath[1] != "/b" {
		t.Fatalf("ModulePath = %v, want [/a /b]", s.ModulePath)
	}
}
