// Package settings resolves the compiler's path and environment
// settings from, in priority order, explicit CLI flags, environment
// variables (`PUPPET_<NAME>` uppercased), then a platform-specific
// default, layered over github.com/spf13/pflag.
package settings

import (
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"

	"github.com/puppetlabs/go-puppet/internal/config"
)

// PathListSeparator is ':' on POSIX and ';' on Windows.
func PathListSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// SplitPathList splits a setting value shaped like module_path/environment_path.
func SplitPathList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, PathListSeparator())
}

// Settings holds the resolved value of every recognized option.
type Settings struct {
	CodeDirectory   string
	Environment     string
	EnvironmentPath []string
	ModulePath      []string
	BaseModulePath  []string
	Manifest        string
	Facts           string

	// raw holds the colon/semicolon-separated flag values until Resolve
	// splits them into the path-list fields above.
	rawEnvironmentPath string
	rawModulePath      string
	rawBaseModulePath  string
}

// defaultCodeDirectory is the platform-specific default: the system
// code directory for root or a home-less process, else a per-user
// directory under $HOME.
func defaultCodeDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" || os.Geteuid() == 0 {
		return "/etc/puppetlabs/code"
	}
	return home + "/.puppetlabs/etc/code"
}

// Register binds every recognized setting as a flag on fs, returning the
// Settings the flags will populate once fs.Parse has run. Call Resolve
// after parsing to apply the environment-variable and default fallback.
func Register(fs *pflag.FlagSet) *Settings {
	s := &Settings{}
	fs.StringVar(&s.CodeDirectory, "code-directory", "", "root of Puppet code")
	fs.StringVar(&s.Environment, "environment", "", "environment name")
	fs.StringVar(&s.rawEnvironmentPath, "environment-path", "", "colon/semicolon-separated environment roots")
	fs.StringVar(&s.rawModulePath, "module-path", "", "colon/semicolon-separated module roots")
	fs.StringVar(&s.rawBaseModulePath, "base-module-path", "", "colon/semicolon-separated fallback module roots")
	fs.StringVar(&s.Manifest, "manifest", "", "manifest entry file (a directory is not loaded)")
	fs.StringVar(&s.Facts, "facts", "", "path to a pre-loaded facts file")
	return s
}

// Resolve fills in every field Register's flags left empty from the
// matching `PUPPET_<NAME>` environment variable, then from its default,
// and splits the three path-list settings.
func (s *Settings) Resolve() {
	s.CodeDirectory = firstNonEmpty(s.CodeDirectory, envOrEmpty("PUPPET_CODE_DIRECTORY"), defaultCodeDirectory())
	s.Environment = firstNonEmpty(s.Environment, envOrEmpty("PUPPET_ENVIRONMENT"), config.DefaultEnvironment)

	envPath := firstNonEmpty(s.rawEnvironmentPath, envOrEmpty("PUPPET_ENVIRONMENT_PATH"),
		s.CodeDirectory+"/"+config.EnvironmentsDir)
	s.EnvironmentPath = SplitPathList(envPath)

	modPath := firstNonEmpty(s.rawModulePath, envOrEmpty("PUPPET_MODULE_PATH"))
	s.ModulePath = SplitPathList(modPath)

	baseModPath := firstNonEmpty(s.rawBaseModulePath, envOrEmpty("PUPPET_BASE_MODULE_PATH"))
	s.BaseModulePath = SplitPathList(baseModPath)

	s.Manifest = firstNonEmpty(s.Manifest, envOrEmpty("PUPPET_MANIFEST"))
	s.Facts = firstNonEmpty(s.Facts, envOrEmpty("PUPPET_FACTS"))
}

func envOrEmpty(name string) string { return os.Getenv(name) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
