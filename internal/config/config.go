// Package config carries the small, directly-referenced constants
// shared across the compiler: the program version, recognized manifest
// file extensions, and the fixed subdirectory names an environment
// root is expected to carry. It is a handful of package vars and const
// groups, not a generic settings-loader (that lives in internal/settings).
package config

// Version is the current compiler version, set at build time via
// -ldflags.
var Version = "0.1.0"

const ManifestExt = ".pp"

// ManifestExtensions are the recognized manifest/template source extensions.
var ManifestExtensions = []string{".pp", ".epp"}

// HasManifestExt reports whether path ends with a recognized manifest extension.
func HasManifestExt(path string) bool {
	for _, ext := range ManifestExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// DefaultEnvironment is the environment name used when none is set.
const DefaultEnvironment = "production"

// EnvironmentsDir and ManifestsDir are the fixed subdirectory names an
// environment root is expected to carry.
const (
	EnvironmentsDir = "environments"
	ManifestsDir    = "manifests"
	ModulesDir      = "modules"
)
