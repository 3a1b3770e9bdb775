// Package modules models a single Puppet module on disk: its name, its
// manifests directory, and its metadata.json descriptor. Module
// *discovery* (walking module_path/environment roots to find these) is
// internal/resolver's job; this package only knows how to describe and
// validate one module once found.
package modules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Module is one discovered module directory.
type Module struct {
	Name string
	Path string // absolute path to the module's root directory
}

// ManifestsDir is the module's manifests/ subdirectory.
func (m *Module) ManifestsDir() string {
	return filepath.Join(m.Path, "manifests")
}

// ManifestFor resolves a qualified class/defined-type name's remainder
// (the part after the module name, e.g. "config" from "apache::config")
// to the manifest file that should declare it: the module name itself
// maps to manifests/init.pp, anything else to manifests/<rest>.pp with
// "::" translated to a path separator.
func (m *Module) ManifestFor(rest string) string {
	if rest == "" {
		return filepath.Join(m.ManifestsDir(), "init.pp")
	}
	parts := splitScope(rest)
	return filepath.Join(m.ManifestsDir(), filepath.Join(parts...)+".pp")
}

func splitScope(name string) []string {
	var parts []string
	start := 0
	for i := 0; i+1 < len(name); i++ {
		if name[i] == ':' && name[i+1] == ':' {
			parts = append(parts, name[start:i])
			i++
			start = i + 1
		}
	}
	parts = append(parts, name[start:])
	return parts
}

// Dependency is one entry of a module's metadata.json "dependencies" list.
type Dependency struct {
	Name               string `json:"name" yaml:"name"`
	VersionRequirement string `json:"version_requirement" yaml:"version_requirement"`
}

// Metadata is a module's metadata.json descriptor, the subset this
// compiler cares about: identity, version, and declared dependencies.
type Metadata struct {
	Name         string       `json:"name" yaml:"name"`
	Version      string       `json:"version" yaml:"version"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
}

// LoadMetadata reads a module's metadata.json. Real Puppet modules
// always ship JSON; this also accepts a YAML document of the same
// shape, since that's how this package's own test fixtures are
// authored.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		if yerr := yaml.Unmarshal(data, &m); yerr != nil {
			return nil, fmt.Errorf("metadata %s: not valid JSON (%v) or YAML (%v)", path, err, yerr)
		}
	}
	return &m, nil
}

// Validate checks the metadata's own version field and every
// dependency's version-requirement range are well-formed semver.
func (m *Metadata) Validate() error {
	if m.Version != "" && !semver.IsValid(canonicalize(m.Version)) {
		return fmt.Errorf("metadata %s: invalid version %q", m.Name, m.Version)
	}
	for _, d := range m.Dependencies {
		if err := validateRequirement(d.VersionRequirement); err != nil {
			return fmt.Errorf("metadata %s: dependency %s: %w", m.Name, d.Name, err)
		}
	}
	return nil
}

// Satisfies reports whether candidateVersion falls within requirement,
// a Puppetfile-style range such as ">=1.0.0 <2.0.0". An empty
// requirement is satisfied by anything.
func (m *Metadata) Satisfies(requirement, candidateVersion string) bool {
	bounds := parseRequirement(requirement)
	cv := canonicalize(candidateVersion)
	for _, b := range bounds {
		cmp := semver.Compare(cv, canonicalize(b.version))
		switch b.op {
		case ">=":
			if cmp < 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		case "=", "":
			if cmp != 0 {
				return false
			}
		}
	}
	return true
}

type bound struct{ op, version string }

func parseRequirement(req string) []bound {
	var bounds []bound
	for _, field := range splitFields(req) {
		op, ver := "=", field
		for _, candidate := range []string{">=", "<=", ">", "<", "="} {
			if len(field) > len(candidate) && field[:len(candidate)] == candidate {
				op, ver = candidate, field[len(candidate):]
				break
			}
		}
		if ver != "" {
			bounds = append(bounds, bound{op: op, version: ver})
		}
	}
	return bounds
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

func validateRequirement(req string) error {
	for _, b := range parseRequirement(req) {
		if !semver.IsValid(canonicalize(b.version)) {
			return fmt.Errorf("invalid version bound %q in requirement %q", b.version, req)
		}
	}
	return nil
}

// canonicalize prefixes a bare "1.2.3" version with "v", the form
// golang.org/x/mod/semver requires.
func canonicalize(v string) string {
	if v == "" || v[0] == 'v' {
		return v
	}
	return "v" + v
}
