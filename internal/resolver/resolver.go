// Package resolver locates and parses manifests on demand: given a
// qualified class, defined-type, or function name, it searches the
// settings-configured module path (then the base module path) for the
// module that should declare it, resolves that to a concrete .pp file,
// and parses it through a shared ParseCache so the same file is never
// lexed twice in one compile. This is the autoloading half of Puppet's
// compiler; internal/evaluator owns what happens once a tree is found.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/puppetlabs/go-puppet/internal/ast"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/modules"
	"github.com/puppetlabs/go-puppet/internal/parser"
	"github.com/puppetlabs/go-puppet/internal/settings"
)

// Resolver locates manifests across a module search path and parses
// them through a shared cache.
type Resolver struct {
	searchPath []string // module roots, most specific first
	cache      *ParseCache

	mu      sync.Mutex
	modules map[string]*modules.Module
}

// New builds a Resolver from resolved settings: ModulePath entries are
// searched before BaseModulePath entries, matching real Puppet's
// precedence between an environment's own modules and shared ones.
func New(s *settings.Settings, cache *ParseCache) *Resolver {
	path := append(append([]string{}, s.ModulePath...), s.BaseModulePath...)
	return &Resolver{
		searchPath: path,
		cache:      cache,
		modules:    make(map[string]*modules.Module),
	}
}

// FindModule locates a module by name, searching the configured module
// roots in order and caching the result for later lookups.
func (r *Resolver) FindModule(name string) (*modules.Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.modules[name]; ok {
		return m, true
	}
	for _, root := range r.searchPath {
		candidate := filepath.Join(root, name)
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			continue
		}
		m := &modules.Module{Name: name, Path: candidate}
		r.modules[name] = m
		return m, true
	}
	return nil, false
}

// ManifestPath resolves a qualified class/defined-type/function name
// (e.g. "apache::config", or a bare "apache" for its init.pp) to the
// manifest file that should declare it, without checking the file
// exists.
func (r *Resolver) ManifestPath(qualifiedName string) (string, error) {
	moduleName, rest := splitModuleName(qualifiedName)
	m, ok := r.FindModule(moduleName)
	if !ok {
		return "", fmt.Errorf("resolver: no module %q on the module path", moduleName)
	}
	return m.ManifestFor(rest), nil
}

func splitModuleName(qualifiedName string) (moduleName, rest string) {
	idx := strings.Index(qualifiedName, "::")
	if idx < 0 {
		return qualifiedName, ""
	}
	return qualifiedName[:idx], qualifiedName[idx+2:]
}

// Resolve parses the manifest that should declare qualifiedName,
// reusing a cached tree if this compile already parsed it once.
func (r *Resolver) Resolve(qualifiedName string) (*ast.Tree, error) {
	path, err := r.ManifestPath(qualifiedName)
	if err != nil {
		return nil, err
	}
	return r.Load(path)
}

// Load parses path directly, bypassing name-to-file resolution; used
// for the entry-point manifest named by settings.Manifest.
func (r *Resolver) Load(path string) (*ast.Tree, error) {
	if r.cache != nil {
		if tree, ok := r.cache.Get(path); ok {
			return tree, nil
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	reporter := diagnostics.NewReporter()
	tree, err := parser.Parse(path, string(source), reporter)
	if r.cache != nil {
		r.cache.Store(path, tree, err == nil)
	}
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ManifestsUnder lists every recognized manifest file directly within
// dir (non-recursive), sorted by name, for loading an environment's or
// a module's manifests/ directory wholesale.
func ManifestsUnder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".pp") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
