package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/puppetlabs/go-puppet/internal/catalog"
	"github.com/puppetlabs/go-puppet/internal/config"
	"github.com/puppetlabs/go-puppet/internal/diagnostics"
	"github.com/puppetlabs/go-puppet/internal/evalctx"
	"github.com/puppetlabs/go-puppet/internal/evaluator"
	"github.com/puppetlabs/go-puppet/internal/facts"
	"github.com/puppetlabs/go-puppet/internal/resolver"
	"github.com/puppetlabs/go-puppet/internal/scope"
	"github.com/puppetlabs/go-puppet/internal/settings"
	"github.com/puppetlabs/go-puppet/internal/types"
)

// newCompileCommand wires settings resolution, manifest autoloading,
// evaluation and catalog serialization together into the `compile`
// subcommand.
func newCompileCommand() *cobra.Command {
	var s *settings.Settings
	var outPath string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the site manifest for a node into a JSON catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			s.Resolve()
			return compile(cmd, s, outPath)
		},
	}
	s = settings.Register(cmd.Flags())
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the catalog here instead of stdout")
	return cmd
}

func compile(cmd *cobra.Command, s *settings.Settings, outPath string) error {
	cache := resolver.NewParseCache()

	roots := environmentRoots(s)
	if len(s.ModulePath) == 0 {
		for _, root := range roots {
			s.ModulePath = append(s.ModulePath, filepath.Join(root, config.ModulesDir))
		}
	}
	res := resolver.New(s, cache)

	provider, err := loadFacts(s.Facts)
	if err != nil {
		return fmt.Errorf("loading facts: %w", err)
	}

	manifestPath, err := entryManifestPath(s, roots)
	if err != nil {
		return err
	}
	tree, err := res.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", manifestPath, err)
	}

	nodeName := nodeIdentityFromFacts(provider)
	cat := catalog.New(nodeName)
	root := scope.NewRoot(provider)
	logger := diagnostics.NewLogger(cmd.ErrOrStderr())
	ctx := evalctx.New(root, cat, provider, logger)
	ev := evaluator.New(ctx)
	ev.Loader = res.Resolve

	if _, err := ev.LoadTree(tree); err != nil {
		return fmt.Errorf("evaluating %s: %w", manifestPath, err)
	}
	if _, err := ev.EvalNode(); err != nil {
		return fmt.Errorf("evaluating node %q: %w", nodeName, err)
	}
	if err := cat.Finalize(); err != nil {
		return fmt.Errorf("finalizing catalog: %w", err)
	}

	encoded, err := json.MarshalIndent(cat.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if outPath == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return err
	}
	return os.WriteFile(outPath, append(encoded, '\n'), 0o644)
}

// environmentRoots expands each configured environment_path entry into
// <entry>/<environment name>, the concrete directory a manifest or
// modules/ subdirectory is resolved against.
func environmentRoots(s *settings.Settings) []string {
	roots := make([]string, 0, len(s.EnvironmentPath))
	for _, p := range s.EnvironmentPath {
		roots = append(roots, filepath.Join(p, s.Environment))
	}
	return roots
}

// entryManifestPath resolves the `manifest` setting (a file path
// relative to the environment) to a concrete file, defaulting to
// manifests/site.pp under the first environment root that has one. A
// `manifest` value that names a directory is skipped; the manifests
// inside a directory are not loaded.
func entryManifestPath(s *settings.Settings, roots []string) (string, error) {
	for _, root := range roots {
		if s.Manifest != "" {
			candidate := filepath.Join(root, s.Manifest)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
			continue
		}
		candidate := filepath.Join(root, config.ManifestsDir, "site.pp")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no manifest found under environment root(s) %v", roots)
}

func loadFacts(path string) (facts.Provider, error) {
	if path == "" {
		return facts.NewStatic(nil), nil
	}
	return facts.LoadFile(path)
}

// nodeIdentityFromFacts mirrors the evaluator's own certname lookup
// (certname, then fqdn, then hostname) since the node name on the
// finalized catalog document must agree with the identity node
// selection matched against.
func nodeIdentityFromFacts(p facts.Provider) string {
	for _, name := range []string{"certname", "fqdn", "hostname"} {
		if v, ok := p.Fact(name); ok {
			if s, ok := v.(types.String); ok && s != "" {
				return string(s)
			}
		}
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
