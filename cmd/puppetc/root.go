package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/puppetlabs/go-puppet/internal/config"
)

// run builds the command tree and executes it against args, returning
// the process exit code rather than calling os.Exit directly so tests
// can exercise it without terminating the test binary.
func run(args []string) int {
	root := newRootCommand()
	root.SetArgs(rewriteShorthand(root, args))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// newRootCommand assembles the puppetc command tree: help (the default,
// cobra's own behavior when no subcommand is given), version, and
// compile. No-args invocation prints usage and exits 0.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "puppetc",
		Short:         "Compile Puppet manifests into a catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newVersionCommand())
	root.AddCommand(newCompileCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the compiler version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Version)
			return nil
		},
	}
}

// rewriteShorthand treats a leading --<name> as shorthand for the
// subcommand <name> when recognized: --version behaves like
// `puppetc version`, --compile like `puppetc compile`. Unrecognized
// --<name> forms are left alone and fall through to cobra's own unknown
// flag handling, which exits non-zero.
func rewriteShorthand(root *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return args
	}
	first := args[0]
	if !strings.HasPrefix(first, "--") {
		return args
	}
	name := strings.TrimPrefix(first, "--")
	for _, c := range root.Commands() {
		if c.Name() == name {
			out := make([]string, 0, len(args))
			out = append(out, name)
			out = append(out, args[1:]...)
			return out
		}
	}
	return args
}
