package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/redeyesdontcry/redeyes-go/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// containerFunc builds (once) and returns the wired dependency graph.
// Commands that touch no infrastructure never call it, so help and version
// output leave no results directory or database behind.
type containerFunc func() (*app.Container, error)

// NewRootCmd wires the cobra root command. The container is constructed
// lazily by the first subcommand that needs it.
func NewRootCmd(ctx context.Context, opts Options) *cobra.Command {
	var (
		once      sync.Once
		container *app.Container
		buildErr  error
	)
	build := func() (*app.Container, error) {
		once.Do(func() {
			container, buildErr = app.BuildContainer(ctx, opts.Verbose)
		})
		return container, buildErr
	}

	root := &cobra.Command{
		Use:   "redeyes",
		Short: "REDEYES - autonomous penetration testing campaigns",
		Long:  "REDEYES runs AI-driven, multi-phase penetration testing campaigns with safety-gated command execution.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(build))
	root.AddCommand(newOpsCommand(build))
	root.AddCommand(newToolsCommand(build))
	root.AddCommand(newConfigCommand(build))
	root.AddCommand(newGuardrailCommand(build))
	root.AddCommand(newVersionCommand())
	return root
}
