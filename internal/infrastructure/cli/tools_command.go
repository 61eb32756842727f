package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// newToolsCommand creates the 'tools' command: the advisory availability
// table consulted when building strategy prompts.
func newToolsCommand(build containerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show recon/exploitation tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := build()
			if err != nil {
				return err
			}
			table := container.AgentService.Tools.Tools()
			names := make([]string, 0, len(table))
			for name := range table {
				names = append(names, name)
			}
			sort.Strings(names)

			available := 0
			for _, name := range names {
				info := table[name]
				if info.Available {
					available++
					fmt.Fprintf(cmd.OutOrStdout(), "  [x] %-14s %s\n", name, info.Path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "  [ ] %s\n", name)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d tools available\n", available, len(names))
			return nil
		},
	}
}
