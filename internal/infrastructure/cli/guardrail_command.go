package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newGuardrailCommand creates the guardrail command.
func newGuardrailCommand(build containerFunc) *cobra.Command {
	guardrailCmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Inspect the command guardrail",
	}

	guardrailCmd.AddCommand(newGuardrailCheckCommand(build))
	return guardrailCmd
}

// newGuardrailCheckCommand evaluates a command string against the loaded
// block patterns without executing anything.
func newGuardrailCheckCommand(build containerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "check <command...>",
		Short: "Evaluate a command string against the block patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := build()
			if err != nil {
				return err
			}
			command := strings.Join(args, " ")
			guard := container.AgentService.Guardrail

			if blocked, pattern := guard.Catastrophic(command); blocked {
				fmt.Fprintf(cmd.OutOrStdout(), "BLOCKED (catastrophic pattern %q)\n", pattern)
				return nil
			}
			if guard.Destructive(command) {
				fmt.Fprintln(cmd.OutOrStdout(), "DESTRUCTIVE (rejected on the exploitation path)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "allowed")
			return nil
		},
	}
}
