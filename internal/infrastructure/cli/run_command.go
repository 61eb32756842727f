package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRunCommand creates the 'run' command: one full autonomous campaign.
func newRunCommand(build containerFunc) *cobra.Command {
	var (
		scope []string
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "run <target>",
		Short: "Run a full autonomous campaign against a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := build()
			if err != nil {
				return err
			}
			target := args[0]
			if !yes {
				if !confirmEngagement(cmd, target) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			campaign := container.NewCampaign(target, scope)
			fmt.Fprintf(cmd.OutOrStdout(), "Starting campaign %s against %s\n", campaign.RunID, target)
			fmt.Fprintf(cmd.OutOrStdout(), "Results: %s\n\n", container.ResultsDir)

			cc, err := container.AgentService.Run(cmd.Context(), campaign)
			if cc != nil {
				RenderCampaign(cmd.OutOrStdout(), cc)
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&scope, "scope", nil, "Scope entries for the engagement (repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the authorization confirmation prompt")
	return cmd
}

// confirmEngagement requires an explicit acknowledgment that the engagement
// is authorized before any command runs.
func confirmEngagement(cmd *cobra.Command, target string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "Confirm you are authorized to test %s [y/N]: ", target)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}
