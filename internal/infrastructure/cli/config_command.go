package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCommand creates the config command.
func newConfigCommand(build containerFunc) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect REDEYES configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, build)
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, build)
		},
	})

	return configCmd
}

// showConfiguration prints the effective configuration (file values merged
// with defaults) as YAML.
func showConfiguration(cmd *cobra.Command, build containerFunc) error {
	container, err := build()
	if err != nil {
		return err
	}
	cfg, err := container.ConfigProvider.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
