package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/redeyesdontcry/redeyes-go/internal/app"
	"github.com/redeyesdontcry/redeyes-go/internal/domain"
)

const (
	defaultOpsLimit       = 20
	defaultOpsSearchLimit = 50
	timestampFormat       = "2006-01-02 15:04:05"
)

// newOpsCommand creates the ops command with all subcommands.
func newOpsCommand(build containerFunc) *cobra.Command {
	opsCmd := &cobra.Command{
		Use:   "ops",
		Short: "Inspect the operations audit trail",
	}

	opsCmd.AddCommand(
		newOpsListCommand(build),
		newOpsSearchCommand(build),
		newOpsExportCommand(build),
		newOpsStatsCommand(build),
	)

	return opsCmd
}

func newOpsListCommand(build containerFunc) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent operation records",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := build()
			if err != nil {
				return err
			}
			return listOperations(cmd.OutOrStdout(), container, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultOpsLimit, "Max records to show")
	return cmd
}

func newOpsSearchCommand(build containerFunc) *cobra.Command {
	var (
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search operations by command or target",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query required")
			}
			container, err := build()
			if err != nil {
				return err
			}
			return listOperations(cmd.OutOrStdout(), container, limit, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search keyword")
	cmd.Flags().IntVar(&limit, "limit", defaultOpsSearchLimit, "Limit search results")
	return cmd
}

func newOpsExportCommand(build containerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the operations trail to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := build()
			if err != nil {
				return err
			}
			if container.Store == nil {
				return fmt.Errorf("operations store unavailable")
			}
			if err := container.Store.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export operations to %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func newOpsStatsCommand(build containerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-phase operation counts and success rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := build()
			if err != nil {
				return err
			}
			return showOperationStats(cmd.OutOrStdout(), container)
		},
	}
}

func listOperations(out io.Writer, container *app.Container, limit int, search string) error {
	if container.Store == nil {
		return fmt.Errorf("operations store unavailable")
	}

	records, err := container.Store.Records(limit, search)
	if err != nil {
		return fmt.Errorf("failed to retrieve operation records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No operations recorded yet.")
		return nil
	}

	for _, rec := range records {
		outcome := "-"
		if rec.Declared() {
			outcome = "fail"
			if rec.Succeeded() {
				outcome = "ok"
			}
		}
		fmt.Fprintf(out, "%s | %-8s | %-20s | %-4s | %s\n",
			rec.Timestamp.Format(timestampFormat),
			firstNonEmpty(rec.RunID, "-"),
			rec.Phase,
			outcome,
			firstNonEmpty(rec.Command, rec.Target, "(meta)"))
	}
	return nil
}

func showOperationStats(out io.Writer, container *app.Container) error {
	if container.Store == nil {
		return fmt.Errorf("operations store unavailable")
	}

	records, err := container.Store.Records(0, "")
	if err != nil {
		return fmt.Errorf("failed to retrieve operations for analysis: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No operations recorded yet.")
		return nil
	}

	executed := 0
	successful := 0
	perPhase := make(map[domain.Phase]int)
	for _, rec := range records {
		perPhase[rec.Phase]++
		if rec.Declared() {
			executed++
			if rec.Succeeded() {
				successful++
			}
		}
	}

	fmt.Fprintf(out, "Records: %d\nExecuted: %d\n", len(records), executed)
	if executed > 0 {
		fmt.Fprintf(out, "Success rate: %.1f%%\n", float64(successful)/float64(executed)*100)
	}
	fmt.Fprintln(out, "Per phase:")
	for _, phase := range domain.PhaseOrder {
		if count := perPhase[phase]; count > 0 {
			fmt.Fprintf(out, "  %s: %d\n", phase, count)
		}
		if count := perPhase[phase.AnalysisTag()]; count > 0 {
			fmt.Fprintf(out, "  %s: %d\n", phase.AnalysisTag(), count)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
