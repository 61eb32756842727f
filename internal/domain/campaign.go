package domain

import "time"

// Campaign describes one full orchestrator run against a target/scope.
type Campaign struct {
	RunID     string
	Target    string
	Scope     []string
	StartedAt time.Time
}

// CampaignContext is the shared context object handed across phases and,
// finally, to the external reporting collaborator. The orchestrator owns the
// references, not the backing stores.
type CampaignContext struct {
	Campaign Campaign

	// ResultsDir is where command output files and the operations database
	// are written.
	ResultsDir string

	// FinalAnalysis is the oracle's executive summary, filled in by the
	// REPORTING phase.
	FinalAnalysis string

	// Summary is the aggregate snapshot computed at REPORTING time.
	Summary OperationSummary
}

// ToolInfo is one entry of the host framework's advisory tool-availability
// table. It feeds strategy prompts only and is never enforced before
// execution.
type ToolInfo struct {
	Available bool
	Path      string
}
