package domain

import "time"

// OperationRecord is one immutable audit entry describing an attempted action
// and its outcome. Records are append-only; ordering by timestamp defines the
// audit trail.
type OperationRecord struct {
	RunID       string        `json:"run_id,omitempty"`
	Phase       Phase         `json:"phase"`
	Command     string        `json:"command,omitempty"`
	Target      string        `json:"target,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Duration    time.Duration `json:"duration,omitempty"`
	Success     *bool         `json:"success,omitempty"`
	OutputBytes int           `json:"output_bytes,omitempty"`
	Error       string        `json:"error,omitempty"`

	// AIPlan holds the free-text plan/analysis payload for planning and
	// analysis meta-records.
	AIPlan string `json:"ai_plan,omitempty"`
}

// Succeeded reports whether the record declares a successful outcome.
// Records that never declare success (plans, analyses) report false.
func (r OperationRecord) Succeeded() bool {
	return r.Success != nil && *r.Success
}

// Declared reports whether the record declares any success outcome at all.
func (r OperationRecord) Declared() bool {
	return r.Success != nil
}

// OperationSummary aggregates campaign statistics. It is always derived by
// scanning the live log and registry, never cached.
type OperationSummary struct {
	TotalOperations      int      `json:"total_operations"`
	SuccessfulOperations int      `json:"successful_operations"`
	PhasesSeen           []Phase  `json:"phases_seen"`
	TargetsIdentified    int      `json:"targets_identified"`
	TargetsCompromised   int      `json:"targets_compromised"`
	TotalVulnerabilities int      `json:"total_vulnerabilities"`
	TotalOutputBytes     int64    `json:"total_output_bytes"`
	CompromisedAddrs     []string `json:"compromised_addrs,omitempty"`
}
