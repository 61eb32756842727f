// Package domain defines core entities and value objects for REDEYES.
//
// The domain layer is independent of infrastructure concerns and represents
// pure campaign state: targets, phases, operation records, and execution
// envelopes.
package domain

// Phase identifies one stage of an autonomous campaign.
type Phase string

const (
	PhasePlanning         Phase = "PLANNING"
	PhaseOSINT            Phase = "OSINT"
	PhaseEnumeration      Phase = "ENUMERATION"
	PhaseVulnerability    Phase = "VULNERABILITY"
	PhaseExploitation     Phase = "EXPLOITATION"
	PhasePostExploitation Phase = "POST_EXPLOITATION"
	PhaseReporting        Phase = "REPORTING"
)

// PhaseOrder is the fixed campaign sequence. Phases are visited exactly once,
// in this order; REPORTING is terminal.
var PhaseOrder = []Phase{
	PhasePlanning,
	PhaseOSINT,
	PhaseEnumeration,
	PhaseVulnerability,
	PhaseExploitation,
	PhasePostExploitation,
	PhaseReporting,
}

// AnalysisTag derives the meta-record tag used for the closing AI analysis of
// a phase (e.g. "OSINT_ANALYSIS").
func (p Phase) AnalysisTag() Phase {
	return p + "_ANALYSIS"
}

// Terminal reports whether the phase is the absorbing end state.
func (p Phase) Terminal() bool {
	return p == PhaseReporting
}

// Next returns the phase following p in the campaign sequence. The terminal
// phase returns itself.
func (p Phase) Next() Phase {
	for i, candidate := range PhaseOrder {
		if candidate == p && i+1 < len(PhaseOrder) {
			return PhaseOrder[i+1]
		}
	}
	return PhaseReporting
}
