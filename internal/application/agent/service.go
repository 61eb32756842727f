// Package agent implements the autonomous campaign orchestrator: a linear
// state machine that queries the AI oracle for strategy, extracts candidate
// commands, executes them under the safe executor, and accumulates findings
// per target.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/pkg/pool"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Service drives one campaign across all phases. Every per-command and
// per-query failure is recovered locally; only a broken dependency graph is
// fatal to the campaign.
type Service struct {
	Oracle    ports.Oracle
	Executor  ports.SafeExecutor
	Extractor ports.CommandExtractor
	Guardrail ports.Guardrail
	Registry  ports.TargetRegistry
	Log       ports.OperationsLog
	Console   ports.ExploitConsole
	Tools     ports.ToolCatalog
	Reporter  ports.Reporter
	Logger    ports.Logger
	Settings  domain.AgentSettings

	workers *pool.Pool
}

// Run executes the full campaign: PLANNING through REPORTING, each phase
// visited exactly once, in order. The terminal phase is reached even when
// every individual command fails. The returned context carries the final
// summary for the reporting collaborator.
func (s *Service) Run(ctx context.Context, campaign domain.Campaign) (*domain.CampaignContext, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	if campaign.StartedAt.IsZero() {
		campaign.StartedAt = time.Now()
	}
	cc := &domain.CampaignContext{
		Campaign:   campaign,
		ResultsDir: s.Settings.ResultsDir,
	}
	if cc.ResultsDir != "" {
		if err := os.MkdirAll(cc.ResultsDir, domain.DirectoryPermissions); err != nil {
			s.Logger.Warn("results dir unavailable", map[string]interface{}{"dir": cc.ResultsDir, "error": err.Error()})
		}
	}
	s.workers = pool.New(s.workerCount())

	s.Logger.Info("campaign started", map[string]interface{}{
		"run_id": campaign.RunID,
		"target": campaign.Target,
	})

	for _, phase := range domain.PhaseOrder {
		// Cancellation is coarse-grained: the campaign stops only
		// between phases. In-flight commands are bounded by their own
		// timeouts.
		if err := ctx.Err(); err != nil {
			return cc, fmt.Errorf("campaign canceled before %s: %w", phase, err)
		}
		s.runPhase(ctx, phase, cc)
	}
	return cc, nil
}

func (s *Service) runPhase(ctx context.Context, phase domain.Phase, cc *domain.CampaignContext) {
	s.Logger.Info("phase started", map[string]interface{}{"phase": string(phase)})
	switch phase {
	case domain.PhasePlanning:
		s.runPlanning(ctx, cc)
	case domain.PhaseOSINT:
		s.runOSINT(ctx, cc)
	case domain.PhaseEnumeration:
		s.runEnumeration(ctx, cc)
	case domain.PhaseVulnerability:
		s.runVulnerability(ctx, cc)
	case domain.PhaseExploitation:
		s.runExploitation(ctx, cc)
	case domain.PhasePostExploitation:
		s.runPostExploitation(ctx, cc)
	case domain.PhaseReporting:
		s.runReporting(ctx, cc)
	}
}

func (s *Service) validate() error {
	if s.Oracle == nil || s.Executor == nil || s.Extractor == nil || s.Guardrail == nil ||
		s.Registry == nil || s.Log == nil || s.Logger == nil {
		return errors.New("agent.Service dependencies not satisfied")
	}
	return nil
}

// queryOracle runs one bounded oracle query. Failures never propagate: the
// oracle contract returns error-describing text instead.
func (s *Service) queryOracle(ctx context.Context, prompt, systemPrompt string) string {
	timeout := time.Duration(s.Settings.OracleTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = domain.DefaultOracleTimeout
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply := s.Oracle.Query(queryCtx, prompt, systemPrompt)
	if isOracleError(reply) {
		s.Logger.Warn("oracle query degraded", map[string]interface{}{"reply": truncate(reply, 120)})
	}
	return reply
}

func isOracleError(reply string) bool {
	return len(reply) >= 9 && reply[:9] == "AI Error:"
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
