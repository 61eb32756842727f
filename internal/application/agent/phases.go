package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/pkg/pool"
)

// sessionIndicators are the output keywords taken as a best-effort signal
// that access was gained during exploitation. The scan is deliberately
// non-authoritative: a keyword match is not proof of a session, only the
// strongest signal available from captured output.
var sessionIndicators = []string{
	"session opened",
	"shell",
	"meterpreter",
	"command shell",
	"success",
}

func indicatesSession(output string) bool {
	low := strings.ToLower(output)
	for _, indicator := range sessionIndicators {
		if strings.Contains(low, indicator) {
			return true
		}
	}
	return false
}

// portLineRe matches nmap-style open-port lines, e.g.
// "22/tcp   open  ssh     OpenSSH 8.9".
var portLineRe = regexp.MustCompile(`(?m)^\s*(\d{1,5})/(?:tcp|udp)\s+open\s+(\S+)(?:\s+(.+?))?\s*$`)

// vulnRe matches CVE identifiers anywhere in scanner output.
var vulnRe = regexp.MustCompile(`CVE-\d{4}-\d{4,7}`)

// outputSink accumulates command outputs produced concurrently within one
// phase, for the closing analysis query.
type outputSink struct {
	mu      sync.Mutex
	entries []string
}

func (o *outputSink) add(command string, res domain.ExecResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, fmt.Sprintf("$ %s\n%s", command, truncate(res.Stdout, 1000)))
}

func (o *outputSink) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.entries...)
}

func (s *Service) runPlanning(ctx context.Context, cc *domain.CampaignContext) {
	plan := s.queryOracle(ctx, planningPrompt(cc.Campaign), planningSystem)
	s.Log.Append(domain.OperationRecord{
		Phase:     domain.PhasePlanning,
		Target:    cc.Campaign.Target,
		Timestamp: time.Now(),
		AIPlan:    plan,
	})
}

func (s *Service) runOSINT(ctx context.Context, cc *domain.CampaignContext) {
	strategy := s.queryOracle(ctx, osintPrompt(cc.Campaign.Target, s.availableTools()), osintSystem)
	candidates := s.Extractor.Extract(strategy, s.availableTools())

	sink := &outputSink{}
	for _, command := range prefix(candidates, s.osintCommands()) {
		s.executeCandidate(ctx, cc, domain.PhaseOSINT, command, cc.Campaign.Target, s.commandTimeout(), sink)
	}
	s.analyze(ctx, domain.PhaseOSINT, sink)
}

func (s *Service) runEnumeration(ctx context.Context, cc *domain.CampaignContext) {
	if s.Registry.Len() == 0 {
		s.Logger.Warn("no targets identified, skipping enumeration", nil)
		return
	}

	sink := &outputSink{}
	var wg sync.WaitGroup
	for _, addr := range prefix(s.Registry.Addrs(), s.enumTargets()) {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			strategy := s.queryOracle(ctx, enumerationPrompt(addr), enumerationSystem)
			candidates := s.Extractor.Extract(strategy, s.availableTools())
			for _, command := range prefix(candidates, s.enumCommandsPerTarget()) {
				res := s.executeCandidate(ctx, cc, domain.PhaseEnumeration, command, addr, s.commandTimeout(), sink)
				s.recordPorts(addr, res)
			}
		}(addr)
	}
	wg.Wait()
	s.analyze(ctx, domain.PhaseEnumeration, sink)
}

func (s *Service) runVulnerability(ctx context.Context, cc *domain.CampaignContext) {
	var scoped []string
	for _, addr := range s.Registry.Addrs() {
		if target, ok := s.Registry.Get(addr); ok && len(target.OpenPorts()) > 0 {
			scoped = append(scoped, addr)
		}
	}
	if len(scoped) == 0 {
		s.Logger.Warn("no targets with open ports, skipping vulnerability assessment", nil)
		return
	}

	sink := &outputSink{}
	// Per-target work goes through its own pool: the scoped target count is
	// unbounded, and each entry starts with an oracle query, so raw fan-out
	// would hit the oracle with one query per known target at once. Command
	// dispatch below stays on s.workers, which keeps the two pools from
	// deadlocking on shared slots.
	targets := pool.New(s.workerCount())
	for _, addr := range scoped {
		if err := targets.Submit(ctx, func() {
			target, _ := s.Registry.Get(addr)
			strategy := s.queryOracle(ctx, vulnerabilityPrompt(target), vulnerabilitySystem)
			candidates := s.Extractor.Extract(strategy, s.availableTools())
			for _, command := range prefix(candidates, s.vulnCommandsPerTarget()) {
				res := s.executeCandidate(ctx, cc, domain.PhaseVulnerability, command, addr, s.commandTimeout(), sink)
				s.recordVulnerabilities(target, res)
			}
		}); err != nil {
			break
		}
	}
	targets.Wait()
	s.analyze(ctx, domain.PhaseVulnerability, sink)
}

func (s *Service) runExploitation(ctx context.Context, cc *domain.CampaignContext) {
	var scoped []string
	for _, addr := range s.Registry.Addrs() {
		if target, ok := s.Registry.Get(addr); ok && len(target.Vulnerabilities()) > 0 {
			scoped = append(scoped, addr)
		}
	}
	if len(scoped) == 0 {
		s.Logger.Warn("no clear vulnerabilities identified for exploitation", nil)
		return
	}

	sink := &outputSink{}
	for _, addr := range scoped {
		target, _ := s.Registry.Get(addr)
		strategy := s.queryOracle(ctx, exploitationPrompt(target), exploitationSystem)
		candidates := s.Extractor.ExtractExploit(strategy)
		for _, command := range prefix(candidates, s.exploitsPerTarget()) {
			s.attemptExploit(ctx, cc, command, addr, target, sink)
		}
	}
	s.analyze(ctx, domain.PhaseExploitation, sink)
}

// attemptExploit runs one exploitation candidate through the stricter path:
// the destructive-pattern filter is re-applied before dispatch, console-syntax
// candidates are routed through the exploit console, and captured output is
// scanned for session indicators on success. This is the only call site that
// mutates a target's exploited flag or shell list.
func (s *Service) attemptExploit(ctx context.Context, cc *domain.CampaignContext, command, addr string, target *domain.Target, sink *outputSink) {
	if s.Guardrail.Destructive(command) {
		s.Logger.Warn("destructive exploit candidate blocked", map[string]interface{}{
			"command": truncate(command, 80),
			"target":  addr,
		})
		success := false
		s.Log.Append(domain.OperationRecord{
			Phase:     domain.PhaseExploitation,
			Command:   command,
			Target:    addr,
			Timestamp: time.Now(),
			Success:   &success,
			Error:     "destructive pattern blocked",
		})
		return
	}

	var res domain.ExecResult
	err := s.workers.Run(ctx, func() {
		if s.Console != nil && s.Console.Handles(command) {
			res = s.Console.Run(ctx, command, addr)
		} else {
			res = s.Executor.Execute(ctx, domain.ExecRequest{
				Command:        command,
				Dir:            cc.ResultsDir,
				Timeout:        s.exploitTimeout(),
				MaxOutputBytes: s.maxOutputBytes(),
				OutputPath:     s.outputPath(cc, domain.PhaseExploitation),
			})
		}
	})
	if err != nil {
		return
	}

	if res.Ok && indicatesSession(res.Stdout+res.Stderr) {
		target.MarkExploited()
		target.AddShell("Shell via: " + command)
		s.Logger.Info("exploitation success", map[string]interface{}{"target": addr})
	}

	sink.add(command, res)
	s.Log.Append(record(domain.PhaseExploitation, command, addr, res))
}

func (s *Service) runPostExploitation(ctx context.Context, cc *domain.CampaignContext) {
	var compromised []string
	for _, addr := range s.Registry.Addrs() {
		if target, ok := s.Registry.Get(addr); ok && target.Exploited() {
			compromised = append(compromised, addr)
		}
	}
	if len(compromised) == 0 {
		s.Logger.Warn("no targets compromised, skipping post-exploitation", nil)
		return
	}

	sink := &outputSink{}
	for _, addr := range compromised {
		strategy := s.queryOracle(ctx, postExploitationPrompt(addr), postExploitationSystem)
		candidates := s.Extractor.Extract(strategy, s.availableTools())
		for _, command := range prefix(candidates, s.postExCommandsPerHost()) {
			s.executeCandidate(ctx, cc, domain.PhasePostExploitation, command, addr, s.commandTimeout(), sink)
		}
	}
	s.analyze(ctx, domain.PhasePostExploitation, sink)
}

func (s *Service) runReporting(ctx context.Context, cc *domain.CampaignContext) {
	summary := s.Log.Summary(s.Registry)
	cc.Summary = summary

	cc.FinalAnalysis = s.queryOracle(ctx, reportingPrompt(summary), reportingSystem)
	s.Log.Append(domain.OperationRecord{
		Phase:     domain.PhaseReporting,
		Timestamp: time.Now(),
		AIPlan:    cc.FinalAnalysis,
	})
	// Summary changed by appending the reporting record itself; recompute so
	// the handoff reflects the complete log.
	cc.Summary = s.Log.Summary(s.Registry)

	if s.Reporter != nil {
		if err := s.Reporter.Deliver(ctx, cc); err != nil {
			s.Logger.Error("report handoff failed", err, nil)
		}
	}

	s.Logger.Info("campaign complete", map[string]interface{}{
		"targets":         cc.Summary.TargetsIdentified,
		"vulnerabilities": cc.Summary.TotalVulnerabilities,
		"compromised":     cc.Summary.TargetsCompromised,
		"operations":      cc.Summary.TotalOperations,
	})
}

// executeCandidate dispatches one extracted command through the worker pool
// and appends its operation record. Same-target candidates stay sequential
// because the caller invokes this in order and Run blocks inside a pool slot.
func (s *Service) executeCandidate(ctx context.Context, cc *domain.CampaignContext, phase domain.Phase, command, addr string, timeout time.Duration, sink *outputSink) domain.ExecResult {
	var res domain.ExecResult
	err := s.workers.Run(ctx, func() {
		res = s.Executor.Execute(ctx, domain.ExecRequest{
			Command:        command,
			Dir:            cc.ResultsDir,
			Timeout:        timeout,
			MaxOutputBytes: s.maxOutputBytes(),
			OutputPath:     s.outputPath(cc, phase),
		})
	})
	if err != nil {
		return domain.ExecResult{Ok: false, Err: err.Error()}
	}

	if !res.Ok {
		s.Logger.Warn("command failed", map[string]interface{}{
			"phase":   string(phase),
			"command": truncate(command, 80),
			"error":   res.Err,
		})
	}
	sink.add(command, res)
	s.Log.Append(record(phase, command, addr, res))
	return res
}

// analyze runs the closing AI analysis for a phase and appends it as a
// meta-record under the derived analysis tag. Phases that produced no
// operation records skip the query entirely.
func (s *Service) analyze(ctx context.Context, phase domain.Phase, sink *outputSink) {
	records := s.Log.ByPhase(phase)
	if len(records) == 0 {
		return
	}

	successes := 0
	for _, rec := range records {
		if rec.Succeeded() {
			successes++
		}
	}

	analysis := s.queryOracle(ctx,
		analysisPrompt(phase, len(records), successes, s.Registry.Addrs(), s.totalVulnerabilities(), sink.snapshot()),
		analysisSystem(phase))
	s.Log.Append(domain.OperationRecord{
		Phase:     phase.AnalysisTag(),
		Timestamp: time.Now(),
		AIPlan:    analysis,
	})
}

func (s *Service) recordPorts(addr string, res domain.ExecResult) {
	if !res.Ok {
		return
	}
	target := s.Registry.Ensure(addr)
	for _, match := range portLineRe.FindAllStringSubmatch(res.Stdout, -1) {
		port, err := strconv.Atoi(match[1])
		if err != nil || port < 1 || port > 65535 {
			continue
		}
		target.AddPort(port)
		descriptor := match[2]
		if match[3] != "" {
			descriptor += " " + match[3]
		}
		target.SetService(port, descriptor)
	}
}

func (s *Service) recordVulnerabilities(target *domain.Target, res domain.ExecResult) {
	if !res.Ok {
		return
	}
	for _, cve := range vulnRe.FindAllString(res.Stdout, -1) {
		target.AddVulnerability(cve)
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.Contains(strings.ToUpper(line), "VULNERABLE") {
			target.AddVulnerability(strings.TrimSpace(line))
		}
	}
}

func (s *Service) totalVulnerabilities() int {
	total := 0
	for _, addr := range s.Registry.Addrs() {
		if target, ok := s.Registry.Get(addr); ok {
			total += len(target.Vulnerabilities())
		}
	}
	return total
}

func (s *Service) availableTools() []string {
	if s.Tools == nil {
		return nil
	}
	return s.Tools.AvailableNames()
}

// outputPath names the per-command output file under the results directory,
// e.g. enumeration_1724932801123456789.txt. Empty when no results directory
// is configured.
func (s *Service) outputPath(cc *domain.CampaignContext, phase domain.Phase) string {
	if cc.ResultsDir == "" {
		return ""
	}
	name := fmt.Sprintf("%s_%d.txt", strings.ToLower(string(phase)), time.Now().UnixNano())
	return filepath.Join(cc.ResultsDir, name)
}

func record(phase domain.Phase, command, addr string, res domain.ExecResult) domain.OperationRecord {
	success := res.Ok
	return domain.OperationRecord{
		Phase:       phase,
		Command:     command,
		Target:      addr,
		Timestamp:   time.Now(),
		Duration:    res.Duration,
		Success:     &success,
		OutputBytes: len(res.Stdout),
		Error:       res.Err,
	}
}

func prefix(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func (s *Service) commandTimeout() time.Duration {
	if s.Settings.CommandTimeoutSeconds > 0 {
		return time.Duration(s.Settings.CommandTimeoutSeconds) * time.Second
	}
	return domain.DefaultCommandTimeout
}

func (s *Service) exploitTimeout() time.Duration {
	if s.Settings.ExploitTimeoutSeconds > 0 {
		return time.Duration(s.Settings.ExploitTimeoutSeconds) * time.Second
	}
	return domain.DefaultExploitTimeout
}

func (s *Service) maxOutputBytes() int {
	if s.Settings.MaxOutputKB > 0 {
		return s.Settings.MaxOutputKB * 1024
	}
	return domain.DefaultMaxOutputKB * 1024
}

func (s *Service) workerCount() int           { return orDefault(s.Settings.Workers, domain.DefaultWorkers) }
func (s *Service) osintCommands() int         { return orDefault(s.Settings.OSINTCommands, 5) }
func (s *Service) enumTargets() int           { return orDefault(s.Settings.EnumTargets, 3) }
func (s *Service) enumCommandsPerTarget() int { return orDefault(s.Settings.EnumCommandsPerTarget, 4) }
func (s *Service) vulnCommandsPerTarget() int { return orDefault(s.Settings.VulnCommandsPerTarget, 3) }
func (s *Service) exploitsPerTarget() int     { return orDefault(s.Settings.ExploitsPerTarget, 2) }
func (s *Service) postExCommandsPerHost() int { return orDefault(s.Settings.PostExCommandsPerHost, 3) }

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
