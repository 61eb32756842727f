package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/extract"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/oplog"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/registry"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/security"
	"github.com/redeyesdontcry/redeyes-go/internal/pkg/pool"
)

type scriptedOracle struct {
	fn func(prompt, system string) string
}

func (o *scriptedOracle) Name() string { return "scripted" }

func (o *scriptedOracle) Query(_ context.Context, prompt, system string) string {
	return o.fn(prompt, system)
}

type fakeExecutor struct {
	mu       sync.Mutex
	commands []string
	fn       func(req domain.ExecRequest) domain.ExecResult
}

func (e *fakeExecutor) Execute(_ context.Context, req domain.ExecRequest) domain.ExecResult {
	e.mu.Lock()
	e.commands = append(e.commands, req.CommandLine())
	e.mu.Unlock()
	if e.fn != nil {
		return e.fn(req)
	}
	return domain.ExecResult{Ok: true, Stdout: "done", ExitCode: 0}
}

func (e *fakeExecutor) executed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.commands...)
}

type fakeConsole struct {
	mu   sync.Mutex
	runs []string
	res  domain.ExecResult
}

func (c *fakeConsole) Handles(command string) bool {
	return strings.HasPrefix(strings.ToLower(command), "use ")
}

func (c *fakeConsole) Run(_ context.Context, command, _ string) domain.ExecResult {
	c.mu.Lock()
	c.runs = append(c.runs, command)
	c.mu.Unlock()
	return c.res
}

type captureReporter struct {
	delivered *domain.CampaignContext
}

func (r *captureReporter) Deliver(_ context.Context, cc *domain.CampaignContext) error {
	r.delivered = cc
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

func newTestService(t *testing.T, oracle *scriptedOracle, executor *fakeExecutor) (*Service, *registry.Registry, *oplog.Log) {
	t.Helper()
	guard, err := security.NewGuardrail(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("guardrail: %v", err)
	}
	reg := registry.New()
	log := oplog.New(nil)
	svc := &Service{
		Oracle:    oracle,
		Executor:  executor,
		Extractor: extract.NewExtractor(),
		Guardrail: guard,
		Registry:  reg,
		Log:       log,
		Logger:    nopLogger{},
		Settings:  domain.AgentSettings{Workers: 2},
	}
	return svc, reg, log
}

func TestRunVisitsAllPhasesOnceDespiteFailures(t *testing.T) {
	oracle := &scriptedOracle{fn: func(prompt, system string) string {
		switch {
		case strings.Contains(system, "OSINT"):
			return "```bash\nwhois example.com\n```"
		case strings.Contains(system, "network enumeration"):
			return "```bash\nnmap -sV 10.0.0.5\n```"
		default:
			return "no actionable commands here"
		}
	}}
	executor := &fakeExecutor{fn: func(domain.ExecRequest) domain.ExecResult {
		return domain.ExecResult{Ok: false, ExitCode: 1, Err: "exit status 1"}
	}}
	svc, reg, log := newTestService(t, oracle, executor)
	reg.Ensure("10.0.0.5")

	cc, err := svc.Run(context.Background(), domain.Campaign{RunID: "r1", Target: "example.com"})
	if err != nil {
		t.Fatalf("campaign must survive failing commands: %v", err)
	}
	if cc == nil {
		t.Fatal("nil campaign context")
	}

	seen := make(map[domain.Phase]int)
	for _, rec := range log.Records() {
		seen[rec.Phase]++
	}
	if seen[domain.PhasePlanning] != 1 {
		t.Fatalf("planning records = %d, want 1", seen[domain.PhasePlanning])
	}
	if seen[domain.PhaseOSINT] == 0 {
		t.Fatal("no OSINT attempt recorded")
	}
	if seen[domain.PhaseEnumeration] == 0 {
		t.Fatal("no enumeration attempt recorded")
	}
	if seen[domain.PhaseReporting] != 1 {
		t.Fatalf("reporting records = %d, want 1", seen[domain.PhaseReporting])
	}
	// Failed commands never derive findings, so the later phases are no-ops.
	if seen[domain.PhaseExploitation] != 0 {
		t.Fatalf("exploitation must be skipped without vulnerabilities, got %d records", seen[domain.PhaseExploitation])
	}
	if cc.Summary.SuccessfulOperations != 0 {
		t.Fatalf("successful operations = %d, want 0", cc.Summary.SuccessfulOperations)
	}
}

func TestOSINTExecutesExtractedCommand(t *testing.T) {
	oracle := &scriptedOracle{fn: func(prompt, system string) string {
		if strings.Contains(system, "OSINT") {
			return "Run subdomain discovery first:\n```bash\n# passive enumeration\nsubfinder -d example.com -silent\n```"
		}
		return "ok"
	}}
	executor := &fakeExecutor{}
	svc, _, log := newTestService(t, oracle, executor)
	svc.Tools = staticTools{"subfinder"}

	if _, err := svc.Run(context.Background(), domain.Campaign{Target: "example.com"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	osint := log.ByPhase(domain.PhaseOSINT)
	if len(osint) != 1 {
		t.Fatalf("OSINT records = %d, want 1: %+v", len(osint), osint)
	}
	if osint[0].Command != "subfinder -d example.com -silent" {
		t.Fatalf("command = %q", osint[0].Command)
	}
	if !osint[0].Succeeded() {
		t.Fatal("executed command must record success")
	}
	if analysis := log.ByPhase(domain.PhaseOSINT.AnalysisTag()); len(analysis) != 1 {
		t.Fatalf("OSINT analysis records = %d, want 1", len(analysis))
	}
}

func TestEnumerationEmptyRegistryIsNoOp(t *testing.T) {
	oracle := &scriptedOracle{fn: func(string, string) string { return "```bash\nnmap -sV 10.0.0.5\n```" }}
	executor := &fakeExecutor{}
	svc, _, log := newTestService(t, oracle, executor)
	svc.workers = pool.New(1)

	svc.runEnumeration(context.Background(), &domain.CampaignContext{})

	if records := log.Records(); len(records) != 0 {
		t.Fatalf("empty registry must produce no enumeration records, got %+v", records)
	}
	if executed := executor.executed(); len(executed) != 0 {
		t.Fatalf("nothing should execute, got %v", executed)
	}
}

func TestEnumerationRecordsPortsAndServices(t *testing.T) {
	oracle := &scriptedOracle{fn: func(string, string) string { return "```bash\nnmap -sV 10.0.0.5\n```" }}
	executor := &fakeExecutor{fn: func(domain.ExecRequest) domain.ExecResult {
		return domain.ExecResult{Ok: true, Stdout: "PORT   STATE SERVICE VERSION\n22/tcp open  ssh     OpenSSH 8.9\n80/tcp open  http    nginx 1.24\n"}
	}}
	svc, reg, _ := newTestService(t, oracle, executor)
	svc.workers = pool.New(1)
	reg.Ensure("10.0.0.5")

	svc.runEnumeration(context.Background(), &domain.CampaignContext{})

	target, _ := reg.Get("10.0.0.5")
	ports := target.OpenPorts()
	if len(ports) != 2 {
		t.Fatalf("open ports = %v, want [22 80]", ports)
	}
	services := target.Services()
	if services[22] != "ssh OpenSSH 8.9" {
		t.Fatalf("service 22 = %q", services[22])
	}
	if services[80] != "http nginx 1.24" {
		t.Fatalf("service 80 = %q", services[80])
	}
}

func TestExploitationMarksTargetOnSessionIndicator(t *testing.T) {
	oracle := &scriptedOracle{fn: func(string, string) string {
		return "use exploit/unix/ftp/vsftpd_234_backdoor"
	}}
	executor := &fakeExecutor{}
	svc, reg, log := newTestService(t, oracle, executor)
	svc.workers = pool.New(1)
	console := &fakeConsole{res: domain.ExecResult{Ok: true, Stdout: "[*] Command shell session 1 opened"}}
	svc.Console = console

	target := reg.Ensure("10.0.0.7")
	target.AddVulnerability("CVE-2011-2523")

	svc.runExploitation(context.Background(), &domain.CampaignContext{})

	if !target.Exploited() {
		t.Fatal("session indicator must latch exploited")
	}
	shells := target.Shells()
	if len(shells) != 1 || shells[0] != "Shell via: use exploit/unix/ftp/vsftpd_234_backdoor" {
		t.Fatalf("shells = %v", shells)
	}
	if len(console.runs) != 1 {
		t.Fatalf("console runs = %v, want one", console.runs)
	}
	if executed := executor.executed(); len(executed) != 0 {
		t.Fatalf("console command must not hit the plain executor: %v", executed)
	}
	records := log.ByPhase(domain.PhaseExploitation)
	if len(records) != 1 || !records[0].Succeeded() {
		t.Fatalf("exploitation records = %+v", records)
	}
}

func TestExploitationBlocksDestructiveCandidate(t *testing.T) {
	oracle := &scriptedOracle{fn: func(string, string) string {
		return "ssh root@10.0.0.7 rm -rf /var/www"
	}}
	executor := &fakeExecutor{}
	svc, reg, log := newTestService(t, oracle, executor)
	svc.workers = pool.New(1)

	target := reg.Ensure("10.0.0.7")
	target.AddVulnerability("weak ssh credentials")

	svc.runExploitation(context.Background(), &domain.CampaignContext{})

	if executed := executor.executed(); len(executed) != 0 {
		t.Fatalf("destructive candidate must never spawn, got %v", executed)
	}
	records := log.ByPhase(domain.PhaseExploitation)
	if len(records) != 1 {
		t.Fatalf("exploitation records = %d, want the blocked attempt", len(records))
	}
	if records[0].Succeeded() || records[0].Error != "destructive pattern blocked" {
		t.Fatalf("blocked record = %+v", records[0])
	}
	if target.Exploited() {
		t.Fatal("blocked candidate must not mark the target exploited")
	}
}

func TestExploitedFlagSurvivesLaterPhases(t *testing.T) {
	oracle := &scriptedOracle{fn: func(string, string) string { return "```bash\ncurl http://10.0.0.7/\n```" }}
	executor := &fakeExecutor{fn: func(domain.ExecRequest) domain.ExecResult {
		return domain.ExecResult{Ok: false, ExitCode: 7, Err: "exit status 7"}
	}}
	svc, reg, _ := newTestService(t, oracle, executor)
	svc.workers = pool.New(1)

	target := reg.Ensure("10.0.0.7")
	target.MarkExploited()

	cc := &domain.CampaignContext{}
	svc.runPostExploitation(context.Background(), cc)
	svc.runReporting(context.Background(), cc)

	if !target.Exploited() {
		t.Fatal("exploited flag must stay latched across phases")
	}
	if cc.Summary.TargetsCompromised != 1 {
		t.Fatalf("compromised count = %d, want 1", cc.Summary.TargetsCompromised)
	}
}

func TestReportingHandsOffSummary(t *testing.T) {
	oracle := &scriptedOracle{fn: func(prompt, system string) string {
		if strings.Contains(system, "final penetration test report") {
			return "Executive summary: limited exposure."
		}
		return "plan text"
	}}
	executor := &fakeExecutor{}
	svc, reg, _ := newTestService(t, oracle, executor)
	reporter := &captureReporter{}
	svc.Reporter = reporter
	reg.Ensure("10.0.0.9")

	cc, err := svc.Run(context.Background(), domain.Campaign{RunID: "r2", Target: "10.0.0.9"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if cc.FinalAnalysis != "Executive summary: limited exposure." {
		t.Fatalf("final analysis = %q", cc.FinalAnalysis)
	}
	if reporter.delivered != cc {
		t.Fatal("reporter must receive the campaign context")
	}
	if cc.Summary.TargetsIdentified != 1 {
		t.Fatalf("targets identified = %d, want 1", cc.Summary.TargetsIdentified)
	}
	if cc.Summary.TotalOperations == 0 {
		t.Fatal("summary must count recorded operations")
	}
}

func TestRunRejectsMissingDependencies(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Run(context.Background(), domain.Campaign{Target: "x"}); err == nil {
		t.Fatal("expected dependency validation error")
	}
}

func TestVulnerabilityOracleFanOutIsBounded(t *testing.T) {
	var active, peak int32
	var mu sync.Mutex
	oracle := &scriptedOracle{fn: func(prompt, system string) string {
		if !strings.Contains(system, "vulnerability assessment") {
			return ""
		}
		cur := atomic.AddInt32(&active, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return ""
	}}
	svc, reg, _ := newTestService(t, oracle, &fakeExecutor{})
	svc.workers = pool.New(svc.workerCount())
	for i := 0; i < 8; i++ {
		reg.Ensure(fmt.Sprintf("10.0.0.%d", i+1)).AddPort(80)
	}

	svc.runVulnerability(context.Background(), &domain.CampaignContext{})

	if peak > int32(svc.workerCount()) {
		t.Fatalf("concurrent oracle queries peaked at %d, want at most %d", peak, svc.workerCount())
	}
	if peak == 0 {
		t.Fatal("vulnerability phase issued no oracle queries")
	}
}

type staticTools []string

func (s staticTools) Tools() map[string]domain.ToolInfo {
	out := make(map[string]domain.ToolInfo, len(s))
	for _, name := range s {
		out[name] = domain.ToolInfo{Available: true, Path: "/usr/bin/" + name}
	}
	return out
}

func (s staticTools) AvailableNames() []string { return append([]string(nil), s...) }
