// Package ports defines the interfaces between the application core and the
// infrastructure adapters.
//
// Following the Ports and Adapters pattern, the orchestrator depends only on
// these abstractions; concrete implementations (HTTP oracle clients, the
// process executor, the SQLite-backed operations log) live in the
// infrastructure layer.
package ports

import (
	"context"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.redeyes/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Oracle is the external AI strategy service. Query is synchronous and never
// returns a Go error: when the provider fails, the returned text describes
// the failure so the orchestrator always has something to continue with.
type Oracle interface {
	Name() string
	Query(ctx context.Context, prompt, systemPrompt string) string
}

// OracleFactory builds oracle instances from model definitions.
type OracleFactory interface {
	ForModel(domain.ModelDefinition) (Oracle, error)
}

// SafeExecutor runs one OS process under timeout, output truncation, and the
// catastrophic-pattern guardrail. It is the only component that touches the
// process boundary and it never returns a Go error; every failure mode is
// encoded in the envelope.
type SafeExecutor interface {
	Execute(ctx context.Context, req domain.ExecRequest) domain.ExecResult
}

// CommandExtractor turns free-form oracle text into an ordered, deduplicated,
// capped list of candidate command strings. Pure; never executes anything.
type CommandExtractor interface {
	Extract(text string, knownTools []string) []string
	ExtractExploit(text string) []string
}

// Guardrail evaluates command strings against configured block patterns.
type Guardrail interface {
	// Catastrophic reports whether the command matches the hard deny-list
	// that must never reach a process spawn, with the matched pattern.
	Catastrophic(command string) (bool, string)
	// Destructive reports whether the command contains destructive
	// filesystem substrings; applied as defense in depth on the
	// exploitation path.
	Destructive(command string) bool
}

// TargetRegistry is the shared map from target address to accumulated
// findings. Owned by the host framework, referenced by the orchestrator.
type TargetRegistry interface {
	Ensure(addr string) *domain.Target
	Get(addr string) (*domain.Target, bool)
	Addrs() []string
	Len() int
}

// OperationsLog is the append-only audit trail of attempted actions.
type OperationsLog interface {
	Append(record domain.OperationRecord)
	Records() []domain.OperationRecord
	ByPhase(phase domain.Phase) []domain.OperationRecord
	Summary(registry TargetRegistry) domain.OperationSummary
}

// ToolCatalog exposes the host framework's advisory tool-availability table.
// Consumed only when building strategy prompts; never enforced before
// execution.
type ToolCatalog interface {
	Tools() map[string]domain.ToolInfo
	AvailableNames() []string
}

// ExploitConsole is the narrow contract for resource-file-mediated invocation
// of the exploitation console: generate script, invoke non-interactively,
// parse stdout.
type ExploitConsole interface {
	// Handles reports whether the candidate uses console syntax and should
	// run through Run instead of a plain shell.
	Handles(command string) bool
	Run(ctx context.Context, command, target string) domain.ExecResult
}

// Reporter receives the final campaign summary for the out-of-scope report
// generator.
type Reporter interface {
	Deliver(ctx context.Context, campaign *domain.CampaignContext) error
}

// Logger provides structured logging for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
