// Package app wires application services with infrastructure adapters.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/redeyesdontcry/redeyes-go/internal/application/agent"
	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/ai"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/config"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/execsafe"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/extract"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/msf"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/oplog"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/registry"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/report"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/security"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/tools"
	"github.com/redeyesdontcry/redeyes-go/internal/pkg/logger"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Container holds the wired dependency graph for one campaign run.
type Container struct {
	AgentService   *agent.Service
	ConfigProvider ports.ConfigProvider
	Config         domain.Config
	Registry       *registry.Registry
	OpsLog         *oplog.Log
	Store          *oplog.SQLiteStore
	Logger         ports.Logger

	RunID      string
	ResultsDir string
}

// BuildContainer constructs the dependency graph. Each call prepares a fresh
// run with its own identifier and results directory; the operations database
// is shared across runs under the results root.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(verbose || cfg.Preferences.Verbose)

	runID := uuid.NewString()[:8]
	resultsRoot := cfg.Agent.ResultsDir
	resultsDir := filepath.Join(resultsRoot, "run_"+runID)
	cfg.Agent.ResultsDir = resultsDir

	guardrail, err := security.NewGuardrail(cfg.Security.RulesFile)
	if err != nil {
		guardrail, err = security.NewGuardrail("")
		if err != nil {
			return nil, err
		}
	}

	oracle, err := buildOracle(cfg)
	if err != nil {
		return nil, err
	}

	executor := execsafe.NewExecutor(guardrail, "")
	// The database sits at the results root, not in the per-run directory,
	// so the audit trail accumulates across runs and the ops subcommands
	// see history from earlier invocations.
	store := oplog.NewSQLiteStore(resultsRoot, runID)
	opsLog := oplog.New(store)
	reg := registry.New()

	agentService := &agent.Service{
		Oracle:    oracle,
		Executor:  executor,
		Extractor: extract.NewExtractor(extract.WithKnownTools(cfg.Extractor.KnownTools)),
		Guardrail: guardrail,
		Registry:  reg,
		Log:       opsLog,
		Console:   msf.NewConsole(executor, resultsDir, time.Duration(cfg.Agent.ExploitTimeoutSeconds)*time.Second),
		Tools:     tools.NewCatalog(cfg.Extractor.KnownTools),
		Reporter:  report.NewWriter(cfg.Reporting.SummaryFile),
		Logger:    log,
		Settings:  cfg.Agent,
	}

	return &Container{
		AgentService:   agentService,
		ConfigProvider: cfgLoader,
		Config:         cfg,
		Registry:       reg,
		OpsLog:         opsLog,
		Store:          store,
		Logger:         log,
		RunID:          runID,
		ResultsDir:     resultsDir,
	}, nil
}

// NewCampaign seeds a campaign for this run. The primary target is registered
// up front so enumeration has work even when OSINT discovers nothing new.
func (c *Container) NewCampaign(target string, scope []string) domain.Campaign {
	c.Registry.Ensure(target)
	return domain.Campaign{
		RunID:     c.RunID,
		Target:    target,
		Scope:     scope,
		StartedAt: time.Now(),
	}
}

func buildOracle(cfg domain.Config) (ports.Oracle, error) {
	factory := ai.NewFactory()
	for _, model := range cfg.Models {
		if model.Name == cfg.Preferences.DefaultModel {
			return factory.ForModel(model)
		}
	}
	if len(cfg.Models) > 0 {
		return factory.ForModel(cfg.Models[0])
	}
	return nil, fmt.Errorf("no oracle models configured")
}
