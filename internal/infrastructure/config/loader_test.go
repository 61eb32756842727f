package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedsDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Agent.Workers != 5 {
		t.Fatalf("expected 5 workers, got %d", cfg.Agent.Workers)
	}
	if len(cfg.Models) == 0 {
		t.Fatal("default models missing")
	}
	if len(cfg.Extractor.KnownTools) == 0 {
		t.Fatal("known tools not hydrated")
	}
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "agent:\n  workers: 2\n  osint_commands: 1\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Agent.Workers != 2 {
		t.Fatalf("explicit value overridden: %d", cfg.Agent.Workers)
	}
	if cfg.Agent.OSINTCommands != 1 {
		t.Fatalf("explicit value overridden: %d", cfg.Agent.OSINTCommands)
	}
	if cfg.Agent.EnumTargets != 3 {
		t.Fatalf("missing value not hydrated: %d", cfg.Agent.EnumTargets)
	}
	if cfg.Preferences.DefaultModel == "" {
		t.Fatal("default model not hydrated")
	}
}

func TestLoadToleratesRetiredKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	// Keys from older config revisions must not break loading.
	legacy := "security:\n  enabled: true\n  rules_file: /tmp/guardrail.yaml\n"
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Security.RulesFile != "/tmp/guardrail.yaml" {
		t.Fatalf("rules_file lost: %q", cfg.Security.RulesFile)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("agent: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
