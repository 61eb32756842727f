// Package config loads the YAML configuration document with embedded
// defaults.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/redeyesdontcry/redeyes-go/assets"
	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/pkg/filesystem"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// FileLoader loads YAML configuration from ~/.redeyes/config.yaml
// (overridable via REDEYES_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is seeded from the
// embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, err
			}
			data = assets.DefaultConfigYAML
		} else {
			return domain.Config{}, err
		}
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("REDEYES_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".redeyes", "config.yaml")
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	agent := &cfg.Agent
	if agent.Workers <= 0 {
		agent.Workers = domain.DefaultWorkers
	}
	if agent.CommandTimeoutSeconds <= 0 {
		agent.CommandTimeoutSeconds = int(domain.DefaultCommandTimeout.Seconds())
	}
	if agent.ExploitTimeoutSeconds <= 0 {
		agent.ExploitTimeoutSeconds = int(domain.DefaultExploitTimeout.Seconds())
	}
	if agent.OracleTimeoutSeconds <= 0 {
		agent.OracleTimeoutSeconds = int(domain.DefaultOracleTimeout.Seconds())
	}
	if agent.MaxOutputKB <= 0 {
		agent.MaxOutputKB = domain.DefaultMaxOutputKB
	}
	if agent.OSINTCommands <= 0 {
		agent.OSINTCommands = 5
	}
	if agent.EnumTargets <= 0 {
		agent.EnumTargets = 3
	}
	if agent.EnumCommandsPerTarget <= 0 {
		agent.EnumCommandsPerTarget = 4
	}
	if agent.VulnCommandsPerTarget <= 0 {
		agent.VulnCommandsPerTarget = 3
	}
	if agent.ExploitsPerTarget <= 0 {
		agent.ExploitsPerTarget = 2
	}
	if agent.PostExCommandsPerHost <= 0 {
		agent.PostExCommandsPerHost = 3
	}
	if agent.ResultsDir == "" {
		agent.ResultsDir = filepath.Join(os.TempDir(), "redeyes")
	}
	if len(cfg.Extractor.KnownTools) == 0 {
		cfg.Extractor.KnownTools = DefaultKnownTools()
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []domain.ModelDefinition{defaultModel()}
	}
	if cfg.Preferences.DefaultModel == "" {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	return cfg
}

func defaultModel() domain.ModelDefinition {
	return domain.ModelDefinition{
		Name:     "local-ollama",
		Provider: "ollama",
		Endpoint: "http://localhost:11434/api/chat",
		ModelID:  "dolphin-mixtral",
	}
}

// DefaultKnownTools is the recon/exploitation tool inventory consulted by
// the extractor and the advisory catalog.
func DefaultKnownTools() []string {
	return []string{
		// network scanning
		"nmap", "masscan", "zmap",
		// web testing
		"nikto", "gobuster", "dirb", "whatweb", "wafw00f", "wpscan", "sqlmap",
		// exploitation
		"msfconsole", "msfvenom", "hydra", "john", "hashcat",
		// network services
		"enum4linux", "smbclient", "nbtscan", "onesixtyone", "snmpwalk",
		// OSINT
		"dnsrecon", "fierce", "theHarvester", "recon-ng", "shodan",
		"amass", "subfinder", "assetfinder", "httprobe", "waybackurls",
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return path
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
