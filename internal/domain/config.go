package domain

// Config is the root configuration document loaded from
// ~/.redeyes/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Agent               AgentSettings     `yaml:"agent"`
	Security            SecuritySettings  `yaml:"security"`
	Extractor           ExtractorSettings `yaml:"extractor"`
	Reporting           ReportingSettings `yaml:"reporting"`
	Models              []ModelDefinition `yaml:"models"`
	Preferences         Preferences       `yaml:"preferences"`
}

// AgentSettings bounds the autonomous orchestrator.
type AgentSettings struct {
	Workers               int    `yaml:"workers"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
	ExploitTimeoutSeconds int    `yaml:"exploit_timeout_seconds"`
	OracleTimeoutSeconds  int    `yaml:"oracle_timeout_seconds"`
	MaxOutputKB           int    `yaml:"max_output_kb"`
	OSINTCommands         int    `yaml:"osint_commands"`
	EnumTargets           int    `yaml:"enum_targets"`
	EnumCommandsPerTarget int    `yaml:"enum_commands_per_target"`
	VulnCommandsPerTarget int    `yaml:"vuln_commands_per_target"`
	ExploitsPerTarget     int    `yaml:"exploits_per_target"`
	PostExCommandsPerHost int    `yaml:"postex_commands_per_host"`
	ResultsDir            string `yaml:"results_dir"`
}

// SecuritySettings configures the guardrail. The guardrail itself is always
// active; only its rules source is configurable.
type SecuritySettings struct {
	RulesFile string `yaml:"rules_file"`
}

// ExtractorSettings configures command extraction from oracle text.
type ExtractorSettings struct {
	KnownTools []string `yaml:"known_tools"`
}

// ReportingSettings configures the summary handoff.
type ReportingSettings struct {
	SummaryFile string `yaml:"summary_file"`
}

// ModelDefinition describes an AI oracle endpoint declared in the config
// file, with its authentication and generation parameters.
type ModelDefinition struct {
	Name       string `yaml:"name"`
	Provider   string `yaml:"provider"` // ollama, openai, anthropic
	Endpoint   string `yaml:"endpoint"`
	AuthEnvVar string `yaml:"auth_env_var"`
	ModelID    string `yaml:"model_id"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// Preferences carries cross-cutting user preferences.
type Preferences struct {
	DefaultModel string `yaml:"default_model"`
	Verbose      bool   `yaml:"verbose"`
}
