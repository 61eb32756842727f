package domain

import "time"

// File permission constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration defaults
const (
	// DefaultCommandTimeout bounds one extracted command's wall-clock time
	DefaultCommandTimeout = 300 * time.Second
	// DefaultExploitTimeout bounds one exploitation attempt, which may drive
	// an external console and needs more headroom
	DefaultExploitTimeout = 600 * time.Second
	// DefaultOracleTimeout bounds one AI oracle query
	DefaultOracleTimeout = 120 * time.Second
)

// Fan-out and size limits
const (
	// DefaultWorkers is the fixed worker-pool size for command dispatch
	DefaultWorkers = 5
	// DefaultMaxOutputKB caps captured stdout per command
	DefaultMaxOutputKB = 2048
	// MaxExtractedCommands caps the command extractor's result
	MaxExtractedCommands = 10
	// MaxExploitCommands caps the exploit extractor's result
	MaxExploitCommands = 5
)

// Prompt context caps keep oracle prompt size bounded as findings accumulate.
const (
	PromptMaxPorts    = 10
	PromptMaxServices = 5
	PromptMaxVulns    = 5
	PromptMaxTargets  = 10
)
