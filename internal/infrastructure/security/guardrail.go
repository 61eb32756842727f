// Package security implements the command guardrail: a catastrophic-pattern
// deny-list checked before any process spawn, and a destructive-pattern
// filter applied as defense in depth on the exploitation path.
package security

import (
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

// Guardrail implements the ports.Guardrail port. Matching is lowercase
// substring containment: the block list is a blunt instrument on purpose,
// since the commands it screens come from free-form AI text.
type Guardrail struct {
	catastrophic []string
	destructive  []string
}

// RulesFile is the YAML schema root for externalized block patterns.
type RulesFile struct {
	Rules struct {
		CatastrophicPatterns []string `yaml:"catastrophic_patterns"`
		DestructivePatterns  []string `yaml:"destructive_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads block patterns from disk, falling back to the built-in
// defaults when the file is missing or empty.
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	g := &Guardrail{}
	for _, pat := range rules.Rules.CatastrophicPatterns {
		g.catastrophic = append(g.catastrophic, strings.ToLower(pat))
	}
	for _, pat := range rules.Rules.DestructivePatterns {
		g.destructive = append(g.destructive, strings.ToLower(pat))
	}
	return g, nil
}

// Catastrophic implements ports.Guardrail.
func (g *Guardrail) Catastrophic(command string) (bool, string) {
	low := strings.ToLower(command)
	for _, pat := range g.catastrophic {
		if strings.Contains(low, pat) {
			return true, pat
		}
	}
	return false, ""
}

// Destructive implements ports.Guardrail.
func (g *Guardrail) Destructive(command string) bool {
	low := strings.ToLower(command)
	for _, pat := range g.destructive {
		if strings.Contains(low, pat) {
			return true
		}
	}
	return false
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	path = expandPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			rules.Rules.CatastrophicPatterns = DefaultCatastrophicPatterns()
			rules.Rules.DestructivePatterns = DefaultDestructivePatterns()
			return rules, nil
		}
		// seed a missing rules file from the embedded defaults
		data = assets.DefaultGuardrailYAML
		if mkErr := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); mkErr == nil {
			_ = os.WriteFile(path, data, domain.SecureFilePermissions)
		}
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	if len(rules.Rules.CatastrophicPatterns) == 0 {
		rules.Rules.CatastrophicPatterns = DefaultCatastrophicPatterns()
	}
	if len(rules.Rules.DestructivePatterns) == 0 {
		rules.Rules.DestructivePatterns = DefaultDestructivePatterns()
	}
	return rules, nil
}

// DefaultCatastrophicPatterns is the hard deny-list: recursive root deletion,
// filesystem formatting, fork bombs, raw-device writes.
func DefaultCatastrophicPatterns() []string {
	return []string{
		"rm -rf /",
		"mkfs",
		":(){:|:&};:",
		"dd if=/dev/zero",
		"> /dev/sd",
		"shred /",
	}
}

// DefaultDestructivePatterns is the broader filter re-applied before exploit
// candidates run.
func DefaultDestructivePatterns() []string {
	return []string{
		"rm -rf",
		"format",
		"delete",
		"destroy",
	}
}

func expandPath(path string) string {
	if path == "" {
		return filepath.Join(filesystem.UserHomeDir(), ".redeyes", "guardrail.yaml")
	}
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return path
}

var _ ports.Guardrail = (*Guardrail)(nil)
