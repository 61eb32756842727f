// Package tools exposes the host framework's advisory tool-availability
// table. The table only informs strategy prompts; nothing is enforced before
// execution, so the oracle is free to propose a command for an unavailable
// tool, which then fails naturally at the executor.
package tools

import (
	"os/exec"
	"sort"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Catalog implements ports.ToolCatalog over a static table resolved once at
// construction.
type Catalog struct {
	table map[string]domain.ToolInfo
}

// NewCatalog resolves the given tool names against PATH once and freezes the
// result.
func NewCatalog(names []string) *Catalog {
	table := make(map[string]domain.ToolInfo, len(names))
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			table[name] = domain.ToolInfo{Available: true, Path: path}
		} else {
			table[name] = domain.ToolInfo{}
		}
	}
	return &Catalog{table: table}
}

// NewStaticCatalog builds a catalog directly from a prepared table, for
// hosts that manage availability themselves.
func NewStaticCatalog(table map[string]domain.ToolInfo) *Catalog {
	copied := make(map[string]domain.ToolInfo, len(table))
	for name, info := range table {
		copied[name] = info
	}
	return &Catalog{table: copied}
}

// Tools implements ports.ToolCatalog.
func (c *Catalog) Tools() map[string]domain.ToolInfo {
	out := make(map[string]domain.ToolInfo, len(c.table))
	for name, info := range c.table {
		out[name] = info
	}
	return out
}

// AvailableNames returns the names marked available, sorted.
func (c *Catalog) AvailableNames() []string {
	var names []string
	for name, info := range c.table {
		if info.Available {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var _ ports.ToolCatalog = (*Catalog)(nil)
