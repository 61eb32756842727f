// Package msf drives the Metasploit console through its resource-file
// protocol: write a script of console directives, invoke msfconsole
// non-interactively against it, and scan its stdout. The orchestrator treats
// this as an external collaborator with exactly that narrow contract.
package msf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Console implements ports.ExploitConsole.
type Console struct {
	executor ports.SafeExecutor
	workDir  string
	timeout  time.Duration
	lhost    string
}

// NewConsole builds a console collaborator writing resource files under
// workDir.
func NewConsole(executor ports.SafeExecutor, workDir string, timeout time.Duration) *Console {
	if timeout <= 0 {
		timeout = domain.DefaultExploitTimeout
	}
	return &Console{
		executor: executor,
		workDir:  workDir,
		timeout:  timeout,
		lhost:    "0.0.0.0",
	}
}

// Run implements ports.ExploitConsole: generate the resource file, invoke
// msfconsole against it, return the executor's envelope.
func (c *Console) Run(ctx context.Context, command, target string) domain.ExecResult {
	path, err := c.writeResource(command, target)
	if err != nil {
		return domain.ExecResult{Ok: false, Err: fmt.Sprintf("write resource file: %v", err)}
	}

	return c.executor.Execute(ctx, domain.ExecRequest{
		Argv:    []string{"msfconsole", "-r", path, "-q"},
		Dir:     c.workDir,
		Timeout: c.timeout,
	})
}

func (c *Console) writeResource(command, target string) (string, error) {
	if err := os.MkdirAll(c.workDir, domain.DirectoryPermissions); err != nil {
		return "", err
	}
	path := filepath.Join(c.workDir, fmt.Sprintf("msf_resource_%d.rc", time.Now().UnixNano()))

	var script strings.Builder
	script.WriteString(command + "\n")
	if strings.Contains(command, "use ") {
		script.WriteString("set RHOSTS " + target + "\n")
		script.WriteString("set LHOST " + c.lhost + "\n")
		script.WriteString("check\n")
		script.WriteString("exploit -j\n")
	}
	script.WriteString("exit\n")

	if err := os.WriteFile(path, []byte(script.String()), domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return path, nil
}

// Handles reports whether a candidate should run through the console rather
// than a plain shell.
func (c *Console) Handles(command string) bool {
	low := strings.ToLower(command)
	return strings.HasPrefix(low, "use ") || strings.Contains(low, "metasploit")
}

var _ ports.ExploitConsole = (*Console)(nil)
