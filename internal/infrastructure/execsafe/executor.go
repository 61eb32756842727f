// Package execsafe runs extracted commands as OS processes under a hard
// timeout, output truncation, and the catastrophic-pattern guardrail. It is
// the only package that crosses the process boundary.
package execsafe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Executor implements ports.SafeExecutor. String commands run through the
// configured shell; argv-form requests spawn the binary directly.
type Executor struct {
	guardrail ports.Guardrail
	shell     string
}

// NewExecutor builds an executor. Shell defaults to $SHELL, then /bin/sh.
func NewExecutor(guardrail ports.Guardrail, shell string) *Executor {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Executor{guardrail: guardrail, shell: shell}
}

// Execute implements ports.SafeExecutor. It never returns a Go error: spawn
// failures, timeouts, and guardrail blocks are all encoded in the envelope.
func (e *Executor) Execute(ctx context.Context, req domain.ExecRequest) domain.ExecResult {
	line := req.CommandLine()

	if e.guardrail != nil {
		if blocked, pattern := e.guardrail.Catastrophic(line); blocked {
			// No process is spawned and no output file is written.
			return domain.ExecResult{
				Ok:       false,
				Stderr:   "blocked catastrophic pattern in command",
				ExitCode: domain.ExitBlocked,
				Err:      fmt.Sprintf("blocked catastrophic pattern: %s", pattern),
			}
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	limit := req.MaxOutputBytes
	if limit <= 0 {
		limit = domain.DefaultMaxOutputKB * 1024
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if len(req.Argv) > 0 {
		cmd = exec.CommandContext(runCtx, req.Argv[0], req.Argv[1:]...)
	} else {
		cmd = exec.CommandContext(runCtx, e.shell, "-c", req.Command)
	}
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return domain.ExecResult{
			Ok:       false,
			Stderr:   fmt.Sprintf("command timed out after %s", timeout),
			ExitCode: domain.ExitTimeout,
			Duration: duration,
			Err:      fmt.Sprintf("command timed out after %s", timeout),
		}
	}

	out := stdout.String()
	truncated := false
	if len(out) > limit {
		out = out[:limit] + domain.TruncationMarker
		truncated = true
	}

	result := domain.ExecResult{
		Stdout:    out,
		Stderr:    stderr.String(),
		Duration:  duration,
		Truncated: truncated,
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.Ok = true
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		result.Err = runErr.Error()
	default:
		// Spawn failure: missing binary, permission denied. The process
		// never ran, so nothing is persisted.
		result.ExitCode = -1
		result.Err = runErr.Error()
		return result
	}

	if req.OutputPath != "" {
		if path, err := persist(req.OutputPath, out, result.Stderr); err == nil {
			result.LogPath = path
		} else {
			result.Err = err.Error()
		}
	}
	return result
}

func persist(path, stdout, stderr string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return "", err
	}
	content := stdout
	if stderr != "" {
		content += "\n[stderr]\n" + stderr
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var _ ports.SafeExecutor = (*Executor)(nil)
