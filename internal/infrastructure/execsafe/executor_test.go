package execsafe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/infrastructure/security"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	guardrail, err := security.NewGuardrail(filepath.Join(t.TempDir(), "guardrail.yaml"))
	if err != nil {
		t.Fatalf("NewGuardrail error: %v", err)
	}
	return NewExecutor(guardrail, "/bin/sh")
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecuteEcho(t *testing.T) {
	requireUnix(t)
	e := newTestExecutor(t)

	out := filepath.Join(t.TempDir(), "nested", "o.txt")
	res := e.Execute(context.Background(), domain.ExecRequest{
		Argv:       []string{"echo", "hello"},
		OutputPath: out,
	})

	if !res.Ok {
		t.Fatalf("expected success, got %+v", res)
	}
	if !strings.Contains(res.Stdout, "hello") {
		t.Fatalf("stdout missing echo output: %q", res.Stdout)
	}
	if res.LogPath != out {
		t.Fatalf("expected log path %q, got %q", out, res.LogPath)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("persisted output missing stdout: %q", data)
	}
}

func TestExecuteBlocksCatastrophic(t *testing.T) {
	e := newTestExecutor(t)

	out := filepath.Join(t.TempDir(), "blocked.txt")
	res := e.Execute(context.Background(), domain.ExecRequest{
		Command:    "rm -rf /",
		OutputPath: out,
	})

	if res.Ok {
		t.Fatal("catastrophic command must fail")
	}
	if res.ExitCode != domain.ExitBlocked {
		t.Fatalf("expected blocked exit code %d, got %d", domain.ExitBlocked, res.ExitCode)
	}
	if res.Duration != 0 {
		t.Fatalf("blocked command must not accrue duration, got %s", res.Duration)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("blocked command must not produce an output file")
	}
}

func TestExecuteTimeout(t *testing.T) {
	requireUnix(t)
	e := newTestExecutor(t)

	timeout := 200 * time.Millisecond
	res := e.Execute(context.Background(), domain.ExecRequest{
		Command: "sleep 5",
		Timeout: timeout,
	})

	if res.Ok {
		t.Fatal("timed-out command must fail")
	}
	if res.ExitCode != domain.ExitTimeout {
		t.Fatalf("expected timeout exit code %d, got %d", domain.ExitTimeout, res.ExitCode)
	}
	if res.Duration < timeout {
		t.Fatalf("duration %s below timeout %s", res.Duration, timeout)
	}
}

func TestExecuteTruncatesOutput(t *testing.T) {
	requireUnix(t)
	e := newTestExecutor(t)

	limit := 64
	res := e.Execute(context.Background(), domain.ExecRequest{
		Command:        "yes redeyes | head -c 4096",
		MaxOutputBytes: limit,
	})

	if !res.Truncated {
		t.Fatalf("expected truncation, got %+v", res)
	}
	if len(res.Stdout) > limit+len(domain.TruncationMarker) {
		t.Fatalf("stdout length %d exceeds cap plus marker", len(res.Stdout))
	}
	if !strings.HasSuffix(res.Stdout, domain.TruncationMarker) {
		t.Fatal("truncation marker missing")
	}
}

func TestExecuteSpawnFailure(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Execute(context.Background(), domain.ExecRequest{
		Argv: []string{"/nonexistent/redeyes-tool-xyz"},
	})

	if res.Ok {
		t.Fatal("missing binary must fail")
	}
	if res.Err == "" {
		t.Fatal("spawn failure must carry a descriptive error")
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	requireUnix(t)
	e := newTestExecutor(t)

	res := e.Execute(context.Background(), domain.ExecRequest{Command: "exit 3"})
	if res.Ok {
		t.Fatal("non-zero exit must not be ok")
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestExecutePersistsStderrSection(t *testing.T) {
	requireUnix(t)
	e := newTestExecutor(t)

	out := filepath.Join(t.TempDir(), "o.txt")
	res := e.Execute(context.Background(), domain.ExecRequest{
		Command:    "echo out; echo err 1>&2",
		OutputPath: out,
	})
	if !res.Ok {
		t.Fatalf("expected success, got %+v", res)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if !strings.Contains(string(data), "[stderr]") {
		t.Fatalf("expected stderr section in %q", data)
	}
}
