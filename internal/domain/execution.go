package domain

import "time"

// ExecRequest describes one command to run under the safe executor. Command
// is interpreted by a shell; when Argv is set it takes precedence and the
// process is spawned directly without a shell.
type ExecRequest struct {
	Command        string
	Argv           []string
	Dir            string
	Timeout        time.Duration
	MaxOutputBytes int
	OutputPath     string
}

// CommandLine returns the human-readable command string for logging and
// guardrail evaluation.
func (r ExecRequest) CommandLine() string {
	if len(r.Argv) > 0 {
		line := r.Argv[0]
		for _, arg := range r.Argv[1:] {
			line += " " + arg
		}
		return line
	}
	return r.Command
}

// ExecResult is the safe executor's return envelope. The executor never
// returns a Go error to its caller; spawn failures, timeouts, and guardrail
// blocks all come back as a failed envelope with a descriptive Err.
type ExecResult struct {
	Ok        bool
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Truncated bool
	LogPath   string
	Err       string
}

// Reserved exit codes for outcomes where no process produced one.
const (
	// ExitBlocked marks a command rejected by the catastrophic-pattern
	// guardrail before any process was spawned.
	ExitBlocked = 126
	// ExitTimeout marks a command killed at its wall-clock deadline.
	ExitTimeout = 124
)

// TruncationMarker is appended to stdout when it exceeds the output cap.
const TruncationMarker = "\n[...truncated...]\n"
