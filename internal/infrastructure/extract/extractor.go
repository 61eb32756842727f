// Package extract turns free-form oracle text into candidate shell commands.
//
// Extraction is a heuristic boundary by design: the oracle gives no
// structured contract, so false positives and negatives are expected. The
// extractor only collects strings; it never vets or executes them.
package extract

import (
	"regexp"
	"strings"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

var fencedBlockRe = regexp.MustCompile("(?is)```(?:bash|sh|zsh|shell)?\\n(.*?)```")

// builtinTools are common network utilities accepted even when the host's
// tool table does not list them.
var builtinTools = []string{"dig", "ping", "curl", "wget", "whois", "host"}

// exploitPrefixes recognize exploitation-framework module/parameter/run
// syntax, credential-attack tools, and remote-shell protocol commands.
var exploitPrefixes = []string{
	"use ",
	"set ",
	"exploit",
	"msfconsole ",
	"msfvenom ",
	"hydra ",
	"john ",
	"hashcat ",
	"ssh ",
	"telnet ",
}

// Extractor implements ports.CommandExtractor with configurable caps.
type Extractor struct {
	maxCommands int
	maxExploits int
	extraKnown  []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCaps overrides the command and exploit caps.
func WithCaps(commands, exploits int) Option {
	return func(e *Extractor) {
		if commands > 0 {
			e.maxCommands = commands
		}
		if exploits > 0 {
			e.maxExploits = exploits
		}
	}
}

// WithKnownTools adds configured tool names accepted on top of the caller's
// list and the builtin allow-list.
func WithKnownTools(names []string) Option {
	return func(e *Extractor) {
		e.extraKnown = append(e.extraKnown, names...)
	}
}

// NewExtractor builds an extractor with the default caps.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxCommands: domain.MaxExtractedCommands,
		maxExploits: domain.MaxExploitCommands,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements ports.CommandExtractor. It collects fenced code-block
// lines verbatim, then scans every line of the whole text for ones starting
// with a known tool name, deduplicates preserving first-seen order, and caps
// the result.
func (e *Extractor) Extract(text string, knownTools []string) []string {
	var candidates []string

	for _, match := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		for _, line := range strings.Split(match[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || isComment(line) {
				continue
			}
			candidates = append(candidates, line)
		}
	}

	known := e.knownSet(knownTools)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isComment(line) {
			continue
		}
		token := line
		if idx := strings.IndexAny(line, " \t"); idx >= 0 {
			token = line[:idx]
		}
		if _, ok := known[token]; ok {
			candidates = append(candidates, line)
		}
	}

	return dedup(candidates, e.maxCommands)
}

// ExtractExploit implements ports.CommandExtractor. Narrower than Extract:
// only lines matching exploitation-framework, credential-attack, or
// remote-shell syntax qualify, with a smaller cap.
func (e *Extractor) ExtractExploit(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "```")
		if line == "" || isComment(line) {
			continue
		}
		if isExploitCommand(line) {
			candidates = append(candidates, line)
		}
	}
	return dedup(candidates, e.maxExploits)
}

func isExploitCommand(line string) bool {
	low := strings.ToLower(line)
	for _, prefix := range exploitPrefixes {
		if strings.HasPrefix(low, prefix) {
			return true
		}
		// A bare "exploit" directive has no trailing argument.
		if strings.TrimSpace(prefix) == low {
			return true
		}
	}
	if strings.HasPrefix(low, "sqlmap ") && strings.Contains(low, "--dump") {
		return true
	}
	return false
}

func (e *Extractor) knownSet(callerTools []string) map[string]struct{} {
	known := make(map[string]struct{}, len(callerTools)+len(e.extraKnown)+len(builtinTools))
	for _, name := range callerTools {
		known[name] = struct{}{}
	}
	for _, name := range e.extraKnown {
		known[name] = struct{}{}
	}
	for _, name := range builtinTools {
		known[name] = struct{}{}
	}
	return known
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

func dedup(candidates []string, limit int) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

var _ ports.CommandExtractor = (*Extractor)(nil)
