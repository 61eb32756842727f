package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
)

// Every prompt builder truncates its state slices to the Prompt* caps so
// prompt size stays bounded as the campaign accumulates findings.

const (
	planningSystem = "You are an expert red team leader creating a comprehensive penetration testing strategy. " +
		"Be specific about tools, techniques, and priorities."
	osintSystem       = "You are executing OSINT. Provide a prioritized list of specific commands and tools."
	enumerationSystem = "You are performing network enumeration. " +
		"Provide specific nmap commands and enumeration techniques."
	vulnerabilitySystem = "You are conducting vulnerability assessment. " +
		"Provide specific vulnerability scanning commands."
	exploitationSystem = "You are conducting ethical penetration testing exploitation. " +
		"Provide specific exploit commands and Metasploit modules."
	postExploitationSystem = "You are conducting post-exploitation activities. " +
		"Provide specific commands for privilege escalation and data gathering."
	reportingSystem = "You are creating a final penetration test report. " +
		"Provide executive summary, key findings, risk assessment, and remediation recommendations."
)

func planningPrompt(campaign domain.Campaign) string {
	scope := campaign.Scope
	if len(scope) == 0 {
		scope = []string{"Full authorized assessment"}
	}
	return fmt.Sprintf(`Target: %s
Scope: %s

Create a comprehensive penetration testing plan including:
1. OSINT reconnaissance strategy
2. Network enumeration approach
3. Vulnerability assessment priorities
4. Potential exploitation vectors
5. Post-exploitation objectives
6. Risk assessment and safety measures

Provide specific tools and techniques for each phase.`, campaign.Target, strings.Join(scope, ", "))
}

func osintPrompt(target string, availableTools []string) string {
	prompt := fmt.Sprintf("Target: %s. Which OSINT tools should I run and in what order? "+
		"Consider: whois, DNS recon, subdomain enum, email harvesting, Shodan, social media.", target)
	if len(availableTools) > 0 {
		prompt += fmt.Sprintf(" Available tools: %s.", strings.Join(prefix(availableTools, domain.PromptMaxTargets), ", "))
	}
	return prompt
}

func enumerationPrompt(addr string) string {
	return fmt.Sprintf("Target IP: %s. Plan network enumeration: port scanning, service detection, "+
		"SMB enum, SNMP enum. What's the optimal scanning strategy?", addr)
}

func vulnerabilityPrompt(target *domain.Target) string {
	ports := target.OpenPorts()
	sort.Ints(ports)
	return fmt.Sprintf("Target: %s, Open ports: %v, Services: %s. "+
		"Plan vulnerability assessment: NSE scripts, Nikto, directory brute force, etc.",
		target.Addr, capInts(ports, domain.PromptMaxPorts), serviceBrief(target, domain.PromptMaxServices))
}

func exploitationPrompt(target *domain.Target) string {
	vulns := prefix(target.Vulnerabilities(), domain.PromptMaxVulns)
	return fmt.Sprintf("Target: %s, Vulnerabilities: %s. "+
		"Plan exploitation using Metasploit, Hydra, or other tools. What exploits should I try?",
		target.Addr, strings.Join(vulns, "; "))
}

func postExploitationPrompt(addr string) string {
	return fmt.Sprintf("Compromised target: %s. Plan post-exploitation: privilege escalation, "+
		"persistence, lateral movement, data gathering. What should I do next?", addr)
}

func reportingPrompt(summary domain.OperationSummary) string {
	return fmt.Sprintf("Analyze complete penetration test results. Targets: %d, "+
		"Total vulnerabilities: %d, Compromised: %d, Operations executed: %d. "+
		"Provide executive summary and recommendations.",
		summary.TargetsIdentified, summary.TotalVulnerabilities,
		summary.TargetsCompromised, summary.TotalOperations)
}

func analysisPrompt(phase domain.Phase, operations, successes int, targets []string, totalVulns int, outputs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\n", phase)
	fmt.Fprintf(&b, "Operations completed: %d\n", operations)
	fmt.Fprintf(&b, "Successful operations: %d\n\n", successes)
	fmt.Fprintf(&b, "Current targets: %s\n", strings.Join(prefix(targets, domain.PromptMaxTargets), ", "))
	fmt.Fprintf(&b, "Current vulnerabilities: %d\n", totalVulns)
	if len(outputs) > 0 {
		b.WriteString("\nRecent output:\n")
		for _, out := range prefix(outputs, 3) {
			b.WriteString(out)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nAnalyze the results and recommend next steps for the following phase.")
	return b.String()
}

func analysisSystem(phase domain.Phase) string {
	return fmt.Sprintf("You are analyzing %s results. Provide insights and strategy adjustments for the next phase.", phase)
}

func serviceBrief(target *domain.Target, limit int) string {
	services := target.Services()
	ports := make([]int, 0, len(services))
	for port := range services {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	ports = capInts(ports, limit)

	parts := make([]string, 0, len(ports))
	for _, port := range ports {
		parts = append(parts, fmt.Sprintf("%d:%s", port, services[port]))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func capInts(items []int, limit int) []int {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
