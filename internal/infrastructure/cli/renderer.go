package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
)

// RenderCampaign prints the campaign outcome in a friendly, ASCII-only
// format.
func RenderCampaign(out io.Writer, cc *domain.CampaignContext) {
	fmt.Fprintln(out, "Campaign complete")
	fmt.Fprintf(out, "Run: %s  Target: %s\n", cc.Campaign.RunID, cc.Campaign.Target)

	summary := cc.Summary
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Operations:        %d (%d successful)\n", summary.TotalOperations, summary.SuccessfulOperations)
	fmt.Fprintf(out, "Targets:           %d identified, %d compromised\n", summary.TargetsIdentified, summary.TargetsCompromised)
	fmt.Fprintf(out, "Vulnerabilities:   %d\n", summary.TotalVulnerabilities)
	fmt.Fprintf(out, "Output captured:   %s\n", humanize.Bytes(uint64(summary.TotalOutputBytes)))
	if len(summary.CompromisedAddrs) > 0 {
		fmt.Fprintf(out, "Compromised hosts: %s\n", strings.Join(summary.CompromisedAddrs, ", "))
	}

	if cc.FinalAnalysis != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Final assessment:")
		fmt.Fprintln(out, indent(clip(cc.FinalAnalysis, 800), "  "))
	}
}

func clip(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
