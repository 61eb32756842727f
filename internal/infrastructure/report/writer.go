// Package report hands the final campaign summary to the external report
// generator: the aggregate lands on the shared campaign context and is also
// written as JSON into the results directory.
package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Writer implements ports.Reporter.
type Writer struct {
	filename string
}

// NewWriter builds a reporter writing <results>/<filename>.
func NewWriter(filename string) *Writer {
	if filename == "" {
		filename = "summary.json"
	}
	return &Writer{filename: filename}
}

// document is the JSON handoff consumed by the report generator.
type document struct {
	RunID         string                  `json:"run_id"`
	Target        string                  `json:"target"`
	Scope         []string                `json:"scope,omitempty"`
	StartedAt     time.Time               `json:"started_at"`
	FinishedAt    time.Time               `json:"finished_at"`
	Summary       domain.OperationSummary `json:"summary"`
	OutputVolume  string                  `json:"output_volume"`
	FinalAnalysis string                  `json:"final_analysis,omitempty"`
}

// Deliver implements ports.Reporter.
func (w *Writer) Deliver(_ context.Context, campaign *domain.CampaignContext) error {
	doc := document{
		RunID:         campaign.Campaign.RunID,
		Target:        campaign.Campaign.Target,
		Scope:         campaign.Campaign.Scope,
		StartedAt:     campaign.Campaign.StartedAt,
		FinishedAt:    time.Now(),
		Summary:       campaign.Summary,
		OutputVolume:  humanize.Bytes(uint64(campaign.Summary.TotalOutputBytes)),
		FinalAnalysis: campaign.FinalAnalysis,
	}

	if err := os.MkdirAll(campaign.ResultsDir, domain.DirectoryPermissions); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(campaign.ResultsDir, w.filename), data, 0o644)
}

var _ ports.Reporter = (*Writer)(nil)
