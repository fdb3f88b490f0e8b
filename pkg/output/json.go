package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/document"
)

// jsonReport is the machine-readable report shape. Engine diagnostics
// (skipped fragments) ride alongside the findings, not mixed into them.
type jsonReport struct {
	RunID        string             `json:"runId"`
	Scope        string             `json:"scope"`
	Fragments    int                `json:"fragments"`
	Completeness float64            `json:"completeness"`
	Findings     []analysis.Finding `json:"findings"`
	Dropped      int                `json:"dropped,omitempty"`
	Warnings     []document.Warning `json:"warnings,omitempty"`
	DurationMs   int64              `json:"durationMs"`
}

// WriteJSON prints the report as indented JSON.
func WriteJSON(w io.Writer, result *analysis.Result) error {
	report := jsonReport{
		RunID:        result.RunID,
		Scope:        string(result.Scope),
		Fragments:    result.Doc.FragmentCount(),
		Completeness: result.Doc.TreeCompleteness(),
		Findings:     result.Findings,
		Dropped:      result.Dropped,
		Warnings:     result.Doc.Warnings(),
		DurationMs:   result.Duration.Milliseconds(),
	}
	if report.Findings == nil {
		report.Findings = []analysis.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
