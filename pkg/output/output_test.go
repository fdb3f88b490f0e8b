package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/model"
)

func init() {
	// Keep report snapshots free of escape codes
	color.NoColor = true
}

func runAnalysis(t *testing.T, html string) *analysis.Result {
	t.Helper()
	col := &model.SourceCollection{HTML: html}
	col.SourceFiles.HTML = "index.html"
	r := analysis.NewRunner(analysis.Builtin(), nil, nil, nil)
	result, err := r.Run(context.Background(), col, model.ScopePage, analysis.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return result
}

func messyResult(t *testing.T) *analysis.Result {
	return runAnalysis(t, `<html><body>
  <div id="fake" onclick="go()">Go</div>
  <div id="jumpy" tabindex="5">skip</div>
</body></html>`)
}

func cleanResult(t *testing.T) *analysis.Result {
	return runAnalysis(t, `<html><body><button id="save">Save</button></body></html>`)
}

func TestWriteText_Findings(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, messyResult(t))
	out := buf.String()

	for _, want := range []string{
		"Accessibility Report",
		"Scope: page",
		"index.html:",
		"click-without-keyboard",
		"positive-tabindex",
		"Summary: 2 finding(s): 1 error(s), 1 warning(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText_Clean(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, cleanResult(t))

	if !strings.Contains(buf.String(), "No accessibility issues found") {
		t.Errorf("Expected the clean banner, got:\n%s", buf.String())
	}
}

func TestWriteText_DroppedHint(t *testing.T) {
	result := cleanResult(t)
	result.Dropped = 2

	var buf bytes.Buffer
	WriteText(&buf, result)
	if !strings.Contains(buf.String(), "--show-low-confidence") {
		t.Error("Hidden findings should point at the flag that reveals them")
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, messyResult(t)); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var report struct {
		RunID        string             `json:"runId"`
		Scope        string             `json:"scope"`
		Fragments    int                `json:"fragments"`
		Completeness float64            `json:"completeness"`
		Findings     []analysis.Finding `json:"findings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if report.Scope != "page" || report.Fragments != 1 {
		t.Errorf("Unexpected report header: %+v", report)
	}
	if len(report.Findings) != 2 {
		t.Errorf("Expected 2 findings, got %d", len(report.Findings))
	}
}

func TestWriteJSON_EmptyFindingsIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, cleanResult(t)); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"findings": []`) {
		t.Error("An empty findings list must serialize as [], not null")
	}
}

func TestWriteHTML_EscapesContent(t *testing.T) {
	result := cleanResult(t)
	result.Findings = []analysis.Finding{{
		Rule:     "duplicate-id",
		Severity: analysis.SeverityError,
		Message:  `id "<script>alert(1)</script>" is suspicious`,
		Location: model.Location{File: "index.html", Line: 1},
	}}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, result); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("Finding text must be HTML-escaped")
	}
	if !strings.Contains(out, "duplicate-id") {
		t.Error("Rule name missing from the report")
	}
}

func TestWriteHTML_CleanReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, cleanResult(t)); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No accessibility issues found") {
		t.Error("Expected the clean banner in the HTML report")
	}
}
