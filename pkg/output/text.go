// Package output renders analysis results as colorized text, JSON or a
// standalone HTML report.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/document"
)

// WriteText prints a human-readable report with colors.
func WriteText(w io.Writer, result *analysis.Result) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	bold.Fprintln(w, "weavelint - Accessibility Report")
	bold.Fprintln(w, "================================")
	fmt.Fprintf(w, "Scope: %s\n", result.Scope)
	fmt.Fprintf(w, "Fragments: %d\n", result.Doc.FragmentCount())
	fmt.Fprintf(w, "Completeness: %.2f\n", result.Doc.TreeCompleteness())
	if warnings := result.Doc.Warnings(); len(warnings) > 0 {
		yellow.Fprintf(w, "Skipped fragments: %d\n", len(warnings))
		for _, warning := range warnings {
			dim.Fprintf(w, "  %s: %s\n", warning.SourceFile, warning.Message)
		}
	}
	fmt.Fprintln(w)

	if len(result.Findings) == 0 {
		green.Fprintln(w, "✓ No accessibility issues found")
		return
	}

	var errors, warns int
	for _, f := range result.Findings {
		c := yellow
		switch f.Severity {
		case analysis.SeverityError:
			c = red
			errors++
		case analysis.SeverityWarning:
			warns++
		}
		c.Fprintf(w, "%s [%s]", f.Location, f.Severity)
		fmt.Fprintf(w, " %s", f.Message)
		dim.Fprintf(w, " (%s", f.Rule)
		if f.Confidence != document.ConfidenceHigh {
			dim.Fprintf(w, ", confidence %s: %s", f.Confidence, f.ConfidenceReason)
		}
		dim.Fprintln(w, ")")
		if f.Help != "" {
			cyan.Fprintf(w, "    %s\n", f.Help)
		}
	}

	fmt.Fprintln(w)
	summary := green
	if warns > 0 {
		summary = yellow
	}
	if errors > 0 {
		summary = red
	}
	summary.Fprintf(w, "Summary: %d finding(s): %d error(s), %d warning(s)\n",
		len(result.Findings), errors, warns)
	if result.Dropped > 0 {
		dim.Fprintf(w, "%d low-confidence finding(s) hidden; rerun with --show-low-confidence\n", result.Dropped)
	}
}
