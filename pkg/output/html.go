package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/weavelint/weavelint/pkg/analysis"
)

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>weavelint report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
.meta { color: #666; margin-bottom: 1.5rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #ddd; vertical-align: top; }
.error { color: #b00020; font-weight: 600; }
.warning { color: #9a6700; font-weight: 600; }
.info { color: #0550ae; }
.confidence { color: #666; font-size: .85rem; }
.help { color: #444; font-size: .9rem; }
.none { color: #1a7f37; font-weight: 600; }
</style>
</head>
<body>
<h1>weavelint accessibility report</h1>
<p class="meta">run {{.RunID}} · scope {{.Scope}} · {{.Doc.FragmentCount}} fragment(s) · completeness {{printf "%.2f" .Doc.TreeCompleteness}}</p>
{{if not .Findings}}<p class="none">No accessibility issues found.</p>{{else}}
<table>
<tr><th>Location</th><th>Severity</th><th>Rule</th><th>Finding</th></tr>
{{range .Findings}}
<tr>
<td>{{.Location}}</td>
<td class="{{.Severity}}">{{.Severity}}</td>
<td>{{.Rule}}</td>
<td>{{.Message}}
<div class="confidence">confidence {{.Confidence}}: {{.ConfidenceReason}}</div>
{{if .Help}}<div class="help">{{.Help}}</div>{{end}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// WriteHTML renders a standalone HTML report.
func WriteHTML(w io.Writer, result *analysis.Result) error {
	if err := htmlReport.Execute(w, result); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}
