// Package analysis defines the finding model, the pattern analyzer
// interface and the built-in accessibility rules, plus the runner that
// orchestrates a full analysis pass.
package analysis

import (
	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// rank orders severities for --fail-on comparisons.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// Finding is one reported defect. Confidence and ConfidenceReason come
// from the document graph's completeness estimate; a low-confidence
// finding is annotated, never dropped, so callers decide what to show.
type Finding struct {
	Rule             string              `json:"rule"`
	Severity         Severity            `json:"severity"`
	Confidence       document.Confidence `json:"confidence"`
	ConfidenceReason string              `json:"confidenceReason"`
	Message          string              `json:"message"`
	Location         model.Location      `json:"location"`
	Selector         string              `json:"selector,omitempty"`
	Help             string              `json:"help,omitempty"`
}

// Analyzer is a pure function from a merged document graph to findings.
// Analyzers consume the graph only through its read-only query surface
// and must never mutate it.
type Analyzer interface {
	Name() string
	Analyze(doc *document.Graph) []Finding
}

// Builtin returns the built-in rule set.
func Builtin() []Analyzer {
	return []Analyzer{
		clickWithoutKeyboard{},
		deviceDependentHandler{},
		focusableWithoutLabel{},
		missingAriaReference{},
		ariaReferenceCycle{},
		duplicateID{},
		positiveTabindex{},
		mouseOnlyVisibility{},
	}
}

// annotate stamps the graph's confidence label and reason onto a finding.
func annotate(doc *document.Graph, f Finding) Finding {
	f.Confidence, f.ConfidenceReason = doc.Confidence()
	return f
}

// describe names an element for messages: selector-ish, label second.
func describe(e *model.Element) string {
	if id, ok := e.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if label := model.Label(e); label != "" {
		return "<" + e.TagName + "> \"" + label + "\""
	}
	return "<" + e.TagName + ">"
}
