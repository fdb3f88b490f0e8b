package analysis

import (
	"fmt"

	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
)

// focusableWithoutLabel flags focusable elements whose derived label is
// empty through the whole derivation chain (aria-label, labelledby
// placeholder, text children, alt, value/placeholder).
type focusableWithoutLabel struct{}

func (focusableWithoutLabel) Name() string { return "focusable-without-label" }

func (focusableWithoutLabel) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	for _, e := range doc.AllElements() {
		if !model.Focusable(e) {
			continue
		}
		if model.Label(e) != "" {
			continue
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "focusable-without-label",
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s is focusable but has no accessible label", describe(e)),
			Location: e.Location,
			Selector: firstSelector(e),
			Help:     "add aria-label, aria-labelledby, visible text, or alt text",
		}))
	}
	return out
}
