package analysis

import (
	"fmt"

	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
)

// mouseOnlyVisibility flags elements whose visibility is toggled by a
// :hover style rule while nothing equivalent exists for keyboard focus:
// hover-revealed menus that keyboard users can never open.
type mouseOnlyVisibility struct{}

func (mouseOnlyVisibility) Name() string { return "mouse-only-visibility" }

func (mouseOnlyVisibility) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	for _, e := range doc.AllElements() {
		var hoverToggles, focusEquivalent bool
		for _, rule := range e.StyleRules {
			if rule.AffectsVisibility && rule.Pseudo == "hover" {
				hoverToggles = true
			}
			if rule.Pseudo == "focus" || rule.Pseudo == "focus-within" || rule.Pseudo == "focus-visible" {
				focusEquivalent = true
			}
		}
		if !hoverToggles || focusEquivalent {
			continue
		}
		// A keyboard focus handler also counts as an equivalent.
		ctx := model.DeriveContext(e)
		if ctx.HasKeyboardHandler {
			continue
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "mouse-only-visibility",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s changes visibility on hover with no focus equivalent", describe(e)),
			Location: e.Location,
			Selector: firstSelector(e),
			Help:     "mirror the :hover rule with :focus-within so keyboard users can reach the content",
		}))
	}
	return out
}
