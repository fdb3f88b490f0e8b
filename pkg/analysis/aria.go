package analysis

import (
	"fmt"
	"strings"

	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/refgraph"
)

// missingAriaReference flags aria-labelledby/describedby/controls values
// naming an ID that exists in no fragment of the merged graph.
type missingAriaReference struct{}

func (missingAriaReference) Name() string { return "missing-aria-reference" }

func (missingAriaReference) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	for _, ref := range doc.AriaRefs() {
		if ref.Resolved {
			continue
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "missing-aria-reference",
			Severity: SeverityError,
			Message: fmt.Sprintf("%s references %q via %s, but no element has that id",
				describe(ref.Element), ref.TargetID, ref.Attr),
			Location: ref.Element.Location,
			Selector: firstSelector(ref.Element),
			Help:     "point the reference at an existing element id, or add the missing element",
		}))
	}
	return out
}

// ariaReferenceCycle flags loops in the ID-reference graph, e.g. two
// elements labelling each other.
type ariaReferenceCycle struct{}

func (ariaReferenceCycle) Name() string { return "aria-reference-cycle" }

func (ariaReferenceCycle) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	rg := refgraph.Build(doc)
	for _, cycle := range rg.Cycles() {
		var loc model.Location
		if e := rg.Element(cycle[0]); e != nil {
			loc = e.Location
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "aria-reference-cycle",
			Severity: SeverityError,
			Message:  fmt.Sprintf("ARIA references form a cycle: %s", strings.Join(cycle, " -> ")),
			Location: loc,
			Help:     "break the loop so every labelling chain ends at plain text",
		}))
	}
	return out
}
