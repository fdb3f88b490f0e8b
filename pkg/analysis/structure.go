package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/weavelint/weavelint/pkg/document"
)

// duplicateID flags the same id attribute on multiple elements across
// the merged graph. The merge layer deliberately tolerates duplicates
// (getElementById returns the first match); detection is this
// analyzer's job.
type duplicateID struct{}

func (duplicateID) Name() string { return "duplicate-id" }

func (duplicateID) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	seen := map[string]string{}
	for _, e := range doc.AllElements() {
		id, ok := e.Attr("id")
		if !ok || id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			out = append(out, annotate(doc, Finding{
				Rule:     "duplicate-id",
				Severity: SeverityError,
				Message:  fmt.Sprintf("id %q is already used at %s", id, first),
				Location: e.Location,
				Selector: "#" + id,
				Help:     "ids must be unique across the merged document; rename one of them",
			}))
			continue
		}
		seen[id] = e.Location.String()
	}
	return out
}

// positiveTabindex flags tabindex values above zero, which pull the
// element out of the natural focus order.
type positiveTabindex struct{}

func (positiveTabindex) Name() string { return "positive-tabindex" }

func (positiveTabindex) Analyze(doc *document.Graph) []Finding {
	var out []Finding
	for _, e := range doc.AllElements() {
		raw, ok := e.Attr("tabindex")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n <= 0 {
			continue
		}
		out = append(out, annotate(doc, Finding{
			Rule:     "positive-tabindex",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s uses tabindex=%d, disrupting the natural focus order", describe(e), n),
			Location: e.Location,
			Selector: firstSelector(e),
			Help:     "use tabindex=\"0\" and let document order drive focus",
		}))
	}
	return out
}
