package document

import "github.com/weavelint/weavelint/pkg/model"

// Confidence labels how much trust a finding deserves given how complete
// the merged picture is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// computeCompleteness scores how much of the real cross-file picture the
// graph captured, in [0,1].
//
// Base: 0 with no fragments; 0.7 with exactly one (a lone file is
// assumed mostly self-contained but unproven); otherwise
// max(0.3, 1 - 0.1*n), since each extra fragment is another chance for
// an unresolved reference. Then resolutionRate*0.3 is added when any
// reference decisions were made, and the result clamped to [0,1].
func (g *Graph) computeCompleteness() float64 {
	var base float64
	switch n := len(g.fragments); {
	case n == 0:
		base = 0.0
	case n == 1:
		base = 0.7
	default:
		base = 1.0 - 0.1*float64(n)
		if base < 0.3 {
			base = 0.3
		}
	}

	score := base
	if total := g.resolvedRefs + g.unresolvedRefs; total > 0 {
		score += float64(g.resolvedRefs) / float64(total) * 0.3
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// Confidence returns the per-issue label and a human-readable reason for
// findings raised against this graph. The estimator never suppresses a
// finding; it only annotates.
func (g *Graph) Confidence() (Confidence, string) {
	g.mustBeMerged()

	fullResolution := g.unresolvedRefs == 0 && g.resolvedRefs+g.unresolvedRefs > 0
	crossFile := g.scope == model.ScopePage || g.scope == model.ScopeWorkspace

	switch {
	case g.completeness >= 0.9:
		return ConfidenceHigh, "merged view is nearly complete"
	case crossFile && fullResolution:
		return ConfidenceHigh, "cross-file scope with all references resolved"
	case g.scope == model.ScopeFile:
		return ConfidenceMedium, "single file, cross-file handlers not visible"
	case g.completeness >= 0.5:
		return ConfidenceMedium, "merged view is partially complete"
	default:
		return ConfidenceLow, "merged view is largely incomplete"
	}
}
