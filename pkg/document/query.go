package document

import (
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/selector"
)

// This file is the read-only surface pattern analyzers depend on.
// Accessors hand out copies of internal slices; mutating the graph
// through this surface is a caller defect, and every accessor requires
// Merge to have run.

// FragmentCount returns the number of element graph fragments merged in.
func (g *Graph) FragmentCount() int {
	g.mustBeMerged()
	return len(g.fragments)
}

// TreeCompleteness returns the completeness score computed at merge.
func (g *Graph) TreeCompleteness() float64 {
	g.mustBeMerged()
	return g.completeness
}

// IsFragmentComplete reports whether every ARIA ID reference originating
// in the given fragment resolves within that same fragment. Analyzers
// use it to decide per-fragment confidence instead of whole-graph
// confidence. Out-of-range indexes report false.
func (g *Graph) IsFragmentComplete(fragment int) bool {
	g.mustBeMerged()
	if fragment < 0 || fragment >= len(g.fragmentComplete) {
		return false
	}
	return g.fragmentComplete[fragment]
}

// ResolvedRefs returns the count of reference decisions that resolved.
func (g *Graph) ResolvedRefs() int {
	g.mustBeMerged()
	return g.resolvedRefs
}

// UnresolvedRefs returns the count of reference decisions that did not
// resolve.
func (g *Graph) UnresolvedRefs() int {
	g.mustBeMerged()
	return g.unresolvedRefs
}

// Warnings returns recoverable per-source problems recorded while the
// graph was assembled.
func (g *Graph) Warnings() []Warning {
	out := make([]Warning, len(g.warnings))
	copy(out, g.warnings)
	return out
}

// AriaRefs returns every ARIA ID-reference decision made during merge.
func (g *Graph) AriaRefs() []AriaRef {
	g.mustBeMerged()
	out := make([]AriaRef, len(g.ariaRefs))
	copy(out, g.ariaRefs)
	return out
}

// AllElements returns every element across all fragments in fragment
// order, document order within each fragment.
func (g *Graph) AllElements() []*model.Element {
	g.mustBeMerged()
	var out []*model.Element
	for _, frag := range g.fragments {
		out = append(out, frag.AllElements()...)
	}
	return out
}

// Fragments returns the merged element graphs in contribution order.
func (g *Graph) Fragments() []*model.ElementGraph {
	g.mustBeMerged()
	out := make([]*model.ElementGraph, len(g.fragments))
	copy(out, g.fragments)
	return out
}

// BehaviorGraphs returns the merged behavior graphs, including the
// synthetic per-fragment graphs holding lifted inline handlers.
func (g *Graph) BehaviorGraphs() []*model.BehaviorGraph {
	g.mustBeMerged()
	out := make([]*model.BehaviorGraph, len(g.behaviors))
	copy(out, g.behaviors)
	return out
}

// StyleGraphs returns the merged style graphs.
func (g *Graph) StyleGraphs() []*model.StyleGraph {
	g.mustBeMerged()
	out := make([]*model.StyleGraph, len(g.styles))
	copy(out, g.styles)
	return out
}

// ElementByID scans all fragments in order for an element with the
// given id attribute; first match wins.
func (g *Graph) ElementByID(id string) *model.Element {
	g.mustBeMerged()
	for _, frag := range g.fragments {
		if e := frag.GetElementByID(id); e != nil {
			return e
		}
	}
	return nil
}

// QuerySelector returns the first matching element across all
// fragments. Unsupported selector syntax fails open and matches nothing.
func (g *Graph) QuerySelector(sel string) *model.Element {
	g.mustBeMerged()
	c, ok := selector.Parse(sel)
	if !ok {
		return nil
	}
	for _, e := range g.AllElements() {
		if c.Matches(e) {
			return e
		}
	}
	return nil
}

// QuerySelectorAll returns every matching element across all fragments.
func (g *Graph) QuerySelectorAll(sel string) []*model.Element {
	g.mustBeMerged()
	c, ok := selector.Parse(sel)
	if !ok {
		return nil
	}
	var out []*model.Element
	for _, e := range g.AllElements() {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// InteractiveElements returns every element with a resolved behavior or
// that is focusable.
func (g *Graph) InteractiveElements() []*model.Element {
	g.mustBeMerged()
	var out []*model.Element
	for _, e := range g.AllElements() {
		if model.Interactive(e) {
			out = append(out, e)
		}
	}
	return out
}

// GetMatchingRules returns the element's resolved style rules,
// specificity-sorted descending: index 0 is the effective winning rule.
func (g *Graph) GetMatchingRules(e *model.Element) []*model.StyleRule {
	g.mustBeMerged()
	out := make([]*model.StyleRule, len(e.StyleRules))
	copy(out, e.StyleRules)
	return out
}

// ElementsWithIssues pre-filters for the two most common heuristics:
// a click handler without any keyboard handler, and a focusable element
// without a derivable label.
func (g *Graph) ElementsWithIssues() []*model.Element {
	g.mustBeMerged()
	var out []*model.Element
	for _, e := range g.AllElements() {
		ctx := model.DeriveContext(e)
		if ctx.HasClickHandler && !ctx.HasKeyboardHandler {
			out = append(out, e)
			continue
		}
		if ctx.Focusable && ctx.Label == "" {
			out = append(out, e)
		}
	}
	return out
}
