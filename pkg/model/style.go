package model

import (
	"strings"

	"github.com/weavelint/weavelint/pkg/selector"
)

// StyleRule is one (selector, declaration block) pair from a stylesheet
// fragment. The accessibility flags are computed once at construction,
// not per query.
type StyleRule struct {
	ID          int
	Selector    string
	Specificity selector.Specificity
	// Pseudo is a trailing pseudo-class stripped for structural matching
	// ("hover", "focus", ...), empty otherwise.
	Pseudo     string
	Properties map[string]string
	Location   Location

	AffectsVisibility bool
	AffectsFocus      bool
	AffectsContrast   bool
}

// Property returns a property value, tolerating a nil map.
func (r *StyleRule) Property(name string) (string, bool) {
	v, ok := r.Properties[strings.ToLower(name)]
	return v, ok
}

// StyleGraph holds one stylesheet fragment's rules in source order.
type StyleGraph struct {
	SourceFile string
	Rules      []*StyleRule

	nextID int
}

// NewStyleGraph creates an empty style graph for one source file.
func NewStyleGraph(sourceFile string) *StyleGraph {
	return &StyleGraph{SourceFile: sourceFile}
}

// Add builds a rule from a selector and property set, computing the
// specificity tuple and accessibility flags, and appends it.
func (g *StyleGraph) Add(sel string, props map[string]string, loc Location) *StyleRule {
	g.nextID++
	rule := &StyleRule{
		ID:          g.nextID,
		Selector:    sel,
		Specificity: selector.Compute(sel),
		Properties:  lowerKeys(props),
		Location:    loc,
	}
	if c, ok := selector.Parse(sel); ok {
		rule.Pseudo = c.Pseudo
	}
	rule.AffectsVisibility, rule.AffectsFocus, rule.AffectsContrast = classifyProperties(rule)
	g.Rules = append(g.Rules, rule)
	return rule
}

// NewInlineRule builds a rule for a style="" attribute with inline
// specificity. Inline rules belong to no style graph; the merge attaches
// them directly to their element.
func NewInlineRule(props map[string]string, loc Location) *StyleRule {
	rule := &StyleRule{
		Selector:    "[style]",
		Specificity: selector.Inline,
		Properties:  lowerKeys(props),
		Location:    loc,
	}
	rule.AffectsVisibility, rule.AffectsFocus, rule.AffectsContrast = classifyProperties(rule)
	return rule
}

// FindBySelector returns rules with the exact selector text.
func (g *StyleGraph) FindBySelector(sel string) []*StyleRule {
	var out []*StyleRule
	for _, r := range g.Rules {
		if r.Selector == sel {
			out = append(out, r)
		}
	}
	return out
}

func lowerKeys(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[strings.ToLower(k)] = v
	}
	return out
}

func classifyProperties(r *StyleRule) (visibility, focus, contrast bool) {
	for name := range r.Properties {
		switch name {
		case "display", "visibility", "opacity", "clip-path", "position":
			visibility = true
		case "color":
			contrast = true
		}
		if strings.HasPrefix(name, "outline") {
			focus = true
		}
		if strings.HasPrefix(name, "background") {
			contrast = true
		}
		if name == "box-shadow" && r.Pseudo == "focus" {
			focus = true
		}
	}
	// A :focus rule exists to style focus regardless of which properties
	// it touches.
	if r.Pseudo == "focus" || r.Pseudo == "focus-visible" {
		focus = true
	}
	return visibility, focus, contrast
}
